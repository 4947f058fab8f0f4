package export

import (
	"context"
	"path"
	"time"
)

// ContentType of serialized exports.
const ContentType = "text/csv; charset=utf-8"

// Sink stores export snapshots outside the service.
type Sink interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
}

// ObjectKey names a snapshot taken at now under prefix.
func ObjectKey(prefix string, now time.Time) string {
	return path.Join(prefix, "products-"+now.UTC().Format("20060102T150405Z")+".csv")
}
