package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory_ledger/internal/domain"
	"inventory_ledger/internal/report"
	"inventory_ledger/internal/usecase"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultCallTimeout = 3 * time.Second

// Client is a typed caller for inventory.v1.InventoryService. Status codes are turned
// back into the domain sentinels, so errors.Is works the same on both sides.
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
	log     *logrus.Logger
}

// NewClient connects lazily to target. Extra dial options are appended after the
// insecure transport credentials.
func NewClient(target string, logger *logrus.Logger, opts ...grpc.DialOption) (*Client, error) {
	logger.Infof("InventoryClient: Dialing gRPC target: %s", target)
	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory client for %s: %w", target, err)
	}
	return &Client{conn: conn, timeout: defaultCallTimeout, log: logger}, nil
}

// WithTimeout sets the per-call deadline.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.timeout = d
	return c
}

func (c *Client) Close() error {
	if c.conn != nil {
		c.log.Info("InventoryClient: Closing gRPC connection")
		return c.conn.Close()
	}
	return nil
}

func (c *Client) invoke(ctx context.Context, method string, in map[string]any, out any) error {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return fmt.Errorf("could not encode %s request: %w", method, err)
	}
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res := &structpb.Struct{}
	if err := c.conn.Invoke(callCtx, FullMethod(method), req, res); err != nil {
		c.log.Warnf("InventoryClient(gRPC): %s failed: %v", method, err)
		return grpcStatusToDomainError(err)
	}
	raw, err := res.MarshalJSON()
	if err != nil {
		return fmt.Errorf("could not decode %s response: %w", method, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("could not decode %s response: %w", method, err)
	}
	return nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var out struct {
		Categories []domain.Category `json:"categories"`
	}
	if err := c.invoke(ctx, "ListCategories", map[string]any{}, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) ListProducts(ctx context.Context, query usecase.ProductQuery) (*usecase.ProductPage, error) {
	in := map[string]any{
		"q":      query.Search,
		"sort":   query.Sort,
		"desc":   query.Descending,
		"limit":  query.Limit,
		"offset": query.Offset,
	}
	if query.CategoryID != nil {
		in["category_id"] = *query.CategoryID
	}
	var page usecase.ProductPage
	if err := c.invoke(ctx, "ListProducts", in, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) AdjustStock(ctx context.Context, productID, amount int, dir domain.Direction) (*domain.Product, error) {
	var product domain.Product
	in := map[string]any{"product_id": productID, "amount": amount, "direction": string(dir)}
	if err := c.invoke(ctx, "AdjustStock", in, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetSummary asks for the dashboard summary. A nil threshold uses the server default.
func (c *Client) GetSummary(ctx context.Context, threshold *int) (*report.Summary, error) {
	in := map[string]any{}
	if threshold != nil {
		in["threshold"] = *threshold
	}
	var summary report.Summary
	if err := c.invoke(ctx, "GetSummary", in, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func grpcStatusToDomainError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("failed to communicate with inventory service: %w", err)
	}
	var sentinel error
	switch st.Code() {
	case codes.InvalidArgument:
		return &domain.ValidationError{Field: "request", Err: errors.New(st.Message())}
	case codes.NotFound:
		sentinel = domain.ErrNotFound
	case codes.FailedPrecondition:
		// only AdjustStock reports it through this service
		sentinel = domain.ErrInsufficientStock
	case codes.Aborted:
		sentinel = domain.ErrConflict
	case codes.Unavailable, codes.DeadlineExceeded:
		sentinel = domain.ErrStoreUnavailable
	default:
		return fmt.Errorf("inventory service gRPC error (%s): %s", st.Code(), st.Message())
	}
	return fmt.Errorf("%s: %w", st.Message(), sentinel)
}
