package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"inventory_ledger/internal/domain"
	"inventory_ledger/internal/metrics"
	"inventory_ledger/internal/usecase"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type InventoryHandler struct {
	categoryUseCase usecase.CategoryUseCase
	productUseCase  usecase.ProductUseCase
	stockUseCase    usecase.StockUseCase
	reportUseCase   usecase.ReportUseCase
	log             *logrus.Logger
}

var _ InventoryServer = (*InventoryHandler)(nil)

func NewInventoryHandler(cuc usecase.CategoryUseCase, puc usecase.ProductUseCase, suc usecase.StockUseCase, ruc usecase.ReportUseCase, logger *logrus.Logger) *InventoryHandler {
	return &InventoryHandler{
		categoryUseCase: cuc,
		productUseCase:  puc,
		stockUseCase:    suc,
		reportUseCase:   ruc,
		log:             logger,
	}
}

// toStruct converts v to a Struct through its JSON form, so gRPC clients see the same
// field names as HTTP clients.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "could not encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(raw); err != nil {
		return nil, status.Errorf(codes.Internal, "could not encode response: %v", err)
	}
	return out, nil
}

// intField reads an optional integral number field.
func intField(req *structpb.Struct, name string) (int, bool, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, false, nil
	}
	n, isNum := v.GetKind().(*structpb.Value_NumberValue)
	if !isNum || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, false, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
	}
	return int(n.NumberValue), true, nil
}

func (h *InventoryHandler) ListCategories(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	h.log.Info("gRPC Handler: Received ListCategories request")
	categories, err := h.categoryUseCase.ListCategories(ctx)
	if err != nil {
		h.log.Errorf("gRPC Handler: ListCategories use case error: %v", err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	return toStruct(map[string]any{"categories": categories})
}

func (h *InventoryHandler) ListProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	query := usecase.ProductQuery{
		Search:     fields["q"].GetStringValue(),
		Sort:       fields["sort"].GetStringValue(),
		Descending: fields["desc"].GetBoolValue(),
	}
	var err error
	if query.Limit, _, err = intField(req, "limit"); err != nil {
		return nil, err
	}
	if query.Offset, _, err = intField(req, "offset"); err != nil {
		return nil, err
	}
	categoryID, set, err := intField(req, "category_id")
	if err != nil {
		return nil, err
	}
	if set {
		query.CategoryID = &categoryID
	}

	h.log.Infof("gRPC Handler: Received ListProducts request: q=%q sort=%q limit=%d offset=%d", query.Search, query.Sort, query.Limit, query.Offset)
	page, err := h.productUseCase.ListProducts(ctx, query)
	if err != nil {
		h.log.Errorf("gRPC Handler: ListProducts use case error: %v", err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	return toStruct(page)
}

func (h *InventoryHandler) AdjustStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	productID, ok, err := intField(req, "product_id")
	if err != nil {
		return nil, err
	}
	if !ok || productID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "Invalid product ID")
	}
	amount, _, err := intField(req, "amount")
	if err != nil {
		return nil, err
	}
	dir, err := domain.ParseDirection(req.GetFields()["direction"].GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	h.log.Infof("gRPC Handler: Received AdjustStock request: ID=%d %s %d", productID, dir, amount)
	product, err := h.stockUseCase.AdjustStock(ctx, productID, amount, dir)
	if err != nil {
		h.log.Warnf("gRPC Handler: AdjustStock use case error for ID %d: %v", productID, err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	return toStruct(product)
}

func (h *InventoryHandler) GetSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	threshold, set, err := intField(req, "threshold")
	if err != nil {
		return nil, err
	}
	if !set {
		threshold = h.reportUseCase.DefaultThreshold()
	}

	h.log.Infof("gRPC Handler: Received GetSummary request: threshold=%d", threshold)
	summary, err := h.reportUseCase.Summary(ctx, threshold)
	if err != nil {
		h.log.Errorf("gRPC Handler: GetSummary use case error: %v", err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	return toStruct(summary)
}

func mapDomainErrorToGrpcStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case domain.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrReferentialConstraint), errors.Is(err, domain.ErrInsufficientStock):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Errorf(codes.Internal, "Internal server error: %v", err)
	}
}

// UnaryServerInterceptor logs each call and counts it by status code.
func UnaryServerInterceptor(logger *logrus.Logger, m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		code := status.Code(err)
		m.ObserveGRPCRequest(info.FullMethod, code.String())
		entry := logger.WithFields(logrus.Fields{
			"method": info.FullMethod,
			"code":   code.String(),
		})
		if err != nil {
			entry.Warnf("gRPC call failed: %v", err)
		} else {
			entry.Info("gRPC call completed")
		}
		return resp, err
	}
}
