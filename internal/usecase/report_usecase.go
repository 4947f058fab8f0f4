package usecase

import (
	"context"
	"fmt"
	"time"

	"inventory_ledger/internal/domain"
	"inventory_ledger/internal/export"
	"inventory_ledger/internal/metrics"
	"inventory_ledger/internal/report"

	"github.com/sirupsen/logrus"
)

type ReportOptions struct {
	DefaultThreshold int
	ArchivePrefix    string
	// Now is used to name archived exports. Defaults to time.Now.
	Now func() time.Time
}

type ReportUseCase interface {
	DefaultThreshold() int
	Summary(ctx context.Context, threshold int) (*report.Summary, error)
	LowStock(ctx context.Context, threshold int) ([]domain.ProductView, error)
	ExportCSV(ctx context.Context) ([]byte, error)
	// ArchiveExport stores a CSV snapshot in the configured sink and returns its key.
	ArchiveExport(ctx context.Context) (string, error)
}

type reportUseCase struct {
	productRepo  domain.ProductRepository
	categoryRepo domain.CategoryRepository
	sink         export.Sink
	opts         ReportOptions
	metrics      *metrics.Metrics
	log          *logrus.Logger
}

// NewReportUseCase wires the reporting use case. sink may be nil, in which case
// ArchiveExport returns domain.ErrExportDisabled.
func NewReportUseCase(pRepo domain.ProductRepository, cRepo domain.CategoryRepository, sink export.Sink, opts ReportOptions, m *metrics.Metrics, logger *logrus.Logger) ReportUseCase {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &reportUseCase{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		sink:         sink,
		opts:         opts,
		metrics:      m,
		log:          logger,
	}
}

func (uc *reportUseCase) DefaultThreshold() int { return uc.opts.DefaultThreshold }

func (uc *reportUseCase) load(ctx context.Context) ([]domain.Product, domain.CategoryLookup, error) {
	products, err := uc.productRepo.ListProducts(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load products for report: %v", err)
		return nil, nil, fmt.Errorf("could not retrieve products: %w", err)
	}
	categories, err := uc.categoryRepo.ListCategories(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load categories for report: %v", err)
		return nil, nil, fmt.Errorf("could not retrieve categories: %w", err)
	}
	return products, domain.NewCategoryLookup(categories), nil
}

func checkThreshold(threshold int) error {
	if threshold < 0 {
		return &domain.ValidationError{Field: "threshold", Err: domain.ErrNegativeValue}
	}
	return nil
}

func (uc *reportUseCase) Summary(ctx context.Context, threshold int) (*report.Summary, error) {
	if err := checkThreshold(threshold); err != nil {
		return nil, err
	}
	products, lookup, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	summary := report.Summarize(products, lookup, threshold)
	uc.metrics.SetInventory(summary.TotalUnits, summary.TotalValue)
	uc.log.Infof("Use Case: Summary built for %d products, total value %.2f", summary.Products, summary.TotalValue)
	return &summary, nil
}

func (uc *reportUseCase) LowStock(ctx context.Context, threshold int) ([]domain.ProductView, error) {
	if err := checkThreshold(threshold); err != nil {
		return nil, err
	}
	products, lookup, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	return report.Join(report.LowStock(products, threshold), lookup), nil
}

func (uc *reportUseCase) render(ctx context.Context) ([]byte, error) {
	products, lookup, err := uc.load(ctx)
	if err != nil {
		return nil, err
	}
	data, err := export.SerializeCSV(export.ToFlatRows(products, lookup))
	if err != nil {
		uc.log.Errorf("Use Case: Failed to serialize export: %v", err)
		return nil, err
	}
	uc.log.Infof("Use Case: Exported %d products (%d bytes)", len(products), len(data))
	return data, nil
}

func (uc *reportUseCase) ExportCSV(ctx context.Context) ([]byte, error) {
	data, err := uc.render(ctx)
	if err != nil {
		return nil, err
	}
	uc.metrics.ExportDone("download")
	return data, nil
}

func (uc *reportUseCase) ArchiveExport(ctx context.Context) (string, error) {
	if uc.sink == nil {
		return "", domain.ErrExportDisabled
	}
	data, err := uc.render(ctx)
	if err != nil {
		return "", err
	}
	key := export.ObjectKey(uc.opts.ArchivePrefix, uc.opts.Now())
	if err := uc.sink.Put(ctx, key, data, export.ContentType); err != nil {
		uc.log.Errorf("Use Case: Failed to archive export as %s: %v", key, err)
		return "", err
	}
	uc.metrics.ExportDone("archive")
	uc.log.Infof("Use Case: Export archived as %s", key)
	return key, nil
}
