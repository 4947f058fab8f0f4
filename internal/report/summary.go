package report

import "inventory_ledger/internal/domain"

// Summary is the dashboard view of the whole inventory.
type Summary struct {
	Categories int              `json:"categories"`
	Products   int              `json:"products"`
	TotalUnits int              `json:"total_units"`
	TotalValue float64          `json:"total_value"`
	ByCategory []CategoryValue  `json:"by_category"`
	Threshold  int              `json:"low_stock_threshold"`
	LowStock   []domain.Product `json:"low_stock"`
}

// Summarize builds the dashboard summary.
func Summarize(products []domain.Product, lookup domain.CategoryLookup, threshold int) Summary {
	return Summary{
		Categories: len(lookup),
		Products:   len(products),
		TotalUnits: TotalUnits(products),
		TotalValue: TotalValue(products),
		ByCategory: ByCategoryValue(products, lookup),
		Threshold:  threshold,
		LowStock:   LowStock(products, threshold),
	}
}

// Join attaches category names and values to products. Unresolved categories get
// UnknownCategory; CategoryID still tells them apart from a category of that name.
func Join(products []domain.Product, lookup domain.CategoryLookup) []domain.ProductView {
	out := make([]domain.ProductView, 0, len(products))
	for _, p := range products {
		name, ok := lookup.Name(p.CategoryID)
		if !ok {
			name = UnknownCategory
		}
		out = append(out, domain.ProductView{
			Product:      p,
			CategoryName: name,
			StockValue:   productValue(p).InexactFloat64(),
		})
	}
	return out
}
