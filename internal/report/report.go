// Package report computes dashboard figures over product collections. Every
// function is pure: inputs are never mutated and results are fresh slices.
package report

import (
	"fmt"
	"sort"
	"strings"

	"inventory_ledger/internal/domain"

	"github.com/shopspring/decimal"
)

// UnknownCategory labels products whose category id cannot be resolved.
const UnknownCategory = "unknown"

// SortField names a product attribute SortBy can order on.
type SortField string

const (
	SortByName     SortField = "name"
	SortByQuantity SortField = "quantity"
	SortByPrice    SortField = "price"
	SortByValue    SortField = "value"
)

// ParseSortField maps a query parameter to a SortField. Empty means name.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return SortByName, nil
	case SortByName, SortByQuantity, SortByPrice, SortByValue:
		return f, nil
	default:
		return "", fmt.Errorf("invalid sort field %q", s)
	}
}

// CategoryValue is the summed stock value of one category. Unresolved marks the
// bucket for products whose category id is missing from the lookup.
type CategoryValue struct {
	Category   string  `json:"category"`
	Value      float64 `json:"value"`
	Unresolved bool    `json:"unresolved,omitempty"`
}

// TotalUnits sums quantities.
func TotalUnits(products []domain.Product) int {
	total := 0
	for _, p := range products {
		total += p.Quantity
	}
	return total
}

// TotalValue sums quantity * price. The sum is carried in decimal so it does not
// depend on the order of products.
func TotalValue(products []domain.Product) float64 {
	sum := decimal.Zero
	for _, p := range products {
		sum = sum.Add(productValue(p))
	}
	return sum.InexactFloat64()
}

func productValue(p domain.Product) decimal.Decimal {
	return decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// ByCategoryValue groups stock value by category name, highest value first. Ties are
// ordered by name. Unresolved ids share one bucket labelled UnknownCategory, kept apart
// from a real category of that name.
func ByCategoryValue(products []domain.Product, lookup domain.CategoryLookup) []CategoryValue {
	type bucket struct {
		name       string
		unresolved bool
	}
	sums := make(map[bucket]decimal.Decimal)
	for _, p := range products {
		name, ok := lookup.Name(p.CategoryID)
		if !ok {
			name = UnknownCategory
		}
		key := bucket{name: name, unresolved: !ok}
		sums[key] = sums[key].Add(productValue(p))
	}

	out := make([]CategoryValue, 0, len(sums))
	for key, v := range sums {
		out = append(out, CategoryValue{Category: key.name, Value: v.InexactFloat64(), Unresolved: key.unresolved})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return !out[i].Unresolved && out[j].Unresolved
	})
	return out
}

// LowStock returns products with quantity <= threshold, lowest quantity first.
func LowStock(products []domain.Product, threshold int) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range products {
		if p.Quantity <= threshold {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out
}

// Search keeps products whose name contains substring, ignoring case. An empty
// substring keeps everything.
func Search(products []domain.Product, substring string) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(substring))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if needle == "" || strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

// SortBy orders a copy of products by field. Equal keys keep their input order in
// both directions.
func SortBy(products []domain.Product, field SortField, descending bool) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)

	cmp := compareFunc(field)
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if descending {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compareFunc(field SortField) func(a, b domain.Product) int {
	switch field {
	case SortByQuantity:
		return func(a, b domain.Product) int { return compareOrdered(a.Quantity, b.Quantity) }
	case SortByPrice:
		return func(a, b domain.Product) int { return compareOrdered(a.Price, b.Price) }
	case SortByValue:
		return func(a, b domain.Product) int { return productValue(a).Cmp(productValue(b)) }
	default:
		return func(a, b domain.Product) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	}
}

func compareOrdered[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
