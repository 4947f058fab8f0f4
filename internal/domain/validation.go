package domain

import (
	"math"
	"slices"
	"strings"
	"unicode"
)

// checkName trims name and rejects blank names and names with control characters,
// which would not survive a CSV round trip.
func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Err: ErrEmptyName}
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return "", &ValidationError{Field: "name", Err: ErrInvalidName}
	}
	return name, nil
}

// ValidateCategory checks the fields of a new or edited category and returns it with
// the name trimmed.
func ValidateCategory(name, description string) (Category, error) {
	name, err := checkName(name)
	if err != nil {
		return Category{}, err
	}
	return Category{Name: name, Description: description}, nil
}

// ValidateProduct checks the fields of a new or edited product against the set of
// category ids currently known to the store.
func ValidateProduct(name string, quantity int, price float64, categoryID int, knownCategoryIDs []int) (Product, error) {
	name, err := checkName(name)
	if err != nil {
		return Product{}, err
	}
	if quantity < 0 {
		return Product{}, &ValidationError{Field: "quantity", Err: ErrNegativeValue}
	}
	if quantity > MaxQuantity {
		return Product{}, &ValidationError{Field: "quantity", Err: ErrQuantityOverflow}
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return Product{}, &ValidationError{Field: "price", Err: ErrNegativeValue}
	}
	if !slices.Contains(knownCategoryIDs, categoryID) {
		return Product{}, &ValidationError{Field: "category_id", Err: ErrUnknownCategory}
	}
	return Product{
		Name:       name,
		Quantity:   quantity,
		Price:      price,
		CategoryID: categoryID,
	}, nil
}
