package domain

import "strings"

// Category is a named grouping for products, stored in the `kategorie` table.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Product is a stocked item, stored in the `produkty` table.
type Product struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	CategoryID int     `json:"category_id"`
}

// Value is quantity * price.
func (p Product) Value() float64 {
	return float64(p.Quantity) * p.Price
}

// ProductView is a product joined with the name of its category.
type ProductView struct {
	Product
	CategoryName string  `json:"category_name"`
	StockValue   float64 `json:"value"`
}

// CategoryPatch carries the fields of a category edit. Nil fields are left untouched.
type CategoryPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (p CategoryPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil
}

// Apply returns a copy of c with the patch applied.
func (p CategoryPatch) Apply(c Category) Category {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	return c
}

// ProductPatch carries the fields of a product edit. Nil fields are left untouched.
type ProductPatch struct {
	Name       *string  `json:"name"`
	Quantity   *int     `json:"quantity"`
	Price      *float64 `json:"price"`
	CategoryID *int     `json:"category_id"`
}

func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Quantity == nil && p.Price == nil && p.CategoryID == nil
}

// Apply returns a copy of prod with the patch applied.
func (p ProductPatch) Apply(prod Product) Product {
	if p.Name != nil {
		prod.Name = strings.TrimSpace(*p.Name)
	}
	if p.Quantity != nil {
		prod.Quantity = *p.Quantity
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.CategoryID != nil {
		prod.CategoryID = *p.CategoryID
	}
	return prod
}

// CategoryLookup resolves category ids to display names.
type CategoryLookup map[int]string

// NewCategoryLookup indexes categories by id.
func NewCategoryLookup(categories []Category) CategoryLookup {
	lookup := make(CategoryLookup, len(categories))
	for _, c := range categories {
		lookup[c.ID] = c.Name
	}
	return lookup
}

// Name returns the category name for id and whether it was found.
func (l CategoryLookup) Name(id int) (string, bool) {
	name, ok := l[id]
	return name, ok
}

// IDs returns the known category ids.
func (l CategoryLookup) IDs() []int {
	ids := make([]int, 0, len(l))
	for id := range l {
		ids = append(ids, id)
	}
	return ids
}
