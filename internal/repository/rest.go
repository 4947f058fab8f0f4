package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"inventory_ledger/internal/domain"

	"github.com/sirupsen/logrus"
)

const (
	tableCategories = "kategorie"
	tableProducts   = "produkty"
)

// RESTClient talks to a PostgREST endpoint such as the one Supabase exposes under
// /rest/v1. Row shapes follow the hosted tables.
type RESTClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

func NewRESTClient(baseURL, apiKey string, timeout time.Duration, logger *logrus.Logger) *RESTClient {
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger,
	}
}

// Categories returns the client as a domain.CategoryRepository.
func (c *RESTClient) Categories() domain.CategoryRepository { return restCategories{c} }

// Products returns the client as a domain.ProductRepository.
func (c *RESTClient) Products() domain.ProductRepository { return restProducts{c} }

type categoryRow struct {
	ID    int     `json:"id,omitempty"`
	Nazwa string  `json:"nazwa"`
	Opis  *string `json:"opis"`
}

func (r categoryRow) toDomain() domain.Category {
	c := domain.Category{ID: r.ID, Name: r.Nazwa}
	if r.Opis != nil {
		c.Description = *r.Opis
	}
	return c
}

type productRow struct {
	ID          int     `json:"id,omitempty"`
	Nazwa       string  `json:"nazwa"`
	Liczba      int     `json:"liczba"`
	Cena        float64 `json:"cena"`
	KategoriaID int     `json:"kategoria_id"`
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{ID: r.ID, Name: r.Nazwa, Quantity: r.Liczba, Price: r.Cena, CategoryID: r.KategoriaID}
}

// postgrestError is the error body PostgREST returns for rejected statements.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func idFilter(id int) url.Values {
	return url.Values{"id": {"eq." + strconv.Itoa(id)}}
}

// do sends one request and decodes the JSON answer into out. onFK gives the meaning of
// a foreign key violation for this statement.
func (c *RESTClient) do(ctx context.Context, method, table string, query url.Values, body any, out any, onFK error) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			c.log.Errorf("RESTClient: Failed to marshal %s body for %s: %v", method, table, err)
			return fmt.Errorf("failed to prepare request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		c.log.Errorf("RESTClient: Failed to create %s request for %s: %v", method, endpoint, err)
		return fmt.Errorf("failed to create store request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	c.log.Debugf("RESTClient: %s %s", method, endpoint)
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Errorf("RESTClient: %s %s failed: %v", method, endpoint, err)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Errorf("RESTClient: Failed to read response of %s %s: %v", method, endpoint, err)
		return fmt.Errorf("%w: reading response: %v", domain.ErrStoreUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.log.Errorf("RESTClient: %s %s returned status %d. Response body: %s", method, endpoint, resp.StatusCode, string(respBody))
		return fmt.Errorf("%w: store returned status %d", domain.ErrStoreUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr postgrestError
		_ = json.Unmarshal(respBody, &apiErr)
		c.log.Warnf("RESTClient: %s %s rejected with status %d, code %q: %s", method, endpoint, resp.StatusCode, apiErr.Code, apiErr.Message)
		if mapped := classifySQLState(apiErr.Code, apiErr.Message, onFK); mapped != nil {
			return mapped
		}
		return fmt.Errorf("store returned status %d: %s", resp.StatusCode, apiErr.Message)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		c.log.Errorf("RESTClient: Failed to decode response of %s %s: %v", method, endpoint, err)
		return fmt.Errorf("failed to decode store response: %w", err)
	}
	return nil
}

type restCategories struct{ c *RESTClient }

func (r restCategories) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	desc := category.Description
	var rows []categoryRow
	err := r.c.do(ctx, http.MethodPost, tableCategories, nil,
		categoryRow{Nazwa: category.Name, Opis: &desc}, &rows, domain.ErrUnknownCategory)
	if err != nil {
		return nil, fmt.Errorf("could not create category: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("could not create category: store returned no row")
	}
	created := rows[0].toDomain()
	category.ID = created.ID
	r.c.log.Infof("Category created successfully with ID: %d, Name: %s", created.ID, created.Name)
	return &created, nil
}

func (r restCategories) GetCategoryByID(ctx context.Context, id int) (*domain.Category, error) {
	var rows []categoryRow
	q := idFilter(id)
	q.Set("select", "*")
	if err := r.c.do(ctx, http.MethodGet, tableCategories, q, nil, &rows, domain.ErrUnknownCategory); err != nil {
		return nil, fmt.Errorf("could not get category by id: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}
	category := rows[0].toDomain()
	return &category, nil
}

func (r restCategories) UpdateCategory(ctx context.Context, id int, patch domain.CategoryPatch) (*domain.Category, error) {
	if patch.IsEmpty() {
		return r.GetCategoryByID(ctx, id)
	}
	fields := map[string]any{}
	if patch.Name != nil {
		fields["nazwa"] = *patch.Name
	}
	if patch.Description != nil {
		fields["opis"] = *patch.Description
	}
	var rows []categoryRow
	if err := r.c.do(ctx, http.MethodPatch, tableCategories, idFilter(id), fields, &rows, domain.ErrUnknownCategory); err != nil {
		return nil, fmt.Errorf("could not update category: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}
	category := rows[0].toDomain()
	r.c.log.Infof("Category updated successfully with ID: %d", id)
	return &category, nil
}

func (r restCategories) DeleteCategory(ctx context.Context, id int) error {
	var rows []categoryRow
	if err := r.c.do(ctx, http.MethodDelete, tableCategories, idFilter(id), nil, &rows, domain.ErrReferentialConstraint); err != nil {
		return fmt.Errorf("could not delete category %d: %w", id, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}
	r.c.log.Infof("Category deleted successfully with ID: %d", id)
	return nil
}

func (r restCategories) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var rows []categoryRow
	q := url.Values{"select": {"*"}, "order": {"id.asc"}}
	if err := r.c.do(ctx, http.MethodGet, tableCategories, q, nil, &rows, domain.ErrUnknownCategory); err != nil {
		return nil, fmt.Errorf("could not list categories: %w", err)
	}
	categories := make([]domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.toDomain())
	}
	return categories, nil
}

type restProducts struct{ c *RESTClient }

func (r restProducts) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	row := productRow{Nazwa: product.Name, Liczba: product.Quantity, Cena: product.Price, KategoriaID: product.CategoryID}
	var rows []productRow
	if err := r.c.do(ctx, http.MethodPost, tableProducts, nil, row, &rows, domain.ErrUnknownCategory); err != nil {
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("could not create product: store returned no row")
	}
	created := rows[0].toDomain()
	product.ID = created.ID
	r.c.log.Infof("Product created successfully with ID: %d, Name: %s", created.ID, created.Name)
	return &created, nil
}

func (r restProducts) GetProductByID(ctx context.Context, id int) (*domain.Product, error) {
	var rows []productRow
	q := idFilter(id)
	q.Set("select", "*")
	if err := r.c.do(ctx, http.MethodGet, tableProducts, q, nil, &rows, domain.ErrUnknownCategory); err != nil {
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
	}
	product := rows[0].toDomain()
	return &product, nil
}

func (r restProducts) UpdateProduct(ctx context.Context, id int, patch domain.ProductPatch) (*domain.Product, error) {
	if patch.IsEmpty() {
		return r.GetProductByID(ctx, id)
	}
	fields := map[string]any{}
	if patch.Name != nil {
		fields["nazwa"] = *patch.Name
	}
	if patch.Quantity != nil {
		fields["liczba"] = *patch.Quantity
	}
	if patch.Price != nil {
		fields["cena"] = *patch.Price
	}
	if patch.CategoryID != nil {
		fields["kategoria_id"] = *patch.CategoryID
	}
	var rows []productRow
	if err := r.c.do(ctx, http.MethodPatch, tableProducts, idFilter(id), fields, &rows, domain.ErrUnknownCategory); err != nil {
		return nil, fmt.Errorf("could not update product: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
	}
	product := rows[0].toDomain()
	r.c.log.Infof("Repository: Partial update successful for product ID %d", id)
	return &product, nil
}

func (r restProducts) SetQuantityIfUnchanged(ctx context.Context, id, expected, newQuantity int) (*domain.Product, error) {
	q := idFilter(id)
	q.Set("liczba", "eq."+strconv.Itoa(expected))
	var rows []productRow
	err := r.c.do(ctx, http.MethodPatch, tableProducts, q, map[string]int{"liczba": newQuantity}, &rows, domain.ErrUnknownCategory)
	if err != nil {
		return nil, fmt.Errorf("could not update product quantity: %w", err)
	}
	if len(rows) > 0 {
		product := rows[0].toDomain()
		r.c.log.Infof("Repository: Quantity of product %d changed %d -> %d", id, expected, newQuantity)
		return &product, nil
	}

	if _, err := r.GetProductByID(ctx, id); err != nil {
		return nil, err
	}
	r.c.log.Warnf("Repository: Quantity of product %d is no longer %d", id, expected)
	return nil, fmt.Errorf("product %d quantity changed from %d: %w", id, expected, domain.ErrConflict)
}

func (r restProducts) DeleteProduct(ctx context.Context, id int) error {
	var rows []productRow
	if err := r.c.do(ctx, http.MethodDelete, tableProducts, idFilter(id), nil, &rows, domain.ErrReferentialConstraint); err != nil {
		return fmt.Errorf("could not delete product: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
	}
	r.c.log.Infof("Product deleted successfully with ID: %d", id)
	return nil
}

func (r restProducts) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	q := url.Values{"select": {"*"}, "order": {"id.asc"}}
	if err := r.c.do(ctx, http.MethodGet, tableProducts, q, nil, &rows, domain.ErrUnknownCategory); err != nil {
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products, nil
}
