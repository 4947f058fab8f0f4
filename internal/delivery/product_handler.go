package delivery

import (
	"net/http"
	"strconv"

	"inventory_ledger/internal/domain"
	"inventory_ledger/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	useCase usecase.ProductUseCase
	stock   usecase.StockUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, stock usecase.StockUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		stock:   stock,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter) {
	products := router.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProductByID)
		products.PATCH("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
		products.POST("/:id/adjustments", h.AdjustStock)
	}
}

type productRequest struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	CategoryID int     `json:"category_id"`
}

type adjustmentRequest struct {
	Direction string `json:"direction" binding:"required"`
	Amount    int    `json:"amount"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for create product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product := domain.Product{Name: req.Name, Quantity: req.Quantity, Price: req.Price, CategoryID: req.CategoryID}
	created, err := h.useCase.CreateProduct(c.Request.Context(), &product)
	if err != nil {
		h.log.Errorf("Failed to create product '%s': %v", req.Name, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to create product: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Product created successfully", created)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.log.Warnf("Invalid product ID parameter: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.useCase.GetProductByID(c.Request.Context(), id)
	if err != nil {
		h.log.Warnf("Failed to get product by ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve product: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.log.Warnf("Invalid product ID parameter for update: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var patch domain.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.log.Errorf("Failed to bind JSON for update product ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if patch.IsEmpty() {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: no fields provided for update")
		return
	}

	updated, err := h.useCase.UpdateProduct(c.Request.Context(), id, patch)
	if err != nil {
		h.log.Errorf("Failed to update product ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to update product: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Product updated successfully", updated)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.log.Warnf("Invalid product ID parameter for delete: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if err := h.useCase.DeleteProduct(c.Request.Context(), id); err != nil {
		h.log.Warnf("Failed to delete product ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to delete product: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	query := usecase.ProductQuery{
		Search: c.Query("q"),
		Sort:   c.Query("sort"),
	}

	limitStr := c.DefaultQuery("limit", strconv.Itoa(usecase.DefaultPageSize))
	if limit, err := strconv.Atoi(limitStr); err == nil {
		query.Limit = limit
	} else {
		h.log.Warnf("Invalid limit parameter '%s', using default", limitStr)
	}
	offsetStr := c.DefaultQuery("offset", "0")
	if offset, err := strconv.Atoi(offsetStr); err == nil {
		query.Offset = offset
	} else {
		h.log.Warnf("Invalid offset parameter '%s', using default 0", offsetStr)
	}
	if desc := c.Query("desc"); desc != "" {
		d, err := strconv.ParseBool(desc)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid desc parameter")
			return
		}
		query.Descending = d
	}
	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		categoryID, err := strconv.Atoi(categoryIDStr)
		if err != nil || categoryID <= 0 {
			h.log.Warnf("Invalid category_id filter parameter: %s", categoryIDStr)
			ErrorResponse(c, http.StatusBadRequest, "Invalid category_id format")
			return
		}
		query.CategoryID = &categoryID
	}

	page, err := h.useCase.ListProducts(c.Request.Context(), query)
	if err != nil {
		h.log.Errorf("Failed to list products: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve products: "+err.Error())
		return
	}

	if page.Total == 0 {
		SuccessResponse(c, http.StatusOK, "No products found matching criteria", page)
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", page)
}

func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.log.Warnf("Invalid product ID parameter for adjustment: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var req adjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for adjustment of product ID %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	dir, err := domain.ParseDirection(req.Direction)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid direction: use \"in\" or \"out\"")
		return
	}

	product, err := h.stock.AdjustStock(c.Request.Context(), id, req.Amount, dir)
	if err != nil {
		h.log.Warnf("Failed to adjust stock of product ID %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to adjust stock: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Stock adjusted successfully", product)
}
