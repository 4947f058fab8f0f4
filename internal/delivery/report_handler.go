package delivery

import (
	"net/http"
	"strconv"

	"inventory_ledger/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReportHandler struct {
	useCase usecase.ReportUseCase
	log     *logrus.Logger
}

func NewReportHandler(uc usecase.ReportUseCase, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ReportHandler) RegisterRoutes(router gin.IRouter) {
	reports := router.Group("/reports")
	{
		reports.GET("/summary", h.Summary)
		reports.GET("/low-stock", h.LowStock)
	}
	exports := router.Group("/export")
	{
		exports.GET("/products.csv", h.DownloadCSV)
		exports.POST("/archive", h.ArchiveCSV)
	}
}

// threshold reads ?threshold=, falling back to the configured default.
func (h *ReportHandler) threshold(c *gin.Context) (int, bool) {
	raw := c.Query("threshold")
	if raw == "" {
		return h.useCase.DefaultThreshold(), true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		h.log.Warnf("Invalid threshold parameter: %s", raw)
		ErrorResponse(c, http.StatusBadRequest, "Invalid threshold: must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func (h *ReportHandler) Summary(c *gin.Context) {
	threshold, ok := h.threshold(c)
	if !ok {
		return
	}
	summary, err := h.useCase.Summary(c.Request.Context(), threshold)
	if err != nil {
		h.log.Errorf("Failed to build summary: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to build summary: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Summary built successfully", summary)
}

func (h *ReportHandler) LowStock(c *gin.Context) {
	threshold, ok := h.threshold(c)
	if !ok {
		return
	}
	rows, err := h.useCase.LowStock(c.Request.Context(), threshold)
	if err != nil {
		h.log.Errorf("Failed to list low stock: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to list low stock: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Low stock products retrieved successfully", rows)
}

func (h *ReportHandler) DownloadCSV(c *gin.Context) {
	data, err := h.useCase.ExportCSV(c.Request.Context())
	if err != nil {
		h.log.Errorf("Failed to export products: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to export products: "+err.Error())
		return
	}
	c.Header("Content-Disposition", `attachment; filename="produkty.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (h *ReportHandler) ArchiveCSV(c *gin.Context) {
	key, err := h.useCase.ArchiveExport(c.Request.Context())
	if err != nil {
		h.log.Errorf("Failed to archive export: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to archive export: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "Export archived successfully", gin.H{"key": key})
}
