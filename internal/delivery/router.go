package delivery

import (
	"net/http"

	"inventory_ledger/internal/metrics"
	"inventory_ledger/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const indexPage = `
<!DOCTYPE html>
<html lang="pl">
<head>
    <meta charset="UTF-8">
    <title>Inventory Ledger API</title>
    <style>
        body { font-family: Helvetica, Arial, sans-serif; line-height: 1.6; padding: 20px; background-color: #f9f9f9; color: #333; }
        h1, h2 { border-bottom: 1px solid #ccc; padding-bottom: 5px; }
        ul { list-style: none; padding-left: 0; }
        li { margin-bottom: 10px; background-color: #fff; padding: 8px; border: 1px solid #eee; border-radius: 4px; }
        code { background-color: #e8e8e8; padding: 2px 5px; border-radius: 3px; }
        .method { font-weight: bold; display: inline-block; width: 60px; }
    </style>
</head>
<body>
    <h1>Inventory Ledger API</h1>

    <h2>Categories</h2>
    <ul>
        <li><span class="method">POST</span> <code>/categories</code> <code>{"name", "description"}</code></li>
        <li><span class="method">GET</span> <code><a href="/categories">/categories</a></code>, <code>/categories/{id}</code></li>
        <li><span class="method">PATCH</span> <code>/categories/{id}</code></li>
        <li><span class="method">DELETE</span> <code>/categories/{id}</code> (refused while products reference it)</li>
    </ul>

    <h2>Products</h2>
    <ul>
        <li><span class="method">POST</span> <code>/products</code> <code>{"name", "quantity", "price", "category_id"}</code></li>
        <li><span class="method">GET</span> <code><a href="/products">/products</a></code> ?q, category_id, sort=name|quantity|price|value, desc, limit, offset</li>
        <li><span class="method">GET</span> <code>/products/{id}</code></li>
        <li><span class="method">PATCH</span> <code>/products/{id}</code></li>
        <li><span class="method">DELETE</span> <code>/products/{id}</code></li>
        <li><span class="method">POST</span> <code>/products/{id}/adjustments</code> <code>{"direction": "in|out", "amount"}</code></li>
    </ul>

    <h2>Reports</h2>
    <ul>
        <li><span class="method">GET</span> <code><a href="/reports/summary">/reports/summary</a></code> ?threshold</li>
        <li><span class="method">GET</span> <code><a href="/reports/low-stock">/reports/low-stock</a></code> ?threshold</li>
        <li><span class="method">GET</span> <code><a href="/export/products.csv">/export/products.csv</a></code></li>
        <li><span class="method">POST</span> <code>/export/archive</code></li>
    </ul>
</body>
</html>
`

// RouterConfig carries what NewRouter wires together.
type RouterConfig struct {
	Categories usecase.CategoryUseCase
	Products   usecase.ProductUseCase
	Stock      usecase.StockUseCase
	Reports    usecase.ReportUseCase
	Metrics    *metrics.Metrics
	// Gatherer backs /metrics. The route is omitted when nil.
	Gatherer prometheus.Gatherer
	Logger   *logrus.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(cfg.Logger, cfg.Metrics))

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexPage))
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	NewCategoryHandler(cfg.Categories, cfg.Logger).RegisterRoutes(router)
	NewProductHandler(cfg.Products, cfg.Stock, cfg.Logger).RegisterRoutes(router)
	NewReportHandler(cfg.Reports, cfg.Logger).RegisterRoutes(router)
	return router
}
