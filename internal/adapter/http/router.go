package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sidtn/order-read-api/internal/adapter/http/middleware"
	"github.com/sidtn/order-read-api/internal/logging"
)

// NewRouter wires the read endpoints. This is the only front end in
// this repo; other transports bind the same usecase.OrderReader.
func NewRouter(h *OrderHandler, healthz gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", healthz)
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/orders/:id", h.GetOrderFull)
		v1.GET("/orders/:id/lite", h.GetOrderLite)
	}

	return r
}
