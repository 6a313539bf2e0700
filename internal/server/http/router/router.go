package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polkiloo/eventmart/internal/server/http/handlers"
	"github.com/polkiloo/eventmart/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.MarketplaceFacade, gatherer prometheus.Gatherer, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	engine.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	sessionHandler := handlers.NewSessionHandler(facade)
	checkoutHandler := handlers.NewCheckoutHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade)

	api := engine.Group("/api")
	api.POST("/session", sessionHandler.Login)
	api.DELETE("/session", sessionHandler.Logout)

	authed := api.Group("")
	authed.Use(middleware.SessionRequired(facade))
	authed.GET("/session", sessionHandler.Current)
	authed.POST("/checkout", checkoutHandler.Submit)
	authed.POST("/checkout/retry", checkoutHandler.Retry)
	authed.GET("/orders", orderHandler.List)
	authed.DELETE("/orders/:order_id/sub-orders/:sub_order_id", orderHandler.DeleteSubOrder)
	authed.POST("/orders/:order_id/payments/online", paymentHandler.StartOnline)
	authed.POST("/orders/:order_id/payments/online/verify", paymentHandler.VerifyOnline)
	authed.POST("/orders/:order_id/payments/cod", paymentHandler.CashOnDelivery)
	authed.GET("/orders/:order_id/settlement", paymentHandler.Settlement)

	return engine
}
