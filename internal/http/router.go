// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loadapp/internal/http/handlers"
	"loadapp/internal/http/middleware"
	"loadapp/internal/modules/costing"
	"loadapp/internal/modules/offer"
	"loadapp/internal/modules/route"
	"loadapp/internal/modules/settings"
)

func NewRouter(
	routeService *route.Service,
	settingsService *settings.Service,
	costingService *costing.Service,
	offerService *offer.Service,
) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	routeHandler := handlers.NewRouteHandler(routeService)
	r.POST("/api/routes", routeHandler.Create)
	r.GET("/api/routes", routeHandler.List)
	r.GET("/api/routes/:id", routeHandler.Get)
	r.POST("/api/routes/:id/recalculate", routeHandler.Recalculate)

	offerHandler := handlers.NewOfferHandler(routeService, settingsService, costingService, offerService)
	r.POST("/api/routes/:id/costs", offerHandler.Calculate)
	r.POST("/api/offers", offerHandler.Create)
	r.GET("/api/offers", offerHandler.List)
	r.GET("/api/offers/:id", offerHandler.Get)
	r.PUT("/api/offers/:id", offerHandler.Update)
	r.POST("/api/offers/:id/archive", offerHandler.Archive)
	r.GET("/api/offers/:id/history", offerHandler.History)

	settingsHandler := handlers.NewSettingsHandler(settingsService)
	r.GET("/api/settings", settingsHandler.Current)
	r.GET("/api/settings/defaults", settingsHandler.Defaults)
	r.PUT("/api/settings", settingsHandler.Update)
	r.GET("/api/settings/history", settingsHandler.History)
	r.GET("/api/settings/versions/:version", settingsHandler.ByVersion)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
