// README: Route handlers for create/get/recalculate.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loadapp/internal/modules/route"
	"loadapp/internal/types"
)

type RouteHandler struct {
	routes *route.Service
}

func NewRouteHandler(svc *route.Service) *RouteHandler {
	return &RouteHandler{routes: svc}
}

type locationReq struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l *locationReq) toLocation() types.Location {
	return types.Location{Address: l.Address, Latitude: l.Latitude, Longitude: l.Longitude}
}

type createRouteReq struct {
	Origin        locationReq  `json:"origin"`
	Destination   locationReq  `json:"destination"`
	TruckLocation *locationReq `json:"truck_location,omitempty"`
}

func (h *RouteHandler) Create(c *gin.Context) {
	var req createRouteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	cmd := route.CreateCommand{
		Origin:      req.Origin.toLocation(),
		Destination: req.Destination.toLocation(),
	}
	if req.TruckLocation != nil {
		loc := req.TruckLocation.toLocation()
		cmd.TruckLocation = &loc
	}

	r, err := h.routes.Create(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *RouteHandler) Get(c *gin.Context) {
	r, err := h.routes.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RouteHandler) List(c *gin.Context) {
	routes, err := h.routes.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

type recalculateReq struct {
	TruckLocation *locationReq `json:"truck_location,omitempty"`
}

func (h *RouteHandler) Recalculate(c *gin.Context) {
	var req recalculateReq
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	var truck *types.Location
	if req.TruckLocation != nil {
		loc := req.TruckLocation.toLocation()
		truck = &loc
	}

	r, err := h.routes.Recalculate(c.Request.Context(), types.ID(c.Param("id")), truck)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
