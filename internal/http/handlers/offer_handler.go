// README: Offer handlers; orchestrate cost calculation and offer pricing.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"loadapp/internal/modules/costing"
	"loadapp/internal/modules/offer"
	"loadapp/internal/modules/route"
	"loadapp/internal/modules/settings"
	"loadapp/internal/types"
)

type OfferHandler struct {
	routes   *route.Service
	settings *settings.Service
	costs    *costing.Service
	offers   *offer.Service
}

func NewOfferHandler(routes *route.Service, settingsSvc *settings.Service, costs *costing.Service, offers *offer.Service) *OfferHandler {
	return &OfferHandler{routes: routes, settings: settingsSvc, costs: costs, offers: offers}
}

type cargoReq struct {
	Type         string             `json:"type"`
	WeightKg     float64            `json:"weight_kg"`
	Hazardous    bool               `json:"hazardous"`
	Requirements map[string]float64 `json:"requirements,omitempty"`
}

func (r *cargoReq) toCargo() *costing.Cargo {
	cargo := &costing.Cargo{
		Type:      r.Type,
		WeightKg:  decimal.NewFromFloat(r.WeightKg),
		Hazardous: r.Hazardous,
	}
	if len(r.Requirements) > 0 {
		cargo.Requirements = make(map[string]decimal.Decimal, len(r.Requirements))
		for k, v := range r.Requirements {
			cargo.Requirements[k] = decimal.NewFromFloat(v)
		}
	}
	return cargo
}

type createOfferReq struct {
	RouteID      string            `json:"route_id"`
	Margin       float64           `json:"margin"` // percentage points
	VehicleClass string            `json:"vehicle_class,omitempty"`
	Cargo        *cargoReq         `json:"cargo,omitempty"`
	IncludeEmpty *bool             `json:"include_empty_driving,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	Actor        string            `json:"actor,omitempty"`
}

// Create runs the full pricing pipeline: route → cost breakdown →
// priced draft offer.
func (h *OfferHandler) Create(c *gin.Context) {
	var req createOfferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.RouteID == "" {
		writeError(c, http.StatusBadRequest, "route_id is required")
		return
	}

	ctx := c.Request.Context()
	r, err := h.routes.Get(ctx, types.ID(req.RouteID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	snap, err := h.settings.Current(ctx)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	in := costing.Input{
		RouteID:      r.ID,
		Segments:     r.Segments,
		Empty:        r.Empty,
		Settings:     snap,
		VehicleClass: req.VehicleClass,
	}
	if req.IncludeEmpty != nil && !*req.IncludeEmpty {
		in.Empty = nil
	}
	if req.Cargo != nil {
		in.Cargo = req.Cargo.toCargo()
	}

	breakdown, err := h.costs.Calculate(in)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	distance, _ := r.TotalDistanceKm.Float64()
	duration, _ := r.TotalDurationHours.Float64()
	o, err := h.offers.Price(ctx, offer.PriceCommand{
		RouteID:       r.ID,
		Origin:        r.Origin.Address,
		Destination:   r.Destination.Address,
		DistanceKm:    distance,
		DurationHours: duration,
		Breakdown:     breakdown,
		Margin:        decimal.NewFromFloat(req.Margin),
		Metadata:      req.Metadata,
		Actor:         req.Actor,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"offer": o, "cost_breakdown": breakdown})
}

// Calculate exposes the cost engine without creating an offer.
func (h *OfferHandler) Calculate(c *gin.Context) {
	var req createOfferReq
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	ctx := c.Request.Context()
	r, err := h.routes.Get(ctx, types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	snap, err := h.settings.Current(ctx)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	in := costing.Input{
		RouteID:      r.ID,
		Segments:     r.Segments,
		Empty:        r.Empty,
		Settings:     snap,
		VehicleClass: req.VehicleClass,
	}
	if req.Cargo != nil {
		in.Cargo = req.Cargo.toCargo()
	}

	breakdown, err := h.costs.Calculate(in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (h *OfferHandler) Get(c *gin.Context) {
	o, err := h.offers.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OfferHandler) List(c *gin.Context) {
	offers, err := h.offers.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

type updateOfferReq struct {
	Margin   *float64          `json:"margin,omitempty"`
	Status   *string           `json:"status,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Actor    string            `json:"actor,omitempty"`
	Reason   string            `json:"reason,omitempty"`
}

func (h *OfferHandler) Update(c *gin.Context) {
	var req updateOfferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	cmd := offer.UpdateCommand{
		OfferID:  types.ID(c.Param("id")),
		Metadata: req.Metadata,
		Actor:    req.Actor,
		Reason:   req.Reason,
	}
	if req.Margin != nil {
		m := decimal.NewFromFloat(*req.Margin)
		cmd.Margin = &m
	}
	if req.Status != nil {
		s := offer.Status(*req.Status)
		cmd.Status = &s
	}

	o, entry, err := h.offers.Update(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offer": o, "history_entry": entry})
}

type archiveOfferReq struct {
	Actor  string `json:"actor,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func (h *OfferHandler) Archive(c *gin.Context) {
	var req archiveOfferReq
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	o, err := h.offers.Archive(c.Request.Context(), types.ID(c.Param("id")), req.Actor, req.Reason)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *OfferHandler) History(c *gin.Context) {
	history, err := h.offers.History(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}
