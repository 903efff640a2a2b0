// README: Cost breakdown data model and calculation constants.
package costing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"loadapp/internal/types"
)

var (
	ErrValidation = errors.New("invalid cost input")
)

// DefaultCurrency is the currency every breakdown is expressed in.
// Multi-currency pricing is out of scope.
const DefaultCurrency = "EUR"

// Vehicle classes and their fuel consumption in liters per km.
// An unknown class falls back to the truck rate.
const (
	VehicleTruck = "truck"
	VehicleVan   = "van"
)

var consumptionRates = map[string]decimal.Decimal{
	VehicleTruck: decimal.NewFromFloat(0.35),
	VehicleVan:   decimal.NewFromFloat(0.15),
}

// Toll cost splits a segment's distance across road classes.
var (
	tollHighwayShare  = decimal.NewFromFloat(0.7)
	tollNationalShare = decimal.NewFromFloat(0.3)
)

// Rest period rules (EU driving-time shape): a 15-minute short break
// every 4.5 hours, an 11-hour long rest every 9 hours.
var (
	shortBreakInterval = decimal.NewFromFloat(4.5)
	longBreakInterval  = decimal.NewFromFloat(9.0)
	shortBreakHours    = decimal.NewFromFloat(0.25)
	longBreakHours     = decimal.NewFromFloat(11.0)
)

// Loading plus unloading is billed as a fixed two hours regardless of
// cargo volume.
var loadingUnloadingHours = decimal.NewFromInt(2)

// HazmatSurcharge is the flat fee added for hazardous cargo.
var HazmatSurcharge = decimal.NewFromFloat(150.0)

// CountrySegment is the contiguous part of a route inside one country.
type CountrySegment struct {
	CountryCode   string          `json:"country_code"`
	DistanceKm    decimal.Decimal `json:"distance_km"`
	DurationHours decimal.Decimal `json:"duration_hours"`
	// TollRates optionally overrides the settings table for this
	// segment (road class → rate per km).
	TollRates map[string]decimal.Decimal `json:"toll_rates,omitempty"`
}

// EmptyDriving is the unladen leg driven to reach the pickup. It is
// created once per route and costed at the empty-driving factors.
type EmptyDriving struct {
	DistanceKm    decimal.Decimal  `json:"distance_km"`
	DurationHours decimal.Decimal  `json:"duration_hours"`
	Origin        *types.Location  `json:"origin,omitempty"`
	Destination   *types.Location  `json:"destination,omitempty"`
	Segments      []CountrySegment `json:"segments"`
}

// Cargo describes the load being priced. Requirements carries the
// magnitude of each declared special requirement (for example
// "volume" in m³ or "temperature" in controlled hours).
type Cargo struct {
	Type         string                     `json:"type"`
	WeightKg     decimal.Decimal            `json:"weight_kg"`
	Hazardous    bool                       `json:"hazardous"`
	Requirements map[string]decimal.Decimal `json:"requirements,omitempty"`
}

// Empty-driving cost component keys inside CostBreakdown.EmptyDrivingCosts.
const (
	ComponentFuel   = "fuel"
	ComponentToll   = "toll"
	ComponentDriver = "driver"
)

// CostBreakdown is the itemized, additive decomposition of one route's
// cost. It is immutable: re-pricing produces a new breakdown.
type CostBreakdown struct {
	ID      types.ID `json:"id"`
	RouteID types.ID `json:"route_id,omitempty"`

	FuelCosts        map[string]decimal.Decimal `json:"fuel_costs"`        // country → cost
	TollCosts        map[string]decimal.Decimal `json:"toll_costs"`        // country → cost
	MaintenanceCosts map[string]decimal.Decimal `json:"maintenance_costs"` // country → cost
	DriverCosts      map[string]decimal.Decimal `json:"driver_costs"`      // country → cost

	RestPeriodCost       decimal.Decimal `json:"rest_period_cost"`
	LoadingUnloadingCost decimal.Decimal `json:"loading_unloading_cost"`

	EmptyDrivingCosts map[string]map[string]decimal.Decimal `json:"empty_driving_costs"` // country → component → cost
	CargoCosts        map[string]decimal.Decimal            `json:"cargo_costs"`         // category → cost
	OverheadCosts     map[string]decimal.Decimal            `json:"overhead_costs"`      // distance/time/fixed → cost

	SubtotalDistanceBased decimal.Decimal `json:"subtotal_distance_based"`
	SubtotalTimeBased     decimal.Decimal `json:"subtotal_time_based"`
	SubtotalEmptyDriving  decimal.Decimal `json:"subtotal_empty_driving"`
	TotalCost             decimal.Decimal `json:"total_cost"`

	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

func sumValues(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}
