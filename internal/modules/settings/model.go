// README: Versioned rate settings snapshot and lookup-with-default accessors.
package settings

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"loadapp/internal/types"
)

var (
	ErrValidation     = errors.New("invalid rate settings")
	ErrReasonRequired = errors.New("change reason is required")
	ErrNotFound       = errors.New("rate settings not found")
)

// Road classes used in toll rate tables.
const (
	RoadHighway  = "highway"
	RoadNational = "national"
)

// Empty-driving factor keys.
const (
	FactorFuel   = "fuel"
	FactorToll   = "toll"
	FactorDriver = "driver"
)

// Overhead rate keys.
const (
	OverheadDistance = "distance"
	OverheadTime     = "time"
	OverheadFixed    = "fixed"
)

// Documented fallbacks applied when a country (or factor) is missing
// from a snapshot. Defined once here so every lookup shares them.
var (
	DefaultFuelPrice    = decimal.NewFromFloat(1.80) // per liter
	DefaultDriverRate   = decimal.NewFromFloat(25.0) // per hour
	DefaultTollHighway  = decimal.NewFromFloat(0.15) // per km
	DefaultTollNational = decimal.NewFromFloat(0.10) // per km

	defaultEmptyFactors = map[string]decimal.Decimal{
		FactorFuel:   decimal.NewFromFloat(0.8),
		FactorToll:   decimal.NewFromFloat(1.0),
		FactorDriver: decimal.NewFromFloat(1.0),
	}
)

// RateSettings is an immutable, versioned snapshot of every rate the
// cost engine consumes. Updates always produce a new version; a
// snapshot is never mutated in place.
type RateSettings struct {
	ID      types.ID `json:"id"`
	Version int      `json:"version"`
	Name    string   `json:"name"`

	FuelPrices  map[string]decimal.Decimal            `json:"fuel_prices"`  // country → price per liter
	DriverRates map[string]decimal.Decimal            `json:"driver_rates"` // country → rate per hour
	TollRates   map[string]map[string]decimal.Decimal `json:"toll_rates"`   // country → road class → rate per km

	MaintenanceRatePerKm decimal.Decimal `json:"maintenance_rate_per_km"`
	RestPeriodRate       decimal.Decimal `json:"rest_period_rate"`       // per hour
	LoadingUnloadingRate decimal.Decimal `json:"loading_unloading_rate"` // per hour

	EmptyDrivingFactors map[string]decimal.Decimal            `json:"empty_driving_factors"` // fuel/toll/driver → multiplier in [0,2]
	CargoFactors        map[string]map[string]decimal.Decimal `json:"cargo_factors"`         // cargo type → attribute → multiplier in [0,5]
	OverheadRates       map[string]decimal.Decimal            `json:"overhead_rates"`        // distance/time/fixed → rate

	ChangeReason string    `json:"change_reason"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// ChangeRecord is one line of the settings audit history.
type ChangeRecord struct {
	ID           types.ID  `json:"id"`
	Version      int       `json:"version"`
	ChangeReason string    `json:"change_reason"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// FuelPrice returns the per-liter fuel price for a country, falling
// back to the documented default when the country is unmodeled.
func (s *RateSettings) FuelPrice(country string) decimal.Decimal {
	if v, ok := s.FuelPrices[country]; ok {
		return v
	}
	return DefaultFuelPrice
}

// DriverRate returns the per-hour driver rate for a country.
func (s *RateSettings) DriverRate(country string) decimal.Decimal {
	if v, ok := s.DriverRates[country]; ok {
		return v
	}
	return DefaultDriverRate
}

// TollRate returns the per-km toll rate for a country and road class.
func (s *RateSettings) TollRate(country, roadClass string) decimal.Decimal {
	if rates, ok := s.TollRates[country]; ok {
		if v, ok := rates[roadClass]; ok {
			return v
		}
	}
	if roadClass == RoadNational {
		return DefaultTollNational
	}
	return DefaultTollHighway
}

// EmptyFactor returns the empty-driving multiplier for fuel, toll, or
// driver cost.
func (s *RateSettings) EmptyFactor(kind string) decimal.Decimal {
	if v, ok := s.EmptyDrivingFactors[kind]; ok {
		return v
	}
	if v, ok := defaultEmptyFactors[kind]; ok {
		return v
	}
	return decimal.NewFromInt(1)
}

// CargoFactor returns the multiplier for one attribute of a cargo type.
// Unknown cargo types or attributes report ok=false; callers treat that
// as zero cargo-specific cost, not an error.
func (s *RateSettings) CargoFactor(cargoType, attribute string) (decimal.Decimal, bool) {
	attrs, ok := s.CargoFactors[cargoType]
	if !ok {
		return decimal.Zero, false
	}
	v, ok := attrs[attribute]
	return v, ok
}

// OverheadRate returns the overhead rate for distance, time, or fixed.
func (s *RateSettings) OverheadRate(kind string) decimal.Decimal {
	if v, ok := s.OverheadRates[kind]; ok {
		return v
	}
	return decimal.Zero
}

var (
	emptyFactorMax = decimal.NewFromInt(2)
	cargoFactorMax = decimal.NewFromInt(5)
)

// Validate checks the snapshot invariants: every rate non-negative,
// empty-driving factors in [0,2], cargo factors in [0,5]. The returned
// error names the offending field.
func (s *RateSettings) Validate() error {
	for country, v := range s.FuelPrices {
		if v.IsNegative() {
			return fmt.Errorf("%w: fuel_prices[%s] is negative", ErrValidation, country)
		}
	}
	for country, v := range s.DriverRates {
		if v.IsNegative() {
			return fmt.Errorf("%w: driver_rates[%s] is negative", ErrValidation, country)
		}
	}
	for country, rates := range s.TollRates {
		for class, v := range rates {
			if v.IsNegative() {
				return fmt.Errorf("%w: toll_rates[%s][%s] is negative", ErrValidation, country, class)
			}
		}
	}
	if s.MaintenanceRatePerKm.IsNegative() {
		return fmt.Errorf("%w: maintenance_rate_per_km is negative", ErrValidation)
	}
	if s.RestPeriodRate.IsNegative() {
		return fmt.Errorf("%w: rest_period_rate is negative", ErrValidation)
	}
	if s.LoadingUnloadingRate.IsNegative() {
		return fmt.Errorf("%w: loading_unloading_rate is negative", ErrValidation)
	}
	for kind, v := range s.EmptyDrivingFactors {
		if v.IsNegative() || v.GreaterThan(emptyFactorMax) {
			return fmt.Errorf("%w: empty_driving_factors[%s] outside [0,2]", ErrValidation, kind)
		}
	}
	for cargoType, attrs := range s.CargoFactors {
		for attr, v := range attrs {
			if v.IsNegative() || v.GreaterThan(cargoFactorMax) {
				return fmt.Errorf("%w: cargo_factors[%s][%s] outside [0,5]", ErrValidation, cargoType, attr)
			}
		}
	}
	for kind, v := range s.OverheadRates {
		if v.IsNegative() {
			return fmt.Errorf("%w: overhead_rates[%s] is negative", ErrValidation, kind)
		}
	}
	return nil
}
