// README: Cost calculation engine; pure decimal arithmetic over route segments.
package costing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"loadapp/internal/modules/settings"
	"loadapp/internal/types"
)

// Service turns route segments plus a rate settings snapshot into a
// cost breakdown. It holds no state and performs no I/O; callers pass
// a consistent snapshot per calculation.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Input is everything one calculation consumes.
type Input struct {
	RouteID      types.ID
	Segments     []CountrySegment
	Empty        *EmptyDriving // nil when no empty leg is costed
	Settings     *settings.RateSettings
	Cargo        *Cargo // nil when no cargo specification is supplied
	VehicleClass string // empty or unknown falls back to truck
}

// Calculate produces the itemized breakdown. Validation runs before any
// arithmetic: negative distances/durations and invalid settings are
// rejected, while unknown countries, cargo types, and vehicle classes
// resolve to documented defaults.
func (s *Service) Calculate(in Input) (*CostBreakdown, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	snap := in.Settings
	consumption := consumptionRate(in.VehicleClass)

	b := &CostBreakdown{
		ID:                types.NewID(),
		RouteID:           in.RouteID,
		FuelCosts:         map[string]decimal.Decimal{},
		TollCosts:         map[string]decimal.Decimal{},
		MaintenanceCosts:  map[string]decimal.Decimal{},
		DriverCosts:       map[string]decimal.Decimal{},
		EmptyDrivingCosts: map[string]map[string]decimal.Decimal{},
		CargoCosts:        map[string]decimal.Decimal{},
		OverheadCosts:     map[string]decimal.Decimal{},
		Currency:          DefaultCurrency,
		CreatedAt:         time.Now().UTC(),
	}

	totalDistance := decimal.Zero
	totalDuration := decimal.Zero

	for _, seg := range in.Segments {
		country := seg.CountryCode
		totalDistance = totalDistance.Add(seg.DistanceKm)
		totalDuration = totalDuration.Add(seg.DurationHours)

		fuel := snap.FuelPrice(country).Mul(consumption).Mul(seg.DistanceKm)
		b.FuelCosts[country] = b.FuelCosts[country].Add(fuel)

		toll := tollCost(snap, seg)
		b.TollCosts[country] = b.TollCosts[country].Add(toll)

		maintenance := snap.MaintenanceRatePerKm.Mul(seg.DistanceKm)
		b.MaintenanceCosts[country] = b.MaintenanceCosts[country].Add(maintenance)

		driver := snap.DriverRate(country).Mul(seg.DurationHours)
		b.DriverCosts[country] = b.DriverCosts[country].Add(driver)
	}

	if in.Empty != nil {
		fuelFactor := snap.EmptyFactor(settings.FactorFuel)
		tollFactor := snap.EmptyFactor(settings.FactorToll)
		driverFactor := snap.EmptyFactor(settings.FactorDriver)

		for _, seg := range in.Empty.Segments {
			country := seg.CountryCode
			components, ok := b.EmptyDrivingCosts[country]
			if !ok {
				components = map[string]decimal.Decimal{}
				b.EmptyDrivingCosts[country] = components
			}

			fuel := snap.FuelPrice(country).Mul(consumption).Mul(seg.DistanceKm).Mul(fuelFactor)
			components[ComponentFuel] = components[ComponentFuel].Add(fuel)

			toll := tollCost(snap, seg).Mul(tollFactor)
			components[ComponentToll] = components[ComponentToll].Add(toll)

			driver := snap.DriverRate(country).Mul(seg.DurationHours).Mul(driverFactor)
			components[ComponentDriver] = components[ComponentDriver].Add(driver)
		}
	}

	b.RestPeriodCost = restPeriodCost(snap, totalDuration)
	b.LoadingUnloadingCost = snap.LoadingUnloadingRate.Mul(loadingUnloadingHours)

	if in.Cargo != nil {
		b.CargoCosts = cargoCosts(snap, in.Cargo)
	}

	b.OverheadCosts[settings.OverheadDistance] = totalDistance.Mul(snap.OverheadRate(settings.OverheadDistance))
	b.OverheadCosts[settings.OverheadTime] = totalDuration.Mul(snap.OverheadRate(settings.OverheadTime))
	b.OverheadCosts[settings.OverheadFixed] = snap.OverheadRate(settings.OverheadFixed)

	b.SubtotalDistanceBased = sumValues(b.FuelCosts).Add(sumValues(b.TollCosts)).Add(sumValues(b.MaintenanceCosts))
	b.SubtotalTimeBased = sumValues(b.DriverCosts)
	b.SubtotalEmptyDriving = decimal.Zero
	for _, components := range b.EmptyDrivingCosts {
		b.SubtotalEmptyDriving = b.SubtotalEmptyDriving.Add(sumValues(components))
	}

	b.TotalCost = b.SubtotalDistanceBased.
		Add(b.SubtotalTimeBased).
		Add(b.SubtotalEmptyDriving).
		Add(b.RestPeriodCost).
		Add(b.LoadingUnloadingCost).
		Add(sumValues(b.CargoCosts)).
		Add(sumValues(b.OverheadCosts))

	return b, nil
}

func validateInput(in Input) error {
	if in.Settings == nil {
		return fmt.Errorf("%w: settings snapshot is required", ErrValidation)
	}
	if err := in.Settings.Validate(); err != nil {
		return err
	}
	if len(in.Segments) == 0 {
		return fmt.Errorf("%w: route has no segments", ErrValidation)
	}
	if err := validateSegments("segments", in.Segments); err != nil {
		return err
	}
	if in.Empty != nil {
		if in.Empty.DistanceKm.IsNegative() {
			return fmt.Errorf("%w: empty_driving.distance_km is negative", ErrValidation)
		}
		if in.Empty.DurationHours.IsNegative() {
			return fmt.Errorf("%w: empty_driving.duration_hours is negative", ErrValidation)
		}
		if err := validateSegments("empty_driving.segments", in.Empty.Segments); err != nil {
			return err
		}
	}
	if in.Cargo != nil && in.Cargo.WeightKg.IsNegative() {
		return fmt.Errorf("%w: cargo.weight_kg is negative", ErrValidation)
	}
	return nil
}

func validateSegments(field string, segs []CountrySegment) error {
	for i, seg := range segs {
		if len(seg.CountryCode) != 2 {
			return fmt.Errorf("%w: %s[%d].country_code %q is not a 2-letter code", ErrValidation, field, i, seg.CountryCode)
		}
		if seg.DistanceKm.IsNegative() {
			return fmt.Errorf("%w: %s[%d].distance_km is negative", ErrValidation, field, i)
		}
		if seg.DurationHours.IsNegative() {
			return fmt.Errorf("%w: %s[%d].duration_hours is negative", ErrValidation, field, i)
		}
	}
	return nil
}

func consumptionRate(vehicleClass string) decimal.Decimal {
	if rate, ok := consumptionRates[vehicleClass]; ok {
		return rate
	}
	return consumptionRates[VehicleTruck]
}

// tollCost prices a segment's distance as 70% highway / 30% national.
// A per-segment override table wins over the snapshot's country table.
func tollCost(snap *settings.RateSettings, seg CountrySegment) decimal.Decimal {
	highway := snap.TollRate(seg.CountryCode, settings.RoadHighway)
	national := snap.TollRate(seg.CountryCode, settings.RoadNational)
	if seg.TollRates != nil {
		if v, ok := seg.TollRates[settings.RoadHighway]; ok {
			highway = v
		}
		if v, ok := seg.TollRates[settings.RoadNational]; ok {
			national = v
		}
	}
	return highway.Mul(seg.DistanceKm).Mul(tollHighwayShare).
		Add(national.Mul(seg.DistanceKm).Mul(tollNationalShare))
}

func restPeriodCost(snap *settings.RateSettings, totalDuration decimal.Decimal) decimal.Decimal {
	shortBreaks := totalDuration.Div(shortBreakInterval).Floor()
	longBreaks := totalDuration.Div(longBreakInterval).Floor()
	hours := shortBreaks.Mul(shortBreakHours).Add(longBreaks.Mul(longBreakHours))
	return hours.Mul(snap.RestPeriodRate)
}

// cargoCosts applies the cargo type's declared multipliers. An unknown
// cargo type yields no cargo-specific cost at all.
func cargoCosts(snap *settings.RateSettings, cargo *Cargo) map[string]decimal.Decimal {
	costs := map[string]decimal.Decimal{}

	if factor, ok := snap.CargoFactor(cargo.Type, "weight"); ok {
		costs["weight"] = cargo.WeightKg.Mul(factor)
	} else {
		return costs
	}

	for key, magnitude := range cargo.Requirements {
		if factor, ok := snap.CargoFactor(cargo.Type, key); ok {
			costs[key] = magnitude.Mul(factor)
		}
	}

	if cargo.Hazardous {
		costs["hazmat"] = HazmatSurcharge
	}
	return costs
}
