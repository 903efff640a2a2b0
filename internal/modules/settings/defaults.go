// README: Factory for the default rate settings snapshot.
package settings

import (
	"time"

	"github.com/shopspring/decimal"

	"loadapp/internal/types"
)

func d(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// Defaults returns the built-in version-1 snapshot used until an
// operator saves the first custom one. Rates cover the central-European
// corridor the product launched with; any other country falls back to
// the documented defaults in model.go.
func Defaults() *RateSettings {
	return &RateSettings{
		ID:      types.NewID(),
		Version: 1,
		Name:    "default",
		FuelPrices: map[string]decimal.Decimal{
			"DE": d(1.80), "PL": d(1.55), "FR": d(1.85),
			"NL": d(1.95), "BE": d(1.75), "AT": d(1.70),
			"CZ": d(1.60), "CH": d(1.90),
		},
		DriverRates: map[string]decimal.Decimal{
			"DE": d(28.0), "PL": d(18.0), "FR": d(27.0),
			"NL": d(29.0), "BE": d(26.0), "AT": d(26.5),
			"CZ": d(19.0), "CH": d(35.0),
		},
		TollRates: map[string]map[string]decimal.Decimal{
			"DE": {RoadHighway: d(0.187), RoadNational: d(0.12)},
			"PL": {RoadHighway: d(0.095), RoadNational: d(0.06)},
			"FR": {RoadHighway: d(0.21), RoadNational: d(0.13)},
			"NL": {RoadHighway: d(0.17), RoadNational: d(0.11)},
			"BE": {RoadHighway: d(0.16), RoadNational: d(0.10)},
			"AT": {RoadHighway: d(0.22), RoadNational: d(0.14)},
			"CZ": {RoadHighway: d(0.11), RoadNational: d(0.07)},
			"CH": {RoadHighway: d(0.24), RoadNational: d(0.15)},
		},
		MaintenanceRatePerKm: d(0.15),
		RestPeriodRate:       d(20.0),
		LoadingUnloadingRate: d(40.0),
		EmptyDrivingFactors: map[string]decimal.Decimal{
			FactorFuel:   d(0.8),
			FactorToll:   d(1.0),
			FactorDriver: d(1.0),
		},
		CargoFactors: map[string]map[string]decimal.Decimal{
			"general": {
				"weight": d(0.001),
			},
			"perishable": {
				"weight":      d(0.0015),
				"temperature": d(1.2),
			},
			"hazardous": {
				"weight": d(0.002),
				"risk":   d(1.5),
			},
			"fragile": {
				"weight": d(0.0012),
				"volume": d(1.1),
			},
		},
		OverheadRates: map[string]decimal.Decimal{
			OverheadDistance: d(0.05),
			OverheadTime:     d(5.0),
			OverheadFixed:    d(25.0),
		},
		ChangeReason: "Initial defaults",
		CreatedBy:    "system",
		CreatedAt:    time.Now().UTC(),
	}
}
