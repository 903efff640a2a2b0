package settings

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory SettingsStore for service tests.
type memStore struct {
	versions []*RateSettings
}

func (m *memStore) Current(ctx context.Context) (*RateSettings, error) {
	if len(m.versions) == 0 {
		return nil, ErrNotFound
	}
	return m.versions[len(m.versions)-1], nil
}

func (m *memStore) Save(ctx context.Context, s *RateSettings) error {
	copied := *s
	m.versions = append(m.versions, &copied)
	return nil
}

func (m *memStore) ByVersion(ctx context.Context, version int) (*RateSettings, error) {
	for _, s := range m.versions {
		if s.Version == version {
			return s, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) History(ctx context.Context) ([]ChangeRecord, error) {
	records := make([]ChangeRecord, 0, len(m.versions))
	for i := len(m.versions) - 1; i >= 0; i-- {
		s := m.versions[i]
		records = append(records, ChangeRecord{
			ID:           s.ID,
			Version:      s.Version,
			ChangeReason: s.ChangeReason,
			CreatedBy:    s.CreatedBy,
			CreatedAt:    s.CreatedAt,
		})
	}
	return records, nil
}

func TestCurrentFallsBackToDefaults(t *testing.T) {
	svc := NewService(&memStore{})

	current, err := svc.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.Version != 1 {
		t.Errorf("default version = %d, want 1", current.Version)
	}
	if current.Name != "default" {
		t.Errorf("default name = %q, want %q", current.Name, "default")
	}
	if err := current.Validate(); err != nil {
		t.Errorf("built-in defaults fail validation: %v", err)
	}
}

func TestUpdateVersionsAndPreservesHistory(t *testing.T) {
	store := &memStore{}
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.Update(ctx, UpdateCommand{Settings: Defaults(), Reason: "adopt defaults", Actor: "ops"})
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	if first.Version != 2 {
		t.Errorf("first saved version = %d, want 2 (defaults are v1)", first.Version)
	}

	changed := Defaults()
	changed.FuelPrices["DE"] = decimal.NewFromFloat(2.05)
	second, err := svc.Update(ctx, UpdateCommand{Settings: changed, Reason: "fuel price spike", Actor: "ops"})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if second.Version != first.Version+1 {
		t.Errorf("second version = %d, want %d", second.Version, first.Version+1)
	}

	// The older version stays retrievable and unchanged.
	old, err := svc.ByVersion(ctx, first.Version)
	if err != nil {
		t.Fatalf("by version: %v", err)
	}
	if !old.FuelPrices["DE"].Equal(decimal.NewFromFloat(1.80)) {
		t.Errorf("old version DE fuel price mutated: %s", old.FuelPrices["DE"])
	}

	history, err := svc.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].ChangeReason != "fuel price spike" {
		t.Errorf("newest history reason = %q", history[0].ChangeReason)
	}
}

func TestUpdateRequiresReason(t *testing.T) {
	svc := NewService(&memStore{})
	_, err := svc.Update(context.Background(), UpdateCommand{Settings: Defaults()})
	if !errors.Is(err, ErrReasonRequired) {
		t.Errorf("err = %v, want ErrReasonRequired", err)
	}
}

func TestValidateNamesOffendingField(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RateSettings)
		field  string
	}{
		{
			name:   "negative fuel price",
			mutate: func(s *RateSettings) { s.FuelPrices["DE"] = decimal.NewFromFloat(-1) },
			field:  "fuel_prices[DE]",
		},
		{
			name:   "negative driver rate",
			mutate: func(s *RateSettings) { s.DriverRates["PL"] = decimal.NewFromFloat(-0.5) },
			field:  "driver_rates[PL]",
		},
		{
			name:   "negative toll rate",
			mutate: func(s *RateSettings) { s.TollRates["FR"][RoadHighway] = decimal.NewFromFloat(-0.2) },
			field:  "toll_rates[FR][highway]",
		},
		{
			name:   "empty factor above 2",
			mutate: func(s *RateSettings) { s.EmptyDrivingFactors[FactorFuel] = decimal.NewFromFloat(2.5) },
			field:  "empty_driving_factors[fuel]",
		},
		{
			name:   "cargo factor above 5",
			mutate: func(s *RateSettings) { s.CargoFactors["hazardous"]["risk"] = decimal.NewFromFloat(5.1) },
			field:  "cargo_factors[hazardous][risk]",
		},
		{
			name:   "negative overhead",
			mutate: func(s *RateSettings) { s.OverheadRates[OverheadFixed] = decimal.NewFromFloat(-10) },
			field:  "overhead_rates[fixed]",
		},
		{
			name:   "negative maintenance",
			mutate: func(s *RateSettings) { s.MaintenanceRatePerKm = decimal.NewFromFloat(-0.01) },
			field:  "maintenance_rate_per_km",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Defaults()
			tc.mutate(s)
			err := s.Validate()
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("error %q does not name field %q", err, tc.field)
			}
		})
	}
}

func TestLookupsFallBackForUnknownCountry(t *testing.T) {
	s := Defaults()

	if got := s.FuelPrice("XX"); !got.Equal(DefaultFuelPrice) {
		t.Errorf("FuelPrice(XX) = %s, want %s", got, DefaultFuelPrice)
	}
	if got := s.DriverRate("XX"); !got.Equal(DefaultDriverRate) {
		t.Errorf("DriverRate(XX) = %s, want %s", got, DefaultDriverRate)
	}
	if got := s.TollRate("XX", RoadHighway); !got.Equal(DefaultTollHighway) {
		t.Errorf("TollRate(XX, highway) = %s, want %s", got, DefaultTollHighway)
	}
	if got := s.TollRate("XX", RoadNational); !got.Equal(DefaultTollNational) {
		t.Errorf("TollRate(XX, national) = %s, want %s", got, DefaultTollNational)
	}
	if _, ok := s.CargoFactor("livestock", "weight"); ok {
		t.Error("CargoFactor for unknown cargo type reported ok")
	}

	// Snapshot with no factor maps at all still resolves the documented defaults.
	bare := &RateSettings{}
	if got := bare.EmptyFactor(FactorFuel); !got.Equal(decimal.NewFromFloat(0.8)) {
		t.Errorf("EmptyFactor(fuel) = %s, want 0.8", got)
	}
	if got := bare.EmptyFactor(FactorToll); !got.Equal(decimal.NewFromFloat(1.0)) {
		t.Errorf("EmptyFactor(toll) = %s, want 1.0", got)
	}
	if got := bare.OverheadRate(OverheadDistance); !got.IsZero() {
		t.Errorf("OverheadRate on bare snapshot = %s, want 0", got)
	}
}
