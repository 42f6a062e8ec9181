package models

import "testing"

func TestParseSurchargeConfig(t *testing.T) {
	tests := []struct {
		name          string
		service, tax  bool
		customService string
		customTax     string
		want          Surcharges
	}{
		{
			name:    "defaults to auto",
			service: true, tax: true,
			want: Surcharges{Service: Auto(), Tax: Auto()},
		},
		{
			name:    "numeric override wins",
			service: true, tax: true,
			customService: "20000",
			want:          Surcharges{Service: Override(20000), Tax: Auto()},
		},
		{
			name:    "non-numeric override falls back to auto",
			service: true, tax: true,
			customService: "abc",
			customTax:     "-5",
			want:          Surcharges{Service: Auto(), Tax: Auto()},
		},
		{
			name:    "disabled ignores override",
			service: false, tax: true,
			customService: "20000",
			customTax:     "0",
			want:          Surcharges{Service: Disabled(), Tax: Override(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ParseSurchargeConfig(tt.service, tt.tax, tt.customService, tt.customTax)
			if got := cfg.Surcharges(); got != tt.want {
				t.Errorf("Surcharges() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDefaultSurcharge(t *testing.T) {
	got := DefaultSurcharge().Surcharges()
	if got.Service.Kind != SurchargeAuto || got.Tax.Kind != SurchargeAuto {
		t.Errorf("default surcharges = %+v, want both auto", got)
	}
}
