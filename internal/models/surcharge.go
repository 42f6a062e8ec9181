package models

import "github.com/mmynk/patungan/internal/money"

// SurchargeKind tags how a surcharge amount is obtained.
type SurchargeKind int

const (
	// SurchargeDisabled contributes nothing.
	SurchargeDisabled SurchargeKind = iota
	// SurchargeAuto applies the percentage rate.
	SurchargeAuto
	// SurchargeOverride replaces the percentage with an absolute amount.
	SurchargeOverride
)

func (k SurchargeKind) String() string {
	switch k {
	case SurchargeDisabled:
		return "disabled"
	case SurchargeAuto:
		return "auto"
	case SurchargeOverride:
		return "override"
	default:
		return "unknown"
	}
}

// Surcharge is the clean tagged value the calculator consumes.
// Amount is only meaningful for SurchargeOverride.
type Surcharge struct {
	Kind   SurchargeKind
	Amount float64
}

// Disabled returns a surcharge that contributes nothing.
func Disabled() Surcharge { return Surcharge{Kind: SurchargeDisabled} }

// Auto returns a surcharge computed from the percentage rate.
func Auto() Surcharge { return Surcharge{Kind: SurchargeAuto} }

// Override returns a surcharge fixed to an absolute amount.
func Override(amount float64) Surcharge {
	return Surcharge{Kind: SurchargeOverride, Amount: amount}
}

// Surcharges pairs the service charge and tax of a bill.
type Surcharges struct {
	Service Surcharge
	Tax     Surcharge
}

// SurchargeConfig is the persisted surcharge configuration of a bill.
type SurchargeConfig struct {
	ServiceEnabled bool `json:"serviceEnabled"`
	TaxEnabled     bool `json:"taxEnabled"`

	// ServiceOverride and TaxOverride are absolute amounts. Nil means the
	// percentage rate applies.
	ServiceOverride *float64 `json:"serviceOverride,omitempty"`
	TaxOverride     *float64 `json:"taxOverride,omitempty"`
}

// DefaultSurcharge returns the configuration a new bill starts with:
// both surcharges enabled, no overrides.
func DefaultSurcharge() SurchargeConfig {
	return SurchargeConfig{ServiceEnabled: true, TaxEnabled: true}
}

// ParseSurchargeConfig builds a configuration from raw user input.
// Override strings that are empty or not a non-negative number are ignored.
func ParseSurchargeConfig(serviceEnabled, taxEnabled bool, customService, customTax string) SurchargeConfig {
	cfg := SurchargeConfig{ServiceEnabled: serviceEnabled, TaxEnabled: taxEnabled}
	if v, ok := money.ParseOverride(customService); ok {
		cfg.ServiceOverride = &v
	}
	if v, ok := money.ParseOverride(customTax); ok {
		cfg.TaxOverride = &v
	}
	return cfg
}

// Surcharges resolves the configuration into tagged values.
func (c SurchargeConfig) Surcharges() Surcharges {
	return Surcharges{
		Service: resolve(c.ServiceEnabled, c.ServiceOverride),
		Tax:     resolve(c.TaxEnabled, c.TaxOverride),
	}
}

func resolve(enabled bool, override *float64) Surcharge {
	switch {
	case !enabled:
		return Disabled()
	case override != nil && *override >= 0:
		return Override(*override)
	default:
		return Auto()
	}
}

// DistributionMode selects how an itemized bill shares its surcharges.
type DistributionMode int

const (
	// Proportional allocates surcharges by each participant's share of the subtotal.
	Proportional DistributionMode = iota
	// EqualPerHead allocates the same absolute surcharge to every participant.
	EqualPerHead
)

func (m DistributionMode) String() string {
	if m == EqualPerHead {
		return "equal_per_head"
	}
	return "proportional"
}
