package billing

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/leadflowhq/leadflow/pkg/plan"
	"github.com/leadflowhq/leadflow/pkg/profile"
)

// PricePoint is what a processor price identifier resolves to: a paid plan
// tier plus the billing interval the price is sold on. Monthly and annual
// prices map to the same tier with different interval metadata.
type PricePoint struct {
	Tier     plan.Tier
	Interval profile.BillingInterval
}

// PriceMap maps opaque processor price identifiers to plan tiers.
type PriceMap map[string]PricePoint

// Resolve looks up a price identifier. The second return value is false for
// unknown prices; the reconciler treats those as a logged no-op.
func (m PriceMap) Resolve(priceID string) (PricePoint, bool) {
	point, ok := m[priceID]
	return point, ok
}

// validate rejects mappings to anything but the paid tiers.
func (m PriceMap) validate() error {
	for priceID, point := range m {
		if priceID == "" {
			return errors.Join(ErrInvalidPriceMap, errors.New("empty price identifier"))
		}
		if point.Tier != plan.TierStarter && point.Tier != plan.TierPro {
			return errors.Join(ErrInvalidPriceMap,
				fmt.Errorf("price %s maps to non-paid tier %s", priceID, point.Tier))
		}
	}
	return nil
}

// Config carries the four production price identifiers from the
// environment.
type Config struct {
	StarterMonthlyPriceID string `env:"BILLING_PRICE_STARTER_MONTHLY,required"`
	StarterAnnualPriceID  string `env:"BILLING_PRICE_STARTER_ANNUAL,required"`
	ProMonthlyPriceID     string `env:"BILLING_PRICE_PRO_MONTHLY,required"`
	ProAnnualPriceID      string `env:"BILLING_PRICE_PRO_ANNUAL,required"`
}

// NewPriceMap builds the PriceMap from environment configuration.
func NewPriceMap(cfg Config) (PriceMap, error) {
	m := PriceMap{
		cfg.StarterMonthlyPriceID: {Tier: plan.TierStarter, Interval: profile.BillingIntervalMonthly},
		cfg.StarterAnnualPriceID:  {Tier: plan.TierStarter, Interval: profile.BillingIntervalAnnual},
		cfg.ProMonthlyPriceID:     {Tier: plan.TierPro, Interval: profile.BillingIntervalMonthly},
		cfg.ProAnnualPriceID:      {Tier: plan.TierPro, Interval: profile.BillingIntervalAnnual},
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// priceMapFile is the YAML document shape for file-based price mappings.
type priceMapFile struct {
	Prices []struct {
		ID       string `yaml:"id"`
		Tier     string `yaml:"tier"`
		Interval string `yaml:"interval"`
	} `yaml:"prices"`
}

// ReadPriceMap parses a YAML price mapping:
//
//	prices:
//	  - id: price_starter_monthly
//	    tier: starter
//	    interval: monthly
func ReadPriceMap(r io.Reader) (PriceMap, error) {
	var file priceMapFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, errors.Join(ErrInvalidPriceMap, err)
	}

	m := make(PriceMap, len(file.Prices))
	for _, p := range file.Prices {
		m[p.ID] = PricePoint{
			Tier:     plan.Tier(p.Tier),
			Interval: profile.BillingInterval(p.Interval),
		}
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadPriceMap reads a YAML price mapping from disk.
func LoadPriceMap(path string) (PriceMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidPriceMap, err)
	}
	defer f.Close()
	return ReadPriceMap(f)
}
