package memory

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/simaogato/valuation-service/internal/domain"
)

// Fixture is the YAML layout of a store snapshot
// Decimal values are written as strings to keep them exact
type Fixture struct {
	Accounts []struct {
		AccountID string `yaml:"account_id"`
		Positions []struct {
			AssetID  string `yaml:"asset_id"`
			Quantity int64  `yaml:"quantity"`
		} `yaml:"positions"`
	} `yaml:"accounts"`
	Eligibility []struct {
		Eligible   bool     `yaml:"eligible"`
		AssetIDs   []string `yaml:"asset_ids"`
		AccountIDs []string `yaml:"account_ids"`
		Discount   string   `yaml:"discount"`
	} `yaml:"eligibility"`
	Prices []struct {
		AssetID  string `yaml:"asset_id"`
		Price    string `yaml:"price"`
		Currency string `yaml:"currency"`
	} `yaml:"prices"`
	FXRates []struct {
		Currency   string `yaml:"currency"`
		Multiplier string `yaml:"multiplier"`
	} `yaml:"fx_rates"`
}

// Store keeps positions, eligibility rules, prices and FX rates in memory
// It implements every collaborator interface of the valuation service.
type Store struct {
	mu          sync.RWMutex
	positions   []domain.AccountPosition
	eligibility []domain.Eligibility
	prices      []domain.Price
	rates       []domain.FXRate
}

// NewStore creates a store holding the given data
func NewStore(
	positions []domain.AccountPosition,
	eligibility []domain.Eligibility,
	prices []domain.Price,
	rates []domain.FXRate,
) *Store {
	return &Store{
		positions:   positions,
		eligibility: eligibility,
		prices:      prices,
		rates:       rates,
	}
}

// LoadFixture reads a YAML fixture file into a new store
func LoadFixture(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture file: %w", err)
	}

	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parse fixture yaml: %w", err)
	}

	return fixture.Store()
}

// Store converts the fixture into a Store, parsing every decimal
func (f *Fixture) Store() (*Store, error) {
	positions := make([]domain.AccountPosition, 0, len(f.Accounts))
	for _, account := range f.Accounts {
		ap := domain.AccountPosition{AccountID: account.AccountID}
		for _, p := range account.Positions {
			ap.Positions = append(ap.Positions, domain.Position{AssetID: p.AssetID, Quantity: p.Quantity})
		}
		positions = append(positions, ap)
	}

	eligibility := make([]domain.Eligibility, 0, len(f.Eligibility))
	for i, rule := range f.Eligibility {
		discount, err := parseDecimal(rule.Discount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse discount of eligibility rule %d: %w", i, err)
		}
		eligibility = append(eligibility, domain.Eligibility{
			Eligible:   rule.Eligible,
			AssetIDs:   rule.AssetIDs,
			AccountIDs: rule.AccountIDs,
			Discount:   discount,
		})
	}

	prices := make([]domain.Price, 0, len(f.Prices))
	for _, p := range f.Prices {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price of asset %s: %w", p.AssetID, err)
		}
		prices = append(prices, domain.Price{AssetID: p.AssetID, Price: price, Currency: p.Currency})
	}

	rates := make([]domain.FXRate, 0, len(f.FXRates))
	for _, r := range f.FXRates {
		multiplier, err := decimal.NewFromString(r.Multiplier)
		if err != nil {
			return nil, fmt.Errorf("failed to parse multiplier of currency %s: %w", r.Currency, err)
		}
		rates = append(rates, domain.FXRate{Currency: r.Currency, Multiplier: multiplier})
	}

	return NewStore(positions, eligibility, prices, rates), nil
}

// parseDecimal treats an empty value as zero
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// GetPositions returns the accounts that hold positions, in request order
func (s *Store) GetPositions(ctx context.Context, accountIDs []string) ([]domain.AccountPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AccountPosition, 0)
	seen := make(map[string]bool)
	for _, accountID := range accountIDs {
		if seen[accountID] {
			continue
		}
		seen[accountID] = true

		for _, ap := range s.positions {
			if ap.AccountID == accountID && len(ap.Positions) > 0 {
				result = append(result, domain.AccountPosition{
					AccountID: ap.AccountID,
					Positions: slices.Clone(ap.Positions),
				})
				break
			}
		}
	}

	return result, nil
}

// GetEligibility returns, in stored order, the rules touching any requested account and asset
func (s *Store) GetEligibility(ctx context.Context, accountIDs, assetIDs []string) ([]domain.Eligibility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Eligibility, 0)
	for _, rule := range s.eligibility {
		if overlaps(rule.AccountIDs, accountIDs) && overlaps(rule.AssetIDs, assetIDs) {
			result = append(result, rule)
		}
	}

	return result, nil
}

// GetPrices returns the stored prices of the requested assets
func (s *Store) GetPrices(ctx context.Context, assetIDs []string) ([]domain.Price, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Price, 0)
	for _, price := range s.prices {
		if slices.Contains(assetIDs, price.AssetID) {
			result = append(result, price)
		}
	}

	return result, nil
}

// GetFXRates returns every stored FX rate
func (s *Store) GetFXRates(ctx context.Context) ([]domain.FXRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.rates), nil
}

// Upsert creates the rate or replaces the multiplier of an existing currency
func (s *Store) Upsert(ctx context.Context, rate *domain.FXRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rates {
		if s.rates[i].Currency == rate.Currency {
			s.rates[i].Multiplier = rate.Multiplier
			return nil
		}
	}
	s.rates = append(s.rates, *rate)

	return nil
}

func overlaps(a, b []string) bool {
	for _, v := range a {
		if slices.Contains(b, v) {
			return true
		}
	}
	return false
}
