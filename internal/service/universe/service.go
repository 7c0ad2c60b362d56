package universe

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/wonny/marketlens/internal/domain/market"
)

//go:embed universes.yaml
var defaultUniverse []byte

type fileFormat struct {
	Markets []market.Market `yaml:"markets"`
}

// Catalog is the static market → ticker membership table.
// Screens stay index-agnostic; handlers resolve tickers here and pass them in.
type Catalog struct {
	markets map[market.Slug]market.Market
}

// Load reads the universe file at path, or the embedded default when path is empty
func Load(path string) (*Catalog, error) {
	data := defaultUniverse
	source := "embedded"
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read universe file: %w", err)
		}
		data = b
		source = path
	}

	catalog, err := Parse(data)
	if err != nil {
		return nil, err
	}

	for _, slug := range market.Slugs {
		log.Debug().
			Str("source", source).
			Str("market", string(slug)).
			Int("tickers", len(catalog.markets[slug].Tickers)).
			Msg("Universe loaded")
	}
	return catalog, nil
}

// Parse decodes and validates a universe document
func Parse(data []byte) (*Catalog, error) {
	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse universe: %w", err)
	}

	catalog := &Catalog{markets: make(map[market.Slug]market.Market, len(doc.Markets))}
	for _, m := range doc.Markets {
		if !m.Slug.IsValid() {
			return nil, fmt.Errorf("%w: %s", market.ErrUnknownMarket, m.Slug)
		}
		if _, err := m.Location(); err != nil {
			return nil, err
		}
		m.Tickers = market.NormalizeTickers(m.Tickers)
		catalog.markets[m.Slug] = m
	}

	for _, slug := range market.Slugs {
		if _, ok := catalog.markets[slug]; !ok {
			return nil, fmt.Errorf("universe is missing market %s", slug)
		}
	}
	return catalog, nil
}

// Get returns the market for slug
func (c *Catalog) Get(slug string) (market.Market, error) {
	s, err := market.ParseSlug(slug)
	if err != nil {
		return market.Market{}, err
	}
	return c.markets[s], nil
}

// List returns all markets in display order, without membership
func (c *Catalog) List() []market.Market {
	out := make([]market.Market, 0, len(market.Slugs))
	for _, slug := range market.Slugs {
		m := c.markets[slug]
		m.Tickers = nil
		out = append(out, m)
	}
	return out
}

// Tickers returns a copy of the membership for slug
func (c *Catalog) Tickers(slug string) ([]string, error) {
	m, err := c.Get(slug)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), m.Tickers...), nil
}
