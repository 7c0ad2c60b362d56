package market

import (
	"fmt"
	"time"
)

// Slug identifies an index basket
type Slug string

const (
	SlugNasdaq100 Slug = "nasdaq100"
	SlugSnP500    Slug = "snp500"
	SlugKospi50   Slug = "kospi50"
	SlugKosdaq150 Slug = "kosdaq150"
)

// Slugs lists supported baskets in display order
var Slugs = []Slug{SlugNasdaq100, SlugSnP500, SlugKospi50, SlugKosdaq150}

// IsValid checks if slug is a supported basket
func (s Slug) IsValid() bool {
	for _, v := range Slugs {
		if v == s {
			return true
		}
	}
	return false
}

// ParseSlug validates a market slug
func ParseSlug(s string) (Slug, error) {
	slug := Slug(s)
	if !slug.IsValid() {
		return "", fmt.Errorf("%w: %s", ErrUnknownMarket, s)
	}
	return slug, nil
}

// SortSpec is the grid's initial ordering
type SortSpec struct {
	Key string `json:"key" yaml:"key"`
	Dir string `json:"dir" yaml:"dir"` // asc, desc
}

// Market is static configuration for one basket. Currency is a display label only.
type Market struct {
	Slug        Slug     `json:"slug" yaml:"slug"`
	Label       string   `json:"label" yaml:"label"`
	Locale      string   `json:"locale" yaml:"locale"`
	Currency    string   `json:"currency" yaml:"currency"` // USD, KRW
	Timezone    string   `json:"timezone" yaml:"timezone"`
	DefaultSort SortSpec `json:"defaultSort" yaml:"default_sort"`
	Tickers     []string `json:"tickers,omitempty" yaml:"tickers"`
}

// Location resolves the market timezone
func (m Market) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q for %s: %w", m.Timezone, m.Slug, err)
	}
	return loc, nil
}
