// Package catalog computes derived storefront views over in-memory
// catalog pages: free-text search, category and price-bracket filtering,
// and stable sorting. Everything here is pure; ComputeView is safe to
// call on every render of a listing page.
package catalog

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"lookbook-service/internal/models"
)

// PlatformLink is the storefront projection of one platform listing
type PlatformLink struct {
	Platform models.Platform `json:"platform"`
	Link     *string         `json:"link"`
	Price    *float64        `json:"price,omitempty"`
}

// Entry is a storefront catalog item normalized for viewing: string
// prices parsed, absent categories bucketed, placeholder rating applied.
type Entry struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Price         float64        `json:"price"`
	HasPrice      bool           `json:"-"`
	Category      string         `json:"category"`
	Tags          []string       `json:"tags"`
	Image         string         `json:"image"`
	AffiliateLink *string        `json:"affiliateLink"`
	Clicks        int            `json:"clicks"`
	LastUpdated   string         `json:"lastUpdated"`
	Featured      bool           `json:"featured"`
	Rating        float64        `json:"rating"`
	ReviewCount   int            `json:"reviewCount"`
	Platforms     []PlatformLink `json:"platforms"`
}

// FromProduct normalizes a backend product into a storefront entry.
// Unparseable prices become 0 with HasPrice=false so they are excluded
// from bracket matches but still sort as cheapest.
func FromProduct(p models.Product) Entry {
	price, ok := p.NumericPrice()

	platforms := make([]PlatformLink, 0, len(p.Platforms))
	for _, pl := range p.Platforms {
		link := PlatformLink{Platform: pl.Platform, Link: pl.Link}
		if pl.Price != nil {
			if v, err := parsePrice(*pl.Price); err == nil {
				link.Price = &v
			}
		}
		platforms = append(platforms, link)
	}

	lastUpdated := p.LastUpdated
	if lastUpdated == "" {
		lastUpdated = p.UpdatedAt
	}
	if lastUpdated == "" {
		lastUpdated = p.CreatedAt
	}

	return Entry{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         price,
		HasPrice:      ok,
		Category:      p.DisplayCategory(),
		Tags:          append([]string(nil), p.Tags...),
		Image:         p.Image,
		AffiliateLink: p.AffiliateLink,
		Clicks:        p.Clicks,
		LastUpdated:   lastUpdated,
		Featured:      true,
		Rating:        4.5,
		ReviewCount:   0,
		Platforms:     platforms,
	}
}

// FromProducts normalizes a backend product page
func FromProducts(products []models.Product) []Entry {
	entries := make([]Entry, 0, len(products))
	for _, p := range products {
		entries = append(entries, FromProduct(p))
	}
	return entries
}

// ComputeView filters and sorts a catalog page according to the view
// parameters. Pure and deterministic: the input slice is not modified,
// re-applying the same parameters to the result is a no-op, and
// malformed input degrades to exclusion instead of an error.
func ComputeView(entries []Entry, params ViewParams) []Entry {
	params = params.normalized()
	term := strings.ToLower(strings.TrimSpace(params.Query))

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if term != "" && !matchesSearch(e, term) {
			continue
		}
		if params.Category != AllSentinel && e.Category != params.Category {
			continue
		}
		if !params.Price.matches(e.Price, e.HasPrice) {
			continue
		}
		out = append(out, e)
	}

	sortEntries(out, params.Sort)
	return out
}

// matchesSearch checks a lowercased term against name, description and tags
func matchesSearch(e Entry, term string) bool {
	if strings.Contains(strings.ToLower(e.Name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Description), term) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func sortEntries(entries []Entry, key SortKey) {
	switch key {
	case SortFeatured:
		// partition by flag, not a strict comparator: ties keep the
		// order filtering produced
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Featured && !entries[j].Featured
		})
	case SortPriceLow:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Price < entries[j].Price
		})
	case SortPriceHigh:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Price > entries[j].Price
		})
	case SortRating:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Rating > entries[j].Rating
		})
	case SortNewest:
		sort.SliceStable(entries, func(i, j int) bool {
			return parseWhen(entries[i].LastUpdated).After(parseWhen(entries[j].LastUpdated))
		})
	}
}

// parseWhen parses an RFC3339 timestamp; the zero time for anything
// unparseable, which sorts last under newest-first.
func parseWhen(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parsePrice(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || r == ' ' {
			return -1
		}
		return r
	}, s)
	return strconv.ParseFloat(cleaned, 64)
}
