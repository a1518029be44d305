package catalog

import (
	"net/url"

	"github.com/gorilla/schema"
)

// SortKey selects the ordering of a catalog view
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

// PriceBracket is one of the fixed storefront price ranges (IDR)
type PriceBracket string

const (
	BracketAll       PriceBracket = "All"
	BracketUnder200K PriceBracket = "Under 200k"
	Bracket200To500K PriceBracket = "200k - 500k"
	Bracket500KTo1M  PriceBracket = "500k - 1M"
	BracketAbove1M   PriceBracket = "Above 1M"
)

// AllSentinel is the category/bracket value that matches everything
const AllSentinel = "All"

// PriceBrackets lists the selectable brackets in display order
var PriceBrackets = []PriceBracket{
	BracketAll,
	BracketUnder200K,
	Bracket200To500K,
	Bracket500KTo1M,
	BracketAbove1M,
}

// Categories lists the selectable storefront categories in display order
var Categories = []string{
	"All",
	"Electronics",
	"Fashion",
	"Home & Living",
	"Beauty",
	"Sports",
	"Toys",
	"Automotive",
}

// ViewParams configures one computed catalog view. It is round-tripped
// through the listing page's query string and never persisted.
type ViewParams struct {
	Query    string       `schema:"q"`
	Category string       `schema:"category"`
	Price    PriceBracket `schema:"price"`
	Sort     SortKey      `schema:"sort"`
}

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// DecodeViewParams reads view parameters from a listing page query string.
// Unknown keys are ignored; missing or invalid values fall back to the
// sentinels so a malformed URL still yields a usable view.
func DecodeViewParams(values url.Values) ViewParams {
	var p ViewParams
	// decode errors only occur for unconvertible values; the zero value
	// is already the right fallback
	_ = queryDecoder.Decode(&p, values)
	return p.normalized()
}

func (p ViewParams) normalized() ViewParams {
	if p.Category == "" {
		p.Category = AllSentinel
	}
	if p.Price == "" {
		p.Price = BracketAll
	}
	switch p.Price {
	case BracketAll, BracketUnder200K, Bracket200To500K, Bracket500KTo1M, BracketAbove1M:
	default:
		p.Price = BracketAll
	}
	switch p.Sort {
	case SortFeatured, SortPriceLow, SortPriceHigh, SortRating, SortNewest:
	default:
		p.Sort = SortFeatured
	}
	return p
}

// Values renders the parameters back into a query string, dropping
// sentinel values so shared URLs stay short.
func (p ViewParams) Values() url.Values {
	v := url.Values{}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if p.Category != "" && p.Category != AllSentinel {
		v.Set("category", p.Category)
	}
	if p.Price != "" && p.Price != BracketAll {
		v.Set("price", string(p.Price))
	}
	if p.Sort != "" && p.Sort != SortFeatured {
		v.Set("sort", string(p.Sort))
	}
	return v
}

// matches reports whether a price falls inside the bracket's half-open
// interval. hasPrice=false only matches the All bracket.
func (b PriceBracket) matches(price float64, hasPrice bool) bool {
	switch b {
	case BracketAll, "":
		return true
	case BracketUnder200K:
		return hasPrice && price < 200_000
	case Bracket200To500K:
		return hasPrice && price >= 200_000 && price < 500_000
	case Bracket500KTo1M:
		return hasPrice && price >= 500_000 && price < 1_000_000
	case BracketAbove1M:
		return hasPrice && price >= 1_000_000
	default:
		return false
	}
}
