// Package catalog holds the in-memory product catalog: the filter/search
// engine, the menu-driven category scoping and the synced state container.
package catalog

import (
	"math"
	"sort"

	"github.com/camly/storefront/internal/domain"
	"github.com/camly/storefront/internal/pricing"
	"github.com/camly/storefront/internal/vntext"
	"golang.org/x/text/collate"
)

// Sort modes accepted by Filter.Sort. Anything else falls back to the
// default ordering.
const (
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortNameAsc   = "name-asc"
	SortNameDesc  = "name-desc"
	SortNewest    = "newest"
	SortPopular   = "popular"
)

// Filter is the full filter/sort specification for one catalog view.
// The zero value of each field means "no restriction"; active predicates
// are ANDed.
type Filter struct {
	// Price keeps a product when any of its resolvable prices falls inside
	// the window. Only applied when Price.Active is true.
	Price domain.PriceRange

	// Tags is a set of normalized tag slugs; a product passes when at least
	// one of its tags slugifies into the set.
	Tags map[string]bool

	// Sizes is a set of raw size entries as declared on products.
	Sizes map[string]bool

	// Levels is a set of level labels.
	Levels map[string]bool

	// Featured keeps only banner products.
	Featured bool

	// InStock drops products explicitly marked out of stock.
	InStock bool

	Sort string
}

// Apply filters and orders the product list. It is a pure function: the
// input slice is never mutated and identical inputs produce identical
// output membership and order. A nil filter still applies the default
// ordering.
func Apply(products []domain.Product, f *Filter) []domain.Product {
	out := make([]domain.Product, 0, len(products))

	if f == nil {
		out = append(out, products...)
		sortDefault(out)
		return out
	}

	for _, p := range products {
		if f.Price.Active && !anyPriceIn(p, f.Price) {
			continue
		}
		if len(f.Tags) > 0 && !anyTagIn(p, f.Tags) {
			continue
		}
		if len(f.Sizes) > 0 && !anySizeIn(p, f.Sizes) {
			continue
		}
		if len(f.Levels) > 0 && !f.Levels[p.Level] {
			continue
		}
		if f.Featured && !p.Banner {
			continue
		}
		if f.InStock && p.InStock != nil && !*p.InStock {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, f.Sort)
	return out
}

func anyPriceIn(p domain.Product, rng domain.PriceRange) bool {
	max := rng.Max
	if max <= 0 {
		max = math.MaxFloat64
	}
	for _, v := range pricing.Prices(p) {
		if v >= rng.Min && v <= max {
			return true
		}
	}
	return false
}

func anyTagIn(p domain.Product, slugs map[string]bool) bool {
	for _, t := range p.Tags {
		if slugs[vntext.Slugify(t)] {
			return true
		}
	}
	return false
}

func anySizeIn(p domain.Product, sizes map[string]bool) bool {
	for _, s := range p.Sizes {
		if sizes[s] {
			return true
		}
	}
	return false
}

func sortProducts(list []domain.Product, mode string) {
	switch mode {
	case SortPriceAsc:
		sort.SliceStable(list, func(i, j int) bool {
			return minOrInf(list[i]) < minOrInf(list[j])
		})
	case SortPriceDesc:
		// Missing prices sort last in both directions.
		sort.SliceStable(list, func(i, j int) bool {
			return minOrNegInf(list[i]) > minOrNegInf(list[j])
		})
	case SortNameAsc:
		col := vntext.NewCollator()
		sort.SliceStable(list, func(i, j int) bool {
			return col.CompareString(list[i].Name, list[j].Name) < 0
		})
	case SortNameDesc:
		col := vntext.NewCollator()
		sort.SliceStable(list, func(i, j int) bool {
			return col.CompareString(list[i].Name, list[j].Name) > 0
		})
	case SortNewest:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt > list[j].CreatedAt
		})
	case SortPopular:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Popular > list[j].Popular
		})
	default:
		sortDefault(list)
	}
}

// sortDefault orders by the explicit order field ascending with
// order-carrying products first, then by locale- and numeric-aware name.
func sortDefault(list []domain.Product) {
	col := vntext.NewCollator()
	sort.SliceStable(list, func(i, j int) bool {
		return defaultLess(list[i], list[j], col)
	})
}

func defaultLess(a, b domain.Product, col *collate.Collator) bool {
	switch {
	case a.Order != nil && b.Order != nil:
		if *a.Order != *b.Order {
			return *a.Order < *b.Order
		}
	case a.Order != nil:
		return true
	case b.Order != nil:
		return false
	}
	return col.CompareString(a.Name, b.Name) < 0
}

func minOrInf(p domain.Product) float64 {
	if v, ok := pricing.MinPrice(p); ok {
		return v
	}
	return math.Inf(1)
}

func minOrNegInf(p domain.Product) float64 {
	if v, ok := pricing.MinPrice(p); ok {
		return v
	}
	return math.Inf(-1)
}
