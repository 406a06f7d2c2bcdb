// Package storefront holds the public catalog HTTP handlers.
package storefront

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/camly/storefront/internal/catalog"
	"github.com/camly/storefront/internal/domain"
)

// Query parameter names. These are also the SPA's URL state, so deep links
// shared from the storefront decode with the same keys.
const (
	paramCategory = "cat"
	paramQuery    = "q"
	paramPrice    = "price"
	paramTags     = "tags"
	paramSizes    = "sizes"
	paramLevels   = "lvls"
	paramFeatured = "feat"
	paramInStock  = "stock"
	paramSort     = "sort"
)

// decodeFilter reads the filter state from query parameters. Unparseable
// values degrade to "no restriction" rather than erroring; a shared link
// with a mangled price still shows products.
func decodeFilter(q url.Values) *catalog.Filter {
	f := &catalog.Filter{
		Tags:     decodeSet(q.Get(paramTags)),
		Sizes:    decodeSet(q.Get(paramSizes)),
		Levels:   decodeSet(q.Get(paramLevels)),
		Featured: q.Get(paramFeatured) == "1",
		InStock:  q.Get(paramInStock) == "1",
		Sort:     q.Get(paramSort),
	}
	f.Price = decodePriceRange(q.Get(paramPrice))
	return f
}

// decodePriceRange reads "min-max" in VND; either bound may be empty, as in
// "100000-" for everything at or above 100k.
func decodePriceRange(s string) domain.PriceRange {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.PriceRange{}
	}
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return domain.PriceRange{}
	}
	rng := domain.PriceRange{}
	if lo = strings.TrimSpace(lo); lo != "" {
		v, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return domain.PriceRange{}
		}
		rng.Min = v
	}
	if hi = strings.TrimSpace(hi); hi != "" {
		v, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return domain.PriceRange{}
		}
		rng.Max = v
	}
	rng.Active = rng.Min > 0 || rng.Max > 0
	return rng
}

func decodeSet(s string) map[string]bool {
	if s == "" {
		return nil
	}
	set := map[string]bool{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			set[part] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}
