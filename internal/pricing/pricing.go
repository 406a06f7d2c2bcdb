// Package pricing resolves each product's size→price table from the three
// possible price sources the sheets encode: the product's own priceBySize map,
// the product's own size list, and the base-price level selected by the
// product's type scheme.
//
// Nothing in this package returns an error: malformed pricing data degrades to
// an empty table or a missing price, and the storefront renders "contact us".
package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/camly/storefront/internal/domain"
)

var (
	bareNumericKey = regexp.MustCompile(`^\d+$`)
	compositeKey   = regexp.MustCompile(`^(.+)-(\d+)$`)
	matrixCode     = regexp.MustCompile(`(?i)[x×]`)
)

// Valid reports whether v is usable as a price: finite and greater than zero.
// Zero, negative, NaN and infinite values never reach a pricing table.
func Valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// NormalizeKey maps bare numeric keys to their flat-height form, so "10" and
// "10-0" are the same size.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if bareNumericKey.MatchString(key) {
		return key + "-0"
	}
	return key
}

// KeyFromSizeSpec converts a product size entry like "20x20@3" into the
// composite key "20x20-3". Entries without a numeric height default to 0.
func KeyFromSizeSpec(spec string) string {
	spec = strings.TrimSpace(spec)
	code, height, ok := strings.Cut(spec, "@")
	code = strings.TrimSpace(code)
	if ok {
		if h, err := strconv.Atoi(strings.TrimSpace(height)); err == nil {
			return code + "-" + strconv.Itoa(h)
		}
	}
	return code + "-0"
}

// LabelForKey synthesizes a display label from a composite size key:
// "20x20-3" → "Size 20x20x3cm", "12-0" → "Size 12cm",
// "25-4" → "Size 25cm cao 4cm" for round cakes with a tall rim.
func LabelForKey(key string) string {
	m := compositeKey.FindStringSubmatch(key)
	if m == nil {
		return "Size " + key
	}
	code := m[1]
	h, _ := strconv.Atoi(m[2])
	if h > 0 {
		if matrixCode.MatchString(code) {
			return "Size " + code + "x" + strconv.Itoa(h) + "cm"
		}
		return "Size " + code + "cm cao " + strconv.Itoa(h) + "cm"
	}
	return "Size " + code + "cm"
}

// FindType locates the product's pricing scheme, matching the reference
// against each type's id or code. First match wins.
func FindType(types []domain.ProductType, ref string) *domain.ProductType {
	if ref == "" {
		return nil
	}
	for i := range types {
		if types[i].ID == ref || types[i].Code == ref {
			return &types[i]
		}
	}
	return nil
}

func findLevel(levels []domain.PriceLevel, schemeID string) *domain.PriceLevel {
	if schemeID == "" {
		return nil
	}
	for i := range levels {
		if levels[i].SchemeID == schemeID {
			return &levels[i]
		}
	}
	return nil
}

// Resolve builds the product's pricing table. Inputs are never mutated and
// resolving twice with unchanged type/level data yields an identical table.
//
// Candidate size keys come from the first non-empty source: the product's own
// priceBySize keys, then the product's own size list, then the matched level's
// base-price map. Per key the product's own price wins over the level's base
// price; entries without a valid price are dropped. Table order is candidate
// insertion order, deduplicated, never sorted.
func Resolve(p domain.Product, types []domain.ProductType, levels []domain.PriceLevel) domain.Pricing {
	typ := FindType(types, p.TypeID)
	schemeID := ""
	var level *domain.PriceLevel
	if typ != nil {
		schemeID = typ.SchemeID
		level = findLevel(levels, schemeID)
	}

	own := domain.NewSizePrices()
	for _, k := range p.PriceBySize.Keys() {
		v, _ := p.PriceBySize.Get(k)
		if Valid(v) {
			own.Set(NormalizeKey(k), v)
		}
	}

	var keys []string
	switch {
	case own.Len() > 0:
		keys = own.Keys()
	case len(p.Sizes) > 0:
		for _, s := range p.Sizes {
			keys = append(keys, KeyFromSizeSpec(s))
		}
	case level != nil:
		keys = level.Prices.Keys()
	}

	seen := make(map[string]bool, len(keys))
	table := make([]domain.PriceRow, 0, len(keys))
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true

		label := LabelForKey(key)
		if typ != nil {
			if l, ok := typ.LabelFor(key); ok && l != "" {
				label = l
			}
		}

		price, ok := own.Get(key)
		if !ok && level != nil {
			price, _ = level.Prices.Get(key)
		}
		if !Valid(price) {
			continue
		}
		table = append(table, domain.PriceRow{Key: key, Label: label, Price: price})
	}

	return domain.Pricing{SchemeID: schemeID, Table: table}
}

// SizeOptions lists the selectable sizes for the quick-view UI: the pricing
// table rows in order, followed by keys that exist only in the raw priceBySize
// map, with the bare key as label when no better one is known.
func SizeOptions(p domain.Product) []domain.SizeOption {
	seen := map[string]bool{}
	var out []domain.SizeOption

	if p.Pricing != nil {
		for _, r := range p.Pricing.Table {
			if r.Key == "" {
				continue
			}
			seen[r.Key] = true
			label := r.Label
			if label == "" {
				label = r.Key
			}
			out = append(out, domain.SizeOption{ID: r.Key, Label: label, Price: r.Price})
		}
	}
	for _, k := range p.PriceBySize.Keys() {
		if seen[k] {
			continue
		}
		v, _ := p.PriceBySize.Get(k)
		out = append(out, domain.SizeOption{ID: k, Label: k, Price: v})
	}
	return out
}

// PickDefaultSize chooses the size pre-selected in the quick view: the
// cheapest option, restricted to the active price-range filter when one is
// set and any option falls inside it. Ties keep the first occurrence.
// Returns "" when the product has no size options at all.
func PickDefaultSize(opts []domain.SizeOption, rng *domain.PriceRange) string {
	if len(opts) == 0 {
		return ""
	}

	cand := make([]domain.SizeOption, 0, len(opts))
	for _, o := range opts {
		if o.Price > 0 {
			cand = append(cand, o)
		}
	}

	if rng != nil && rng.Active {
		lo, hi := rng.Min, rng.Max
		if hi <= 0 {
			hi = math.MaxFloat64
		}
		inRange := make([]domain.SizeOption, 0, len(cand))
		for _, o := range cand {
			if o.Price >= lo && o.Price <= hi {
				inRange = append(inRange, o)
			}
		}
		if len(inRange) > 0 {
			cand = inRange
		}
	}

	best := ""
	bestPrice := math.Inf(1)
	for _, o := range cand {
		if o.Price < bestPrice {
			best = o.ID
			bestPrice = o.Price
		}
	}
	if best == "" {
		return opts[0].ID
	}
	return best
}

// PriceFor resolves the price shown for a selected size: the product's own
// priceBySize entry, then the pricing-table row, then the flat price. The
// second return is false when nothing resolves ("contact us" in the UI).
func PriceFor(p domain.Product, sizeID string) (float64, bool) {
	if sizeID != "" {
		if v, ok := p.PriceBySize.Get(sizeID); ok && Valid(v) {
			return v, true
		}
		if p.Pricing != nil {
			for _, r := range p.Pricing.Table {
				if r.Key == sizeID && Valid(r.Price) {
					return r.Price, true
				}
			}
		}
	}
	if Valid(p.Price) {
		return p.Price, true
	}
	return 0, false
}

// Prices returns every resolvable price of the product: pricing-table rows,
// raw priceBySize values and the flat price. The filter engine treats the
// union of the three sources as the product's price set.
func Prices(p domain.Product) []float64 {
	var out []float64
	if p.Pricing != nil {
		for _, r := range p.Pricing.Table {
			if Valid(r.Price) {
				out = append(out, r.Price)
			}
		}
	}
	for _, v := range p.PriceBySize.Values() {
		if Valid(v) {
			out = append(out, v)
		}
	}
	if Valid(p.Price) {
		out = append(out, p.Price)
	}
	return out
}

// MinPrice returns the product's cheapest resolvable price.
func MinPrice(p domain.Product) (float64, bool) {
	prices := Prices(p)
	if len(prices) == 0 {
		return 0, false
	}
	min := prices[0]
	for _, v := range prices[1:] {
		if v < min {
			min = v
		}
	}
	return min, true
}
