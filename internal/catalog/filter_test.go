package catalog_test

import (
	"testing"

	"github.com/camly/storefront/internal/catalog"
	"github.com/camly/storefront/internal/domain"
	"github.com/camly/storefront/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func withPricing(p domain.Product) domain.Product {
	pr := pricing.Resolve(p, nil, nil)
	p.Pricing = &pr
	return p
}

func names(list []domain.Product) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.Name)
	}
	return out
}

func TestApply_DefaultOrdering(t *testing.T) {
	products := []domain.Product{
		{ID: "a", Name: "A", Order: intp(2)},
		{ID: "b", Name: "B", Order: intp(1)},
		{ID: "c", Name: "Bánh Chuối"},
		{ID: "d", Name: "Bánh Bắp"},
	}

	got := catalog.Apply(products, nil)

	// Order-carrying products first by order, the rest by collated name.
	assert.Equal(t, []string{"B", "A", "Bánh Bắp", "Bánh Chuối"}, names(got))
}

func TestApply_DefaultOrderingNumericNames(t *testing.T) {
	products := []domain.Product{
		{ID: "a", Name: "Bánh 10"},
		{ID: "b", Name: "Bánh 2"},
	}

	got := catalog.Apply(products, nil)

	assert.Equal(t, []string{"Bánh 2", "Bánh 10"}, names(got))
}

func TestApply_PureFunction(t *testing.T) {
	products := []domain.Product{
		{ID: "a", Name: "Z"},
		{ID: "b", Name: "A"},
	}

	got := catalog.Apply(products, nil)

	assert.Equal(t, "Z", products[0].Name, "input order untouched")
	assert.Equal(t, []string{"A", "Z"}, names(got))

	again := catalog.Apply(products, nil)
	assert.Equal(t, got, again, "same input, same output")
}

func TestApply_PriceRange(t *testing.T) {
	products := []domain.Product{
		withPricing(domain.Product{ID: "cheap", Name: "Cheap", Price: 150000}),
		withPricing(domain.Product{ID: "mid", Name: "Mid", PriceBySize: mustPrices("12-0", 180000)}),
		withPricing(domain.Product{ID: "dear", Name: "Dear", Price: 300000}),
		{ID: "nopriceless", Name: "No Price"},
	}
	f := &catalog.Filter{Price: domain.PriceRange{Min: 100000, Max: 200000, Active: true}}

	got := catalog.Apply(products, f)

	assert.ElementsMatch(t, []string{"Cheap", "Mid"}, names(got))
}

func TestApply_PriceRangeMatchesAnySize(t *testing.T) {
	// One size inside the window keeps the product even when others are out.
	p := withPricing(domain.Product{
		ID: "multi", Name: "Multi",
		PriceBySize: mustPrices("12-0", 150000, "25-0", 500000),
	})
	f := &catalog.Filter{Price: domain.PriceRange{Min: 400000, Max: 600000, Active: true}}

	got := catalog.Apply([]domain.Product{p}, f)

	require.Len(t, got, 1)
}

func TestApply_TagFilterUsesSlugs(t *testing.T) {
	products := []domain.Product{
		{ID: "a", Name: "A", Tags: []string{"Sinh Nhật"}},
		{ID: "b", Name: "B", Tags: []string{"Trung Thu"}},
	}
	f := &catalog.Filter{Tags: map[string]bool{"sinh-nhat": true}}

	got := catalog.Apply(products, f)

	assert.Equal(t, []string{"A"}, names(got))
}

func TestApply_PredicatesAreANDed(t *testing.T) {
	products := []domain.Product{
		withPricing(domain.Product{ID: "a", Name: "A", Banner: true, Price: 150000, Tags: []string{"Kem"}}),
		withPricing(domain.Product{ID: "b", Name: "B", Banner: false, Price: 150000, Tags: []string{"Kem"}}),
		withPricing(domain.Product{ID: "c", Name: "C", Banner: true, Price: 500000, Tags: []string{"Kem"}}),
	}
	f := &catalog.Filter{
		Featured: true,
		Tags:     map[string]bool{"kem": true},
		Price:    domain.PriceRange{Min: 100000, Max: 200000, Active: true},
	}

	got := catalog.Apply(products, f)

	assert.Equal(t, []string{"A"}, names(got))
}

func TestApply_InStockTriState(t *testing.T) {
	products := []domain.Product{
		{ID: "a", Name: "A", InStock: boolp(false)},
		{ID: "b", Name: "B", InStock: boolp(true)},
		{ID: "c", Name: "C"}, // unknown passes
	}
	f := &catalog.Filter{InStock: true}

	got := catalog.Apply(products, f)

	assert.ElementsMatch(t, []string{"B", "C"}, names(got))
}

func TestApply_SortPriceAscMissingLast(t *testing.T) {
	products := []domain.Product{
		{ID: "none", Name: "None"},
		withPricing(domain.Product{ID: "dear", Name: "Dear", Price: 300000}),
		withPricing(domain.Product{ID: "cheap", Name: "Cheap", Price: 100000}),
	}
	f := &catalog.Filter{Sort: catalog.SortPriceAsc}

	got := catalog.Apply(products, f)

	assert.Equal(t, []string{"Cheap", "Dear", "None"}, names(got))
}

func TestApply_SortPriceDescMissingLast(t *testing.T) {
	products := []domain.Product{
		{ID: "none", Name: "None"},
		withPricing(domain.Product{ID: "cheap", Name: "Cheap", Price: 100000}),
		withPricing(domain.Product{ID: "dear", Name: "Dear", Price: 300000}),
	}
	f := &catalog.Filter{Sort: catalog.SortPriceDesc}

	got := catalog.Apply(products, f)

	assert.Equal(t, []string{"Dear", "Cheap", "None"}, names(got))
}

func TestApply_SortNewest(t *testing.T) {
	products := []domain.Product{
		{ID: "old", Name: "Old", CreatedAt: 100},
		{ID: "new", Name: "New", CreatedAt: 300},
		{ID: "mid", Name: "Mid", CreatedAt: 200},
	}
	f := &catalog.Filter{Sort: catalog.SortNewest}

	got := catalog.Apply(products, f)

	assert.Equal(t, []string{"New", "Mid", "Old"}, names(got))
}

func mustPrices(pairs ...any) domain.SizePrices {
	sp := domain.NewSizePrices()
	for i := 0; i < len(pairs); i += 2 {
		switch v := pairs[i+1].(type) {
		case int:
			sp.Set(pairs[i].(string), float64(v))
		case float64:
			sp.Set(pairs[i].(string), v)
		}
	}
	return sp
}
