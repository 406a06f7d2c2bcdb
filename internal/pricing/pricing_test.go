package pricing_test

import (
	"testing"

	"github.com/camly/storefront/internal/domain"
	"github.com/camly/storefront/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sizePrices(pairs ...any) domain.SizePrices {
	sp := domain.NewSizePrices()
	for i := 0; i < len(pairs); i += 2 {
		sp.Set(pairs[i].(string), pairs[i+1].(float64))
	}
	return sp
}

func TestResolve_OwnPriceBySize(t *testing.T) {
	p := domain.Product{
		ID:          "banh-tim",
		Name:        "Bánh Tim 20x20",
		TypeID:      "tim",
		PriceBySize: sizePrices("20x20-3", 300000.0),
	}
	types := []domain.ProductType{{ID: "tim", SchemeID: "scheme-a"}}

	got := pricing.Resolve(p, types, nil)

	require.Len(t, got.Table, 1)
	assert.Equal(t, "20x20-3", got.Table[0].Key)
	assert.Equal(t, "Size 20x20x3cm", got.Table[0].Label)
	assert.Equal(t, 300000.0, got.Table[0].Price)
	assert.Equal(t, "scheme-a", got.SchemeID)
}

func TestResolve_BareNumericKeyNormalized(t *testing.T) {
	p := domain.Product{
		ID:          "banh-tron",
		Name:        "Bánh Tròn",
		PriceBySize: sizePrices("10", 150000.0),
	}

	got := pricing.Resolve(p, nil, nil)

	require.Len(t, got.Table, 1)
	assert.Equal(t, "10-0", got.Table[0].Key)
	assert.Equal(t, "Size 10cm", got.Table[0].Label)
}

func TestResolve_SizeListFallsBackToLevelPrices(t *testing.T) {
	p := domain.Product{
		ID:     "banh-bap",
		Name:   "Bánh Bắp",
		TypeID: "tron",
		Sizes:  []string{"12", "16", "20"},
	}
	types := []domain.ProductType{{ID: "tron", SchemeID: "base"}}
	levels := []domain.PriceLevel{{
		ID:       "standard",
		SchemeID: "base",
		Prices:   sizePrices("12-0", 150000.0, "16-0", 250000.0),
	}}

	got := pricing.Resolve(p, types, levels)

	// "20" has no price anywhere and is dropped; the others keep size-list order.
	require.Len(t, got.Table, 2)
	assert.Equal(t, "12-0", got.Table[0].Key)
	assert.Equal(t, 150000.0, got.Table[0].Price)
	assert.Equal(t, "16-0", got.Table[1].Key)
}

func TestResolve_OwnPriceWinsOverLevel(t *testing.T) {
	p := domain.Product{
		ID:          "banh-dau",
		Name:        "Bánh Dâu",
		TypeID:      "tron",
		PriceBySize: sizePrices("12-0", 180000.0),
	}
	types := []domain.ProductType{{ID: "tron", SchemeID: "base"}}
	levels := []domain.PriceLevel{{
		ID:       "standard",
		SchemeID: "base",
		Prices:   sizePrices("12-0", 150000.0),
	}}

	got := pricing.Resolve(p, types, levels)

	require.Len(t, got.Table, 1)
	assert.Equal(t, 180000.0, got.Table[0].Price)
}

func TestResolve_LevelKeysWhenProductSilent(t *testing.T) {
	p := domain.Product{ID: "banh-mi", Name: "Bánh Mì", TypeID: "tron"}
	types := []domain.ProductType{{ID: "tron", SchemeID: "base"}}
	levels := []domain.PriceLevel{{
		ID:       "standard",
		SchemeID: "base",
		Prices:   sizePrices("12-0", 150000.0, "16-0", 250000.0),
	}}

	got := pricing.Resolve(p, types, levels)

	require.Len(t, got.Table, 2)
	assert.Equal(t, []string{"12-0", "16-0"}, []string{got.Table[0].Key, got.Table[1].Key})
}

func TestResolve_TypeMatchByCode(t *testing.T) {
	p := domain.Product{ID: "p1", Name: "P1", TypeID: "vuong"}
	types := []domain.ProductType{
		{ID: "type-1", Code: "vuong", SchemeID: "sq", Sizes: []domain.SizeRef{{Key: "20x20-3", Label: "Size vuông 20"}}},
	}
	levels := []domain.PriceLevel{{ID: "l", SchemeID: "sq", Prices: sizePrices("20x20-3", 320000.0)}}

	got := pricing.Resolve(p, types, levels)

	require.Len(t, got.Table, 1)
	assert.Equal(t, "Size vuông 20", got.Table[0].Label, "declared type label wins over synthesis")
}

func TestResolve_DropsInvalidPrices(t *testing.T) {
	p := domain.Product{
		ID:          "p2",
		Name:        "P2",
		PriceBySize: sizePrices("12-0", 0.0, "16-0", -5.0, "20-0", 200000.0),
	}

	got := pricing.Resolve(p, nil, nil)

	require.Len(t, got.Table, 1)
	assert.Equal(t, "20-0", got.Table[0].Key)
}

func TestResolve_InsertionOrderNeverSorted(t *testing.T) {
	p := domain.Product{
		ID:          "p3",
		Name:        "P3",
		PriceBySize: sizePrices("25-0", 400000.0, "12-0", 150000.0, "20-0", 300000.0),
	}

	got := pricing.Resolve(p, nil, nil)

	require.Len(t, got.Table, 3)
	assert.Equal(t, "25-0", got.Table[0].Key)
	assert.Equal(t, "12-0", got.Table[1].Key)
	assert.Equal(t, "20-0", got.Table[2].Key)
}

func TestResolve_Deterministic(t *testing.T) {
	p := domain.Product{
		ID:          "p4",
		Name:        "P4",
		TypeID:      "tron",
		PriceBySize: sizePrices("12-0", 150000.0, "16-0", 250000.0),
	}
	types := []domain.ProductType{{ID: "tron", SchemeID: "base"}}

	first := pricing.Resolve(p, types, nil)
	second := pricing.Resolve(p, types, nil)

	assert.Equal(t, first, second)
}

func TestLabelForKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"20x20-3", "Size 20x20x3cm"},
		{"12-0", "Size 12cm"},
		{"25-4", "Size 25cm cao 4cm"},
		{"weird", "Size weird"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pricing.LabelForKey(tt.key), tt.key)
	}
}

func TestKeyFromSizeSpec(t *testing.T) {
	assert.Equal(t, "20x20-3", pricing.KeyFromSizeSpec("20x20@3"))
	assert.Equal(t, "12-0", pricing.KeyFromSizeSpec("12"))
	assert.Equal(t, "16-0", pricing.KeyFromSizeSpec("16@abc-0"))
}

func TestPickDefaultSize_CheapestWins(t *testing.T) {
	opts := []domain.SizeOption{
		{ID: "20-0", Price: 300000},
		{ID: "12-0", Price: 150000},
		{ID: "16-0", Price: 250000},
	}
	assert.Equal(t, "12-0", pricing.PickDefaultSize(opts, nil))
}

func TestPickDefaultSize_RespectsActiveRange(t *testing.T) {
	opts := []domain.SizeOption{
		{ID: "12-0", Price: 150000},
		{ID: "20-0", Price: 300000},
	}
	rng := &domain.PriceRange{Min: 200000, Max: 400000, Active: true}
	assert.Equal(t, "20-0", pricing.PickDefaultSize(opts, rng))
}

func TestPickDefaultSize_RangeWithNoMatchFallsBack(t *testing.T) {
	opts := []domain.SizeOption{
		{ID: "12-0", Price: 150000},
	}
	rng := &domain.PriceRange{Min: 500000, Active: true}
	assert.Equal(t, "12-0", pricing.PickDefaultSize(opts, rng))
}

func TestPickDefaultSize_NoOptions(t *testing.T) {
	assert.Equal(t, "", pricing.PickDefaultSize(nil, nil))
}

func TestPriceFor(t *testing.T) {
	p := domain.Product{
		ID:          "p5",
		Name:        "P5",
		Price:       100000,
		PriceBySize: sizePrices("12-0", 150000.0),
	}
	pr := pricing.Resolve(p, nil, nil)
	p.Pricing = &pr

	v, ok := pricing.PriceFor(p, "12-0")
	assert.True(t, ok)
	assert.Equal(t, 150000.0, v)

	v, ok = pricing.PriceFor(p, "missing")
	assert.True(t, ok, "flat price is the fallback")
	assert.Equal(t, 100000.0, v)

	_, ok = pricing.PriceFor(domain.Product{ID: "x", Name: "x"}, "")
	assert.False(t, ok)
}

func TestMinPrice(t *testing.T) {
	p := domain.Product{
		ID:          "p6",
		Name:        "P6",
		Price:       500000,
		PriceBySize: sizePrices("12-0", 150000.0),
	}
	v, ok := pricing.MinPrice(p)
	assert.True(t, ok)
	assert.Equal(t, 150000.0, v)

	_, ok = pricing.MinPrice(domain.Product{ID: "y", Name: "y"})
	assert.False(t, ok)
}
