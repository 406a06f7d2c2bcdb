package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/camly/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizePrices_InsertionOrder(t *testing.T) {
	sp := domain.NewSizePrices()
	sp.Set("25-0", 400000)
	sp.Set("12-0", 150000)
	sp.Set("20-0", 300000)
	sp.Set("12-0", 160000) // replace keeps position

	assert.Equal(t, []string{"25-0", "12-0", "20-0"}, sp.Keys())
	assert.Equal(t, []float64{400000, 160000, 300000}, sp.Values())
}

func TestSizePrices_JSONRoundTripKeepsOrder(t *testing.T) {
	sp := domain.NewSizePrices()
	sp.Set("25-0", 400000)
	sp.Set("12-0", 150000)

	data, err := json.Marshal(sp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"25-0":400000,"12-0":150000}`, string(data))

	var back domain.SizePrices
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []string{"25-0", "12-0"}, back.Keys())
}

func TestSizePrices_UnmarshalRejectsNonObject(t *testing.T) {
	var sp domain.SizePrices
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &sp))
}
