package catalog_test

import (
	"testing"

	"github.com/camly/storefront/internal/catalog"
	"github.com/camly/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
)

var searchProducts = []domain.Product{
	{ID: "1", Name: "Bánh Sinh Nhật", Category: "banh-kem"},
	{ID: "2", Name: "Bánh Trung Thu", Category: "banh-ngot", Tags: []string{"Đặc Biệt"}},
	{ID: "3", Name: "Banh Mi", Category: "banh-man"},
}

var searchTitles = map[string]string{
	"banh-kem":  "Bánh Kem",
	"banh-ngot": "Bánh Ngọt",
	"banh-man":  "Bánh Mặn",
}

func TestSearch_StrictPass(t *testing.T) {
	got := catalog.Search(searchProducts, "Bánh Sinh", searchTitles)

	assert.Equal(t, []string{"Bánh Sinh Nhật"}, names(got))
}

func TestSearch_PlainQueryFoldsBothSides(t *testing.T) {
	got := catalog.Search(searchProducts, "banh sinh nhat", searchTitles)

	assert.Equal(t, []string{"Bánh Sinh Nhật"}, names(got))
}

func TestSearch_PlainQueryMatchesAccentedAndPlainNames(t *testing.T) {
	// An unaccented name in the catalog must not shadow the accented ones:
	// "banh" finds every product whose folded tokens contain it.
	got := catalog.Search(searchProducts, "banh", searchTitles)

	assert.Len(t, got, 3)
}

func TestSearch_DiacriticQueryNeverBroadens(t *testing.T) {
	// "bành" folds to "banh" but the accented query must not match
	// accent-free tokens through folding.
	got := catalog.Search(searchProducts, "bành", searchTitles)

	assert.Empty(t, got)
}

func TestSearch_PlainQueryStillNarrowsByAllTokens(t *testing.T) {
	got := catalog.Search(searchProducts, "banh mi", searchTitles)

	assert.Equal(t, []string{"Banh Mi"}, names(got))
}

func TestSearch_MatchesThroughTagsAndCategory(t *testing.T) {
	byTag := catalog.Search(searchProducts, "đặc biệt", searchTitles)
	assert.Equal(t, []string{"Bánh Trung Thu"}, names(byTag))

	byCategory := catalog.Search(searchProducts, "ngọt", searchTitles)
	assert.Equal(t, []string{"Bánh Trung Thu"}, names(byCategory))
}

func TestSearch_AllTokensRequired(t *testing.T) {
	got := catalog.Search(searchProducts, "bánh tồn tại không", searchTitles)

	assert.Empty(t, got)
}

func TestSearch_EmptyQueryPassesThrough(t *testing.T) {
	got := catalog.Search(searchProducts, "   ", searchTitles)

	assert.Len(t, got, len(searchProducts))
}

func TestSuggest(t *testing.T) {
	categories := []domain.Category{
		{Key: "banh-kem", Title: "Bánh Kem"},
		{Key: "banh-ngot", Title: "Bánh Ngọt"},
	}
	tags := []domain.Tag{{ID: "sinh-nhat", Label: "Sinh Nhật"}}

	got := catalog.Suggest("banh k", categories, searchProducts, tags)

	assert.NotEmpty(t, got)
	assert.Equal(t, "category", got[0].Kind)
	assert.Equal(t, "banh-kem", got[0].Key)
}

func TestSuggest_EmptyQuery(t *testing.T) {
	assert.Nil(t, catalog.Suggest("  ", nil, searchProducts, nil))
}
