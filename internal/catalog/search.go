package catalog

import (
	"strings"

	"github.com/camly/storefront/internal/domain"
	"github.com/camly/storefront/internal/vntext"
)

// Search runs the token-subset product search. A query that carries
// diacritics is matched verbatim, so "bành" never broadens to "banh". A
// diacritic-free query compares diacritic-stripped tokens on both sides,
// which lets "banh" find "Bánh Sinh Nhật" alongside any unaccented names;
// the folded result is always a superset of the verbatim one.
//
// The token set of a product covers its name, its tags and the title of its
// category; categoryTitles maps category keys to display titles.
func Search(products []domain.Product, query string, categoryTitles map[string]string) []domain.Product {
	query = strings.TrimSpace(query)
	if query == "" {
		return products
	}
	qTokens := vntext.Tokenize(query)
	if len(qTokens) == 0 {
		return products
	}

	if vntext.HasDiacritics(query) {
		return matchPass(products, qTokens, categoryTitles, false)
	}

	folded := make([]string, len(qTokens))
	for i, t := range qTokens {
		folded[i] = vntext.Fold(t)
	}
	return matchPass(products, folded, categoryTitles, true)
}

func matchPass(products []domain.Product, qTokens []string, categoryTitles map[string]string, fold bool) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range products {
		if containsAll(productTokens(p, categoryTitles[p.Category], fold), qTokens) {
			out = append(out, p)
		}
	}
	return out
}

func containsAll(set map[string]bool, tokens []string) bool {
	for _, t := range tokens {
		if !set[t] {
			return false
		}
	}
	return true
}

func productTokens(p domain.Product, categoryTitle string, fold bool) map[string]bool {
	set := make(map[string]bool)
	add := func(s string) {
		if fold {
			s = vntext.Fold(s)
		}
		for _, t := range vntext.Tokenize(s) {
			set[t] = true
		}
	}
	add(p.Name)
	for _, t := range p.Tags {
		add(t)
	}
	add(categoryTitle)
	return set
}

// Suggestion is one entry of the search-as-you-type dropdown.
type Suggestion struct {
	Kind  string `json:"kind"` // "category", "product" or "tag"
	Key   string `json:"key"`
	Label string `json:"label"`
}

const (
	suggestPerKind = 5
	suggestTotal   = 10
)

// Suggest builds the quick suggestions for a partial query: matching
// categories first, then products, then tags, each matched by folded
// substring and capped per kind and overall.
func Suggest(query string, categories []domain.Category, products []domain.Product, tags []domain.Tag) []Suggestion {
	q := vntext.Fold(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []Suggestion
	n := 0
	for _, c := range categories {
		if n >= suggestPerKind {
			break
		}
		if strings.Contains(vntext.Fold(c.Title), q) {
			out = append(out, Suggestion{Kind: "category", Key: c.Key, Label: c.Title})
			n++
		}
	}
	n = 0
	for _, p := range products {
		if n >= suggestPerKind {
			break
		}
		if strings.Contains(vntext.Fold(p.Name), q) {
			out = append(out, Suggestion{Kind: "product", Key: p.ID, Label: p.Name})
			n++
		}
	}
	n = 0
	for _, t := range tags {
		if n >= suggestPerKind {
			break
		}
		if strings.Contains(vntext.Fold(t.Label), q) {
			out = append(out, Suggestion{Kind: "tag", Key: t.ID, Label: t.Label})
			n++
		}
	}
	if len(out) > suggestTotal {
		out = out[:suggestTotal]
	}
	return out
}
