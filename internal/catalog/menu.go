package catalog

import (
	"sort"

	"github.com/camly/storefront/internal/domain"
	"github.com/camly/storefront/internal/vntext"
)

// menu keys with built-in meaning: the "product" subtree defines the
// category taxonomy, the "admin" subtree never leaves the server.
const (
	menuProductRoot = "product"
	menuAdminRoot   = "admin"
)

// BuildMenuTree assembles the navigation tree from flat rows. Children are
// ordered by their order column, ties by locale-aware title. Rows whose
// parent never appears become roots, so a broken parent link degrades to a
// visible top-level entry instead of vanishing.
func BuildMenuTree(items []domain.MenuItem) []domain.MenuNode {
	type slot struct {
		item     domain.MenuItem
		children []*slot
	}
	byKey := make(map[string]*slot, len(items))
	order := make([]*slot, 0, len(items))
	for _, it := range items {
		if it.Key == "" || byKey[it.Key] != nil {
			continue
		}
		s := &slot{item: it}
		byKey[it.Key] = s
		order = append(order, s)
	}

	var roots []*slot
	for _, s := range order {
		if p := byKey[s.item.Parent]; p != nil && s.item.Parent != s.item.Key {
			p.children = append(p.children, s)
		} else {
			roots = append(roots, s)
		}
	}

	sortSlots := func(ss []*slot) {
		sort.SliceStable(ss, func(i, j int) bool {
			a, b := ss[i].item, ss[j].item
			if a.Order != b.Order {
				return a.Order < b.Order
			}
			return vntext.Compare(a.Title, b.Title) < 0
		})
	}

	var build func(ss []*slot) []domain.MenuNode
	build = func(ss []*slot) []domain.MenuNode {
		sortSlots(ss)
		out := make([]domain.MenuNode, 0, len(ss))
		for _, s := range ss {
			out = append(out, domain.MenuNode{
				Key:      s.item.Key,
				Title:    s.item.Title,
				Children: build(s.children),
			})
		}
		return out
	}
	return build(roots)
}

// PublicMenu strips the admin subtree from the assembled tree.
func PublicMenu(tree []domain.MenuNode) []domain.MenuNode {
	out := make([]domain.MenuNode, 0, len(tree))
	for _, n := range tree {
		if n.Key == menuAdminRoot {
			continue
		}
		n.Children = PublicMenu(n.Children)
		out = append(out, n)
	}
	return out
}

// MenuCategories lists the categories declared under the menu's product
// subtree, in tree order. Used to backfill the category list when the
// categories tab is absent.
func MenuCategories(items []domain.MenuItem) []domain.Category {
	tree := BuildMenuTree(items)
	var product *domain.MenuNode
	for i := range tree {
		if tree[i].Key == menuProductRoot {
			product = &tree[i]
			break
		}
	}
	if product == nil {
		return nil
	}
	var out []domain.Category
	var walk func(nodes []domain.MenuNode)
	walk = func(nodes []domain.MenuNode) {
		for _, n := range nodes {
			out = append(out, domain.Category{Key: n.Key, Title: n.Title})
			walk(n.Children)
		}
	}
	walk(product.Children)
	return out
}

// DescendantIndex maps each menu key to the set of its descendant keys,
// the key itself included. Category scoping is a subtree test: selecting a
// parent category shows products of all its child categories.
func DescendantIndex(items []domain.MenuItem) map[string]map[string]bool {
	tree := BuildMenuTree(items)
	idx := make(map[string]map[string]bool)
	var collect func(n domain.MenuNode) []string
	collect = func(n domain.MenuNode) []string {
		keys := []string{n.Key}
		for _, c := range n.Children {
			keys = append(keys, collect(c)...)
		}
		set := make(map[string]bool, len(keys))
		for _, k := range keys {
			set[k] = true
		}
		idx[n.Key] = set
		return keys
	}
	for _, n := range tree {
		collect(n)
	}
	return idx
}

// InCategory reports whether a product's category falls under the selected
// menu key. With no subtree entry for the key the test degrades to exact
// match, so category filtering still works without a menu tab.
func InCategory(productCategory, selected string, idx map[string]map[string]bool) bool {
	if selected == "" {
		return true
	}
	if set, ok := idx[selected]; ok {
		return set[productCategory]
	}
	return productCategory == selected
}
