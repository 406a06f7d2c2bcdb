package domain

// =============================================================================
// CATALOG DOMAIN TYPES
// =============================================================================
//
// Every record below is recreated wholesale on each sheet sync; there is no
// incremental update and no deletion tracking. A record absent from the latest
// sync simply disappears from the next snapshot.

// Product is a single catalog item as assembled from the product tabs.
type Product struct {
	// ID is stable across syncs: the explicit id column when present,
	// otherwise a slug of name plus the source tab gid.
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Category string `json:"category"`

	// TypeID references a pricing scheme (ProductType) by id or code.
	TypeID string `json:"typeId,omitempty"`

	Images []string `json:"images,omitempty"`
	Tags   []string `json:"tags,omitempty"`

	// Banner marks a featured product.
	Banner bool `json:"banner,omitempty"`

	// Price is the optional flat price; zero means "not set".
	Price float64 `json:"price,omitempty"`

	// Sizes is the product's own allowed size list, raw "code@height" entries.
	Sizes []string `json:"sizes,omitempty"`

	// PriceBySize holds explicit per-size prices keyed by "code-height".
	PriceBySize SizePrices `json:"priceBySize,omitempty"`

	Description string `json:"description,omitempty"`

	// Level is an optional tier label used by the level filter.
	Level string `json:"level,omitempty"`

	// InStock is tri-state: nil means unknown and passes the in-stock filter.
	InStock *bool `json:"inStock,omitempty"`

	// Order is the explicit display order; nil when the sheet has no value.
	// Products carrying an order sort before those without.
	Order *int `json:"order,omitempty"`

	CreatedAt int64 `json:"createdAt,omitempty"` // unix millis
	Popular   int   `json:"popular,omitempty"`

	// Pricing is derived by the pricing resolver, never read from the sheet.
	Pricing *Pricing `json:"pricing,omitempty"`
}

// Pricing is the resolved size→price table for one product.
type Pricing struct {
	SchemeID string     `json:"schemeId,omitempty"`
	Table    []PriceRow `json:"table"`
}

// PriceRow is one entry of a resolved pricing table. Price is always a finite
// number greater than zero; rows that cannot resolve such a price are dropped.
type PriceRow struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// SizeOption is a selectable size for the quick-view UI: the pricing table
// rows merged with any extra keys present only in the raw PriceBySize map.
type SizeOption struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// PriceRange is an inclusive [Min, Max] price window. It only restricts
// anything when Active is true.
type PriceRange struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Active bool    `json:"active"`
}

// Size is a physical size option from the global size catalog.
type Size struct {
	ID     string `json:"id"`
	Code   string `json:"code" validate:"required"`
	Label  string `json:"label"`
	Height int    `json:"height"`
	// Key is the composite "code-height" identity; "20x20" at height 3 is
	// "20x20-3", a flat 12cm cake is "12-0".
	Key string `json:"key"`
}

// SizeRef pairs a size key with its display label inside a ProductType.
type SizeRef struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ProductType is a named pricing scheme declaring which size keys are valid
// for products of this type.
type ProductType struct {
	ID       string    `json:"id" validate:"required"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	Sizes    []SizeRef `json:"sizes,omitempty"`
	SchemeID string    `json:"schemeId,omitempty"`
	Order    int       `json:"order,omitempty"`
}

// SizeKeys returns the declared size keys in order.
func (t ProductType) SizeKeys() []string {
	keys := make([]string, 0, len(t.Sizes))
	for _, s := range t.Sizes {
		keys = append(keys, s.Key)
	}
	return keys
}

// LabelFor returns the declared label for a size key, if any.
func (t ProductType) LabelFor(key string) (string, bool) {
	for _, s := range t.Sizes {
		if s.Key == key {
			return s.Label, true
		}
	}
	return "", false
}

// PriceLevel is one tier of base prices per size key, scoped to a scheme.
// A type's SchemeID selects which level supplies fallback prices.
type PriceLevel struct {
	ID       string     `json:"id" validate:"required"`
	Name     string     `json:"name"`
	SchemeID string     `json:"schemeId"`
	Prices   SizePrices `json:"prices"`
}

// Category is a catalog category; Key is the slug used on products.
type Category struct {
	Key   string `json:"key" validate:"required"`
	Title string `json:"title"`
}

// Tag is a selectable product tag.
type Tag struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// MenuItem is a flat navigation row; the menu tree is built from Parent links.
type MenuItem struct {
	Key    string `json:"key" validate:"required"`
	Title  string `json:"title"`
	Parent string `json:"parent,omitempty"`
	Order  int    `json:"order,omitempty"`
}

// MenuNode is a node of the assembled navigation tree.
type MenuNode struct {
	Key      string     `json:"key"`
	Title    string     `json:"title"`
	Children []MenuNode `json:"children,omitempty"`
}

// Page is a free-form content page rendered by the storefront.
type Page struct {
	Key   string `json:"key" validate:"required"`
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

// Announcement is one ticker message with an optional active window.
type Announcement struct {
	Text   string `json:"text"`
	Active bool   `json:"active"`
	Order  int    `json:"order"`
	Start  int64  `json:"start,omitempty"` // unix millis, 0 = unbounded
	End    int64  `json:"end,omitempty"`
}
