package catalog

import (
	"sync"
	"time"

	"github.com/camly/storefront/internal/cache"
	"github.com/camly/storefront/internal/domain"
	"github.com/camly/storefront/internal/pricing"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Store is the in-memory catalog snapshot. Writers are the sync worker and
// the cache hydration at startup; readers are the HTTP handlers. Each setter
// replaces one section wholesale (last write wins) and persists it to the
// cache, and product pricing is re-resolved whenever products, types or
// levels change.
type Store struct {
	log      zerolog.Logger
	cache    *cache.Cache
	validate *validator.Validate

	mu            sync.RWMutex
	products      []domain.Product
	types         []domain.ProductType
	levels        []domain.PriceLevel
	sizes         []domain.Size
	categories    []domain.Category
	tags          []domain.Tag
	menu          []domain.MenuItem
	menuIndex     map[string]map[string]bool
	pages         []domain.Page
	announcements []domain.Announcement
}

// NewStore returns an empty store. The cache is optional; without one the
// store is purely in-memory.
func NewStore(c *cache.Cache, log zerolog.Logger) *Store {
	return &Store{
		log:       log.With().Str("component", "store").Logger(),
		cache:     c,
		validate:  validator.New(),
		menuIndex: map[string]map[string]bool{},
	}
}

// Hydrate loads the last persisted snapshot so the storefront serves data
// before the first sync completes. Missing or unreadable sections are
// skipped silently; they will be filled by the next sync.
func (s *Store) Hydrate() {
	if s.cache == nil {
		return
	}
	var (
		products      []domain.Product
		types         []domain.ProductType
		levels        []domain.PriceLevel
		sizes         []domain.Size
		categories    []domain.Category
		tags          []domain.Tag
		menu          []domain.MenuItem
		pages         []domain.Page
		announcements []domain.Announcement
	)

	s.mu.Lock()
	if s.cache.Read(cache.KeyTypes, &types) == nil {
		s.types = types
	}
	if s.cache.Read(cache.KeyLevels, &levels) == nil {
		s.levels = levels
	}
	if s.cache.Read(cache.KeySizes, &sizes) == nil {
		s.sizes = sizes
	}
	if s.cache.Read(cache.KeyCategories, &categories) == nil {
		s.categories = categories
	}
	if s.cache.Read(cache.KeyTags, &tags) == nil {
		s.tags = tags
	}
	if s.cache.Read(cache.KeyMenu, &menu) == nil {
		s.menu = menu
		s.menuIndex = DescendantIndex(menu)
	}
	if s.cache.Read(cache.KeyPages, &pages) == nil {
		s.pages = pages
	}
	if s.cache.Read(cache.KeyAnnouncements, &announcements) == nil {
		s.announcements = announcements
	}
	if s.cache.Read(cache.KeyProducts, &products) == nil {
		s.products = products
		s.resolvePricingLocked()
	}
	n := len(s.products)
	s.mu.Unlock()

	s.log.Info().Int("products", n).Msg("hydrated catalog from cache")
}

// SetProducts replaces the product list. Records failing validation are
// dropped with a warning, pricing is resolved for the rest, and the category
// list is backfilled from the products when no categories tab supplied one.
func (s *Store) SetProducts(list []domain.Product) {
	kept := make([]domain.Product, 0, len(list))
	for _, p := range list {
		if err := s.validate.Struct(p); err != nil {
			s.log.Warn().Err(err).Str("id", p.ID).Str("name", p.Name).Msg("dropping invalid product")
			continue
		}
		kept = append(kept, p)
	}

	s.mu.Lock()
	s.products = kept
	s.resolvePricingLocked()
	s.persistLocked(cache.KeyProducts, s.products)
	s.mu.Unlock()
}

// SetTypes replaces the pricing schemes and re-resolves product pricing.
func (s *Store) SetTypes(list []domain.ProductType) {
	s.mu.Lock()
	s.types = list
	s.resolvePricingLocked()
	s.persistLocked(cache.KeyTypes, list)
	s.persistLocked(cache.KeyProducts, s.products)
	s.mu.Unlock()
}

// SetLevels replaces the base-price levels and re-resolves product pricing.
func (s *Store) SetLevels(list []domain.PriceLevel) {
	s.mu.Lock()
	s.levels = list
	s.resolvePricingLocked()
	s.persistLocked(cache.KeyLevels, list)
	s.persistLocked(cache.KeyProducts, s.products)
	s.mu.Unlock()
}

// SetSizes replaces the global size catalog.
func (s *Store) SetSizes(list []domain.Size) {
	s.mu.Lock()
	s.sizes = list
	s.persistLocked(cache.KeySizes, list)
	s.mu.Unlock()
}

// SetCategories replaces the category list.
func (s *Store) SetCategories(list []domain.Category) {
	s.mu.Lock()
	s.categories = list
	s.persistLocked(cache.KeyCategories, list)
	s.mu.Unlock()
}

// SetTags replaces the tag list.
func (s *Store) SetTags(list []domain.Tag) {
	s.mu.Lock()
	s.tags = list
	s.persistLocked(cache.KeyTags, list)
	s.mu.Unlock()
}

// SetMenu replaces the navigation rows and rebuilds the category subtree
// index used for scoping.
func (s *Store) SetMenu(list []domain.MenuItem) {
	s.mu.Lock()
	s.menu = list
	s.menuIndex = DescendantIndex(list)
	s.persistLocked(cache.KeyMenu, list)
	s.mu.Unlock()
}

// SetPages replaces the content pages.
func (s *Store) SetPages(list []domain.Page) {
	s.mu.Lock()
	s.pages = list
	s.persistLocked(cache.KeyPages, list)
	s.mu.Unlock()
}

// SetAnnouncements replaces the ticker messages.
func (s *Store) SetAnnouncements(list []domain.Announcement) {
	s.mu.Lock()
	s.announcements = list
	s.persistLocked(cache.KeyAnnouncements, list)
	s.mu.Unlock()
}

// resolvePricingLocked recomputes every product's pricing table. Caller
// holds the write lock.
func (s *Store) resolvePricingLocked() {
	for i := range s.products {
		pr := pricing.Resolve(s.products[i], s.types, s.levels)
		s.products[i].Pricing = &pr
	}
}

func (s *Store) persistLocked(key string, v any) {
	if s.cache != nil {
		s.cache.Write(key, v)
	}
}

// Products returns a copy of the product list.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Product looks up one product by id.
func (s *Store) Product(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// ProductsIn returns the products under the selected category subtree, in
// stored order. An empty key returns everything.
func (s *Store) ProductsIn(categoryKey string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if categoryKey == "" {
		out := make([]domain.Product, len(s.products))
		copy(out, s.products)
		return out
	}
	out := make([]domain.Product, 0)
	for _, p := range s.products {
		if InCategory(p.Category, categoryKey, s.menuIndex) {
			out = append(out, p)
		}
	}
	return out
}

// Types returns a copy of the pricing schemes.
func (s *Store) Types() []domain.ProductType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ProductType, len(s.types))
	copy(out, s.types)
	return out
}

// Levels returns a copy of the base-price levels.
func (s *Store) Levels() []domain.PriceLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PriceLevel, len(s.levels))
	copy(out, s.levels)
	return out
}

// Sizes returns a copy of the global size catalog.
func (s *Store) Sizes() []domain.Size {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Size, len(s.sizes))
	copy(out, s.sizes)
	return out
}

// Categories returns the category list: the categories tab when present,
// else the menu's product subtree. Either way, categories discovered on
// products but missing from that list are appended with the key as title,
// so a product tab ahead of the taxonomy still filters.
func (s *Store) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Category
	if len(s.categories) > 0 {
		out = make([]domain.Category, len(s.categories))
		copy(out, s.categories)
	} else {
		out = MenuCategories(s.menu)
	}

	seen := make(map[string]bool, len(out))
	for _, c := range out {
		seen[c.Key] = true
	}
	for _, p := range s.products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, domain.Category{Key: p.Category, Title: p.Category})
	}
	return out
}

// CategoryTitles maps category keys to display titles, merging the category
// list with the menu's product subtree. Search uses this so a query can hit
// a product through its category name.
func (s *Store) CategoryTitles() map[string]string {
	titles := map[string]string{}
	s.mu.RLock()
	menuCats := MenuCategories(s.menu)
	cats := s.categories
	s.mu.RUnlock()
	for _, c := range menuCats {
		titles[c.Key] = c.Title
	}
	for _, c := range cats {
		if c.Title != "" {
			titles[c.Key] = c.Title
		}
	}
	return titles
}

// Tags returns a copy of the tag list.
func (s *Store) Tags() []domain.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Tag, len(s.tags))
	copy(out, s.tags)
	return out
}

// Menu returns the public navigation tree with the admin subtree removed.
func (s *Store) Menu() []domain.MenuNode {
	s.mu.RLock()
	items := make([]domain.MenuItem, len(s.menu))
	copy(items, s.menu)
	s.mu.RUnlock()
	return PublicMenu(BuildMenuTree(items))
}

// Pages returns a copy of the content pages.
func (s *Store) Pages() []domain.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Page, len(s.pages))
	copy(out, s.pages)
	return out
}

// Page looks up one content page by key.
func (s *Store) Page(key string) (domain.Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.pages {
		if p.Key == key {
			return p, true
		}
	}
	return domain.Page{}, false
}

// ActiveAnnouncements returns the ticker messages active at now, in their
// declared order. An announcement with a window only shows inside it.
func (s *Store) ActiveAnnouncements(now time.Time) []domain.Announcement {
	ms := now.UnixMilli()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Announcement, 0, len(s.announcements))
	for _, a := range s.announcements {
		if !a.Active || a.Text == "" {
			continue
		}
		if a.Start > 0 && ms < a.Start {
			continue
		}
		if a.End > 0 && ms > a.End {
			continue
		}
		out = append(out, a)
	}
	return out
}
