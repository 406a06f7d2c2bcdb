// Package worker runs the periodic sheet sync that feeds the catalog store.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/camly/storefront/internal/catalog"
	"github.com/camly/storefront/internal/domain"
	"github.com/camly/storefront/internal/sheets"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultInterval matches the storefront's refresh cadence.
const DefaultInterval = 10 * time.Minute

// TabConfig names the gid of every optional tab. An empty gid skips that
// section; the store keeps whatever it already has.
type TabConfig struct {
	Products      []sheets.Tab
	Categories    string
	Tags          string
	Menu          string
	Pages         string
	Sizes         string
	Types         string
	Levels        string
	Announcements string
}

// Status is a point-in-time snapshot of the sync loop, served by the admin
// status endpoint.
type Status struct {
	Syncing     bool      `json:"syncing"`
	LastRun     time.Time `json:"lastRun,omitzero"`
	LastSuccess time.Time `json:"lastSuccess,omitzero"`
	LastError   string    `json:"lastError,omitempty"`
	Products    int       `json:"products"`
}

type metrics struct {
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	products prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "sync",
			Name:      "runs_total",
			Help:      "Sheet sync runs by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "sync",
			Name:      "duration_seconds",
			Help:      "Duration of full sheet sync runs.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		products: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "sync",
			Name:      "products",
			Help:      "Products in the current catalog snapshot.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.runs, m.duration, m.products)
	}
	return m
}

// Syncer fetches every configured tab and applies the results to the store.
// Tabs are fetched in parallel and each is applied as soon as it arrives;
// a failed tab is logged and skipped while the others still land, so one
// broken tab degrades that section to its previous snapshot only.
type Syncer struct {
	client        *sheets.Client
	store         *catalog.Store
	tabs          TabConfig
	drive         *sheets.DriveIndexer
	driveFolderID string
	interval      time.Duration
	log           zerolog.Logger
	metrics       *metrics

	trigger chan chan error

	mu     sync.Mutex
	status Status
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithInterval overrides the sync cadence.
func WithInterval(d time.Duration) Option {
	return func(s *Syncer) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithDriveImages enables the Drive image fallback index for products
// without an image column.
func WithDriveImages(d *sheets.DriveIndexer, folderID string) Option {
	return func(s *Syncer) {
		s.drive = d
		s.driveFolderID = folderID
	}
}

// WithRegisterer sets the metrics registry; defaults to the global one.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Syncer) { s.metrics = newMetrics(reg) }
}

// New builds a Syncer.
func New(client *sheets.Client, store *catalog.Store, tabs TabConfig, log zerolog.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		client:   client,
		store:    store,
		tabs:     tabs,
		interval: DefaultInterval,
		log:      log.With().Str("component", "sync").Logger(),
		trigger:  make(chan chan error),
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = newMetrics(prometheus.DefaultRegisterer)
	}
	return s
}

// Run syncs immediately, then on every tick and on every manual trigger,
// until ctx is done.
func (s *Syncer) Run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		case done := <-s.trigger:
			done <- s.runOnce(ctx)
		}
	}
}

// TriggerSync requests an immediate sync from the running loop and waits
// for it to finish. Returns ctx's error when the loop is gone or busy past
// the caller's deadline.
func (s *Syncer) TriggerSync(ctx context.Context) error {
	done := make(chan error, 1)
	select {
	case s.trigger <- done:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current sync status.
func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status
	st.Products = len(s.store.Products())
	return st
}

func (s *Syncer) runOnce(ctx context.Context) error {
	s.setSyncing(true)
	start := time.Now()
	err := s.sync(ctx)
	elapsed := time.Since(start)

	s.metrics.duration.Observe(elapsed.Seconds())
	s.metrics.products.Set(float64(len(s.store.Products())))

	s.mu.Lock()
	s.status.Syncing = false
	s.status.LastRun = start
	if err != nil {
		s.status.LastError = err.Error()
	} else {
		s.status.LastError = ""
		s.status.LastSuccess = start
	}
	s.mu.Unlock()

	if err != nil {
		s.metrics.runs.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Dur("elapsed", elapsed).Msg("sync finished with errors")
	} else {
		s.metrics.runs.WithLabelValues("ok").Inc()
		s.log.Info().Dur("elapsed", elapsed).Int("products", len(s.store.Products())).Msg("sync complete")
	}
	return err
}

func (s *Syncer) setSyncing(v bool) {
	s.mu.Lock()
	s.status.Syncing = v
	s.mu.Unlock()
}

// sync runs one full pass. The returned error is the first tab failure;
// successful tabs have already been applied by then.
func (s *Syncer) sync(ctx context.Context) error {
	var images *sheets.ImageIndex
	if s.drive != nil && s.driveFolderID != "" {
		ix, err := s.drive.BuildIndex(ctx, s.driveFolderID)
		if err != nil {
			s.log.Warn().Err(err).Msg("drive image index unavailable, products keep sheet images only")
		} else {
			images = ix
			s.log.Debug().Int("names", ix.Len()).Msg("drive image index built")
		}
	}

	// Plain errgroup: a failed tab must not cancel its siblings.
	var g errgroup.Group

	g.Go(func() error { return s.syncProducts(ctx, images) })

	type section struct {
		name  string
		gid   string
		apply func([]sheets.Row)
	}
	sections := []section{
		{"types", s.tabs.Types, func(r []sheets.Row) { s.applyTypes(r) }},
		{"levels", s.tabs.Levels, func(r []sheets.Row) { s.applyLevels(r) }},
		{"sizes", s.tabs.Sizes, func(r []sheets.Row) { s.applySizes(r) }},
		{"categories", s.tabs.Categories, func(r []sheets.Row) { s.applyCategories(r) }},
		{"tags", s.tabs.Tags, func(r []sheets.Row) { s.applyTags(r) }},
		{"menu", s.tabs.Menu, func(r []sheets.Row) { s.applyMenu(r) }},
		{"pages", s.tabs.Pages, func(r []sheets.Row) { s.applyPages(r) }},
		{"announcements", s.tabs.Announcements, func(r []sheets.Row) { s.applyAnnouncements(r) }},
	}
	for _, sec := range sections {
		if sec.gid == "" {
			continue
		}
		g.Go(func() error {
			rows, err := s.client.FetchTab(ctx, sec.gid)
			if err != nil {
				s.log.Warn().Err(err).Str("section", sec.name).Msg("section fetch failed, keeping previous snapshot")
				return err
			}
			sec.apply(rows)
			return nil
		})
	}

	return g.Wait()
}

// syncProducts fetches every product tab in parallel and applies the merged
// list. An empty merge result keeps the previous snapshot: a sheet outage
// must never blank the storefront.
func (s *Syncer) syncProducts(ctx context.Context, images *sheets.ImageIndex) error {
	results := make([][]domain.Product, len(s.tabs.Products))
	var g errgroup.Group
	for i, tab := range s.tabs.Products {
		g.Go(func() error {
			rows, err := s.client.FetchTab(ctx, tab.GID)
			if err != nil {
				s.log.Warn().Err(err).Str("gid", tab.GID).Msg("product tab fetch failed")
				return err
			}
			results[i] = sheets.MapProducts(rows, tab.GID, tab.Key, images)
			return nil
		})
	}
	err := g.Wait()

	var merged []domain.Product
	for _, list := range results {
		merged = append(merged, list...)
	}
	merged = sheets.DedupeProducts(merged)
	if len(merged) > 0 {
		s.store.SetProducts(merged)
	}
	return err
}

func (s *Syncer) applyTypes(rows []sheets.Row) {
	if list := sheets.MapTypes(rows); len(list) > 0 {
		s.store.SetTypes(list)
	}
}

func (s *Syncer) applyLevels(rows []sheets.Row) {
	if list := sheets.MapLevels(rows); len(list) > 0 {
		s.store.SetLevels(list)
	}
}

func (s *Syncer) applySizes(rows []sheets.Row) {
	if list := sheets.MapSizes(rows); len(list) > 0 {
		s.store.SetSizes(list)
	}
}

func (s *Syncer) applyCategories(rows []sheets.Row) {
	if list := sheets.MapCategories(rows); len(list) > 0 {
		s.store.SetCategories(list)
	}
}

func (s *Syncer) applyTags(rows []sheets.Row) {
	if list := sheets.MapTags(rows); len(list) > 0 {
		s.store.SetTags(list)
	}
}

func (s *Syncer) applyMenu(rows []sheets.Row) {
	if list := sheets.MapMenu(rows); len(list) > 0 {
		s.store.SetMenu(list)
	}
}

func (s *Syncer) applyPages(rows []sheets.Row) {
	if list := sheets.MapPages(rows); len(list) > 0 {
		s.store.SetPages(list)
	}
}

func (s *Syncer) applyAnnouncements(rows []sheets.Row) {
	// Announcements may legitimately be emptied, so zero rows still apply.
	s.store.SetAnnouncements(sheets.MapAnnouncements(rows))
}
