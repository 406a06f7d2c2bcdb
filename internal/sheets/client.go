// Package sheets fetches and decodes the spreadsheet tabs that make up the
// catalog. Tabs are read through the public GViz JSON endpoint with a CSV
// export fallback, or through the Sheets API when an API key is configured.
package sheets

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/camly/storefront/internal/cache"
	"github.com/camly/storefront/internal/domain"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Row is one sheet row keyed by normalized column name.
type Row map[string]string

// Tab identifies one spreadsheet tab and the catalog section it feeds.
type Tab struct {
	GID string
	Key string
}

// ParseTabs decodes a "gid:key" list separated by commas or newlines, e.g.
// "0:banh-kem,123456:banh-ngot". A bare gid gets an empty key.
func ParseTabs(raw string) []Tab {
	var out []Tab
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' }) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		gid, key, _ := strings.Cut(part, ":")
		out = append(out, Tab{GID: strings.TrimSpace(gid), Key: strings.TrimSpace(key)})
	}
	return out
}

// Client reads tabs of a single spreadsheet.
type Client struct {
	http    *http.Client
	log     zerolog.Logger
	sheetID string

	fetchCache *cache.Cache
	fetchTTL   time.Duration

	svc *sheetsapi.Service
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for the public endpoints.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithFetchCache caches raw tab responses for ttl, serving stale data when
// the spreadsheet is unreachable.
func WithFetchCache(fc *cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.fetchCache = fc
		c.fetchTTL = ttl
	}
}

// NewClient returns a client for one spreadsheet id.
func NewClient(sheetID string, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("component", "sheets").Logger(),
		sheetID: sheetID,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// UseAPI switches the client to the Sheets API for tabs addressed by title.
func (c *Client) UseAPI(ctx context.Context, apiKey string) error {
	svc, err := sheetsapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return domain.Unavailable(err, "sheets.UseAPI", "sheets api init failed")
	}
	c.svc = svc
	return nil
}

// FetchTab reads one tab by gid: GViz JSON first, CSV export as fallback.
func (c *Client) FetchTab(ctx context.Context, gid string) ([]Row, error) {
	rows, gvizErr := c.fetchGviz(ctx, gid)
	if gvizErr == nil {
		return rows, nil
	}
	c.log.Warn().Err(gvizErr).Str("gid", gid).Msg("gviz fetch failed, falling back to csv")
	rows, csvErr := c.fetchCSV(ctx, gid)
	if csvErr == nil {
		return rows, nil
	}
	return nil, domain.Unavailable(csvErr, "sheets.FetchTab", "tab "+gid+" unreachable")
}

// FetchTitle reads one tab by sheet title through the Sheets API.
func (c *Client) FetchTitle(ctx context.Context, title string) ([]Row, error) {
	if c.svc == nil {
		return nil, domain.Invalid("sheets.FetchTitle", "sheets api not configured")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.sheetID, "'"+title+"'").Context(ctx).Do()
	if err != nil {
		return nil, domain.Unavailable(err, "sheets.FetchTitle", "tab "+title+" unreachable")
	}
	var records [][]string
	for _, row := range resp.Values {
		rec := make([]string, 0, len(row))
		for _, cell := range row {
			rec = append(rec, apiCellString(cell))
		}
		records = append(records, rec)
	}
	return recordsToRows(records), nil
}

var gvizWrapper = regexp.MustCompile(`(?s)google\.visualization\.Query\.setResponse\((.*)\)\s*;?\s*$`)

func (c *Client) fetchGviz(ctx context.Context, gid string) ([]Row, error) {
	url := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:json&gid=%s", c.sheetID, gid)
	body, err := c.fetchText(ctx, url)
	if err != nil {
		return nil, err
	}

	payload := body
	if m := gvizWrapper.FindStringSubmatch(body); m != nil {
		payload = m[1]
	} else if i, j := strings.Index(body, "{"), strings.LastIndex(body, "}"); i >= 0 && j > i {
		payload = body[i : j+1]
	}

	var resp gvizResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, fmt.Errorf("gviz decode: %w", err)
	}

	cols := make([]string, len(resp.Table.Cols))
	for i, col := range resp.Table.Cols {
		name := col.Label
		if name == "" {
			name = col.ID
		}
		cols[i] = CanonicalColumn(name)
	}

	var rows []Row
	for _, r := range resp.Table.Rows {
		row := Row{}
		empty := true
		for i, cell := range r.C {
			if i >= len(cols) || cols[i] == "" || cell == nil {
				continue
			}
			v := gvizCellString(cell)
			if v == "" {
				continue
			}
			row[cols[i]] = v
			empty = false
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type gvizResponse struct {
	Table struct {
		Cols []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
		} `json:"cols"`
		Rows []struct {
			C []*gvizCell `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

type gvizCell struct {
	V any    `json:"v"`
	F string `json:"f"`
}

// gvizCellString prefers the raw value and keeps the formatted string for
// types the raw value mangles, like dates serialized as "Date(2024,0,15)".
func gvizCellString(c *gvizCell) string {
	switch v := c.V.(type) {
	case nil:
		return ""
	case string:
		if strings.HasPrefix(v, "Date(") && c.F != "" {
			return strings.TrimSpace(c.F)
		}
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func apiCellString(cell any) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (c *Client) fetchCSV(ctx context.Context, gid string) ([]Row, error) {
	url := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=%s", c.sheetID, gid)
	body, err := c.fetchText(ctx, url)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(strings.NewReader(body))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv decode: %w", err)
	}
	return recordsToRows(records), nil
}

// recordsToRows treats the first record as the header and keys every
// following record by normalized column name.
func recordsToRows(records [][]string) []Row {
	if len(records) == 0 {
		return nil
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = CanonicalColumn(h)
	}
	var rows []Row
	for _, rec := range records[1:] {
		row := Row{}
		empty := true
		for i, cell := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			row[header[i]] = cell
			empty = false
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}

// fetchText GETs url through the TTL cache. A live fetch refreshes the
// cache; a failed fetch falls back to any cached body regardless of age.
func (c *Client) fetchText(ctx context.Context, url string) (string, error) {
	if c.fetchCache != nil {
		if body, ok := c.fetchCache.ReadFetch(url, c.fetchTTL); ok {
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := c.http.Do(req)
	if err != nil {
		return c.staleOr(url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.staleOr(url, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 20<<20))
	if err != nil {
		return c.staleOr(url, err)
	}

	body := strings.TrimPrefix(string(data), "\ufeff")
	if c.fetchCache != nil {
		c.fetchCache.WriteFetch(url, body)
	}
	return body, nil
}

func (c *Client) staleOr(url string, err error) (string, error) {
	if c.fetchCache != nil {
		if body, ok := c.fetchCache.ReadFetch(url, 0); ok {
			c.log.Warn().Err(err).Msg("serving stale sheet response")
			return body, nil
		}
	}
	return "", err
}
