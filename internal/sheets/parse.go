package sheets

import (
	"encoding/json"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/camly/storefront/internal/domain"
	"github.com/camly/storefront/internal/pricing"
	"github.com/camly/storefront/internal/vntext"
	"github.com/google/uuid"
)

// columnAliases maps the Vietnamese column names the sheet editors actually
// type to canonical field names. Keys are already normalized.
var columnAliases = map[string]string{
	"ten":           "name",
	"ten_banh":      "name",
	"ten_san_pham":  "name",
	"gia":           "price",
	"gia_ban":       "price",
	"hinh":          "images",
	"hinh_anh":      "images",
	"hinhanh":       "images",
	"anh":           "images",
	"mo_ta":         "description",
	"mota":          "description",
	"loai":          "type",
	"danh_muc":      "category",
	"danhmuc":       "category",
	"nhan":          "tags",
	"the":           "tags",
	"kich_thuoc":    "sizes",
	"size":          "sizes",
	"gia_theo_size": "pricebysize",
	"noi_dung":      "body",
	"tieu_de":       "title",
	"thu_tu":        "order",
	"stt":           "order",
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// CanonicalColumn folds a header cell to its canonical field name:
// diacritics stripped, lowercased, word runs joined by "_", then passed
// through the alias table. "Tên Bánh" and "name" land on the same key.
func CanonicalColumn(s string) string {
	s = vntext.Fold(strings.TrimSpace(s))
	s = strings.Trim(nonAlnum.ReplaceAllString(s, "_"), "_")
	if canon, ok := columnAliases[s]; ok {
		return canon
	}
	return s
}

// get returns the first non-empty value among the named columns.
func (r Row) get(names ...string) string {
	for _, n := range names {
		if v, ok := r[n]; ok && v != "" {
			return v
		}
	}
	return ""
}

var flagPattern = regexp.MustCompile(`(?i)^(1|true|yes|x|co)$`)

// parseFlag accepts the truthy spellings sheet editors use.
func parseFlag(s string) bool {
	return flagPattern.MatchString(strings.TrimSpace(s))
}

// listSeparators deliberately excludes "/" and "|": URLs carry slashes and
// the size-code syntax uses "|" for label overrides.
var listSeparators = regexp.MustCompile(`[,;\n]+`)

func splitList(s string) []string {
	var out []string
	for _, part := range listSeparators.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var nonPriceChars = regexp.MustCompile(`[^0-9.]`)

// parseFlatPrice reads a plain VND amount, tolerating thousand separators
// and currency suffixes. Non-positive or unparseable values mean "no price".
func parseFlatPrice(s string) float64 {
	cleaned := nonPriceChars.ReplaceAllString(s, "")
	// "300.000" is three hundred thousand, not a decimal.
	if strings.Count(cleaned, ".") > 0 {
		if i := strings.LastIndex(cleaned, "."); len(cleaned)-i-1 == 3 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v <= 0 {
		return 0
	}
	return v
}

var (
	matrixSizeLine = regexp.MustCompile(`(\d{1,2})\s*[x×]\s*(\d{1,2})\s*[x×]\s*(\d{1,2})\s*cm`)
	roundSizeLine  = regexp.MustCompile(`(\d{1,2})\s*cm`)
	priceWithUnit  = regexp.MustCompile(`([\d\.]+)\s*(k|nghìn|nghin|ngàn|ngan|tr|triệu|trieu)?\b`)
	priceLineSplit = regexp.MustCompile(`[\n,;]+`)
)

// ParsePriceBySize reads a per-size price cell. A JSON object is taken as-is
// with keys normalized; otherwise the cell is parsed as free-form Vietnamese
// lines like "20x20x3cm: 300k" or "12cm: 150.000", one price per line.
func ParsePriceBySize(s string) domain.SizePrices {
	out := domain.NewSizePrices()
	s = strings.TrimSpace(s)
	if s == "" {
		return out
	}

	if strings.HasPrefix(s, "{") {
		var raw domain.SizePrices
		if err := json.Unmarshal([]byte(s), &raw); err == nil {
			for _, k := range raw.Keys() {
				v, _ := raw.Get(k)
				if v > 0 {
					out.Set(pricing.NormalizeKey(k), v)
				}
			}
			return out
		}
	}

	for _, line := range priceLineSplit.Split(s, -1) {
		line = strings.ToLower(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		line = strings.ReplaceAll(line, "×", "x")

		var key string
		var rest string
		if m := matrixSizeLine.FindStringSubmatchIndex(line); m != nil {
			sub := matrixSizeLine.FindStringSubmatch(line)
			key = sub[1] + "x" + sub[2] + "-" + sub[3]
			rest = line[m[1]:]
		} else if m := roundSizeLine.FindStringSubmatchIndex(line); m != nil {
			sub := roundSizeLine.FindStringSubmatch(line)
			key = sub[1] + "-0"
			rest = line[m[1]:]
		} else {
			continue
		}

		if _, after, ok := strings.Cut(rest, ":"); ok {
			rest = after
		}
		price := parseVNDText(rest)
		if price > 0 {
			out.Set(key, price)
		}
	}
	return out
}

// parseVNDText reads an amount with an optional Vietnamese unit suffix:
// "300k" and "300 nghìn" are 300000, "1.5tr" is 1500000.
func parseVNDText(s string) float64 {
	m := priceWithUnit.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	num := m[1]
	unit := m[2]

	var v float64
	var err error
	switch unit {
	case "k", "nghìn", "nghin", "ngàn", "ngan":
		v, err = strconv.ParseFloat(num, 64)
		v *= 1000
	case "tr", "triệu", "trieu":
		v, err = strconv.ParseFloat(num, 64)
		v *= 1_000_000
	default:
		v = parseFlatPrice(num)
	}
	if err != nil || v <= 0 {
		return 0
	}
	return v
}

// ParseSizeCodes reads a type's size declaration: a JSON array of
// {key,label} objects, or a delimited list of "code@height|label" entries
// where the label part is optional.
func ParseSizeCodes(s string) []domain.SizeRef {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var refs []domain.SizeRef
		if err := json.Unmarshal([]byte(s), &refs); err == nil {
			for i := range refs {
				refs[i].Key = pricing.NormalizeKey(refs[i].Key)
				if refs[i].Label == "" {
					refs[i].Label = pricing.LabelForKey(refs[i].Key)
				}
			}
			return refs
		}
	}

	var out []domain.SizeRef
	for _, entry := range splitList(s) {
		spec, override, hasOverride := strings.Cut(entry, "|")
		key := pricing.KeyFromSizeSpec(spec)
		label := pricing.LabelForKey(key)
		if hasOverride {
			override = strings.TrimSpace(override)
			if override != "" {
				if !strings.HasPrefix(strings.ToLower(override), "size") {
					override = "Size " + override
				}
				label = override
			}
		}
		out = append(out, domain.SizeRef{Key: key, Label: label})
	}
	return out
}

// StableID derives a product id that survives re-syncs: the explicit id
// column suffixed with the tab gid, else a name slug plus gid, else a
// random id for nameless rows.
func StableID(rawID, name, gid string) string {
	if rawID = strings.TrimSpace(rawID); rawID != "" {
		return rawID + "__" + gid
	}
	if slug := vntext.Slugify(name); slug != "" {
		return slug + "-" + gid
	}
	return uuid.NewString()
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// parseDateMillis reads a date cell to unix millis; zero when unparseable.
func parseDateMillis(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

// MapProducts converts one product tab's rows. tabKey is the category this
// tab feeds when a row has no category of its own; images is an optional
// Drive-derived fallback index keyed by product name.
func MapProducts(rows []Row, tabGID, tabKey string, images *ImageIndex) []domain.Product {
	var out []domain.Product
	for _, r := range rows {
		name := r.get("name")
		if name == "" {
			continue
		}

		category := r.get("category")
		if category == "" {
			category = tabKey
		}

		p := domain.Product{
			ID:          StableID(r.get("id"), name, tabGID),
			Name:        name,
			Category:    category,
			TypeID:      r.get("typeid", "type"),
			Tags:        splitList(r.get("tags")),
			Banner:      parseFlag(r.get("banner", "featured")),
			Price:       parseFlatPrice(r.get("price")),
			Sizes:       splitList(r.get("sizes")),
			PriceBySize: ParsePriceBySize(r.get("pricebysize")),
			Description: r.get("description"),
			Level:       strings.TrimSpace(r.get("level")),
			CreatedAt:   parseDateMillis(r.get("createdat", "created", "date")),
		}

		for _, u := range splitList(r.get("images")) {
			if normalized := NormalizeImageURL(u); normalized != "" {
				p.Images = append(p.Images, normalized)
			}
		}
		if len(p.Images) == 0 && images != nil {
			p.Images = images.Lookup(name)
		}

		if v := r.get("instock", "stock"); v != "" {
			b := parseFlag(v)
			p.InStock = &b
		}
		if v := r.get("order"); v != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				p.Order = &n
			}
		}
		if v := r.get("popular"); v != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				p.Popular = n
			}
		}

		out = append(out, p)
	}
	return out
}

// DedupeProducts keeps the first occurrence of each id across tabs.
func DedupeProducts(list []domain.Product) []domain.Product {
	seen := make(map[string]bool, len(list))
	out := make([]domain.Product, 0, len(list))
	for _, p := range list {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// MapSizes converts the global size tab. Entries sort by code with numeric
// awareness, then by height, so "6", "10x10-0", "10x10-3" come out in a
// sensible display order.
func MapSizes(rows []Row) []domain.Size {
	var out []domain.Size
	for _, r := range rows {
		codeSpec := r.get("code", "sizes", "key")
		if codeSpec == "" {
			continue
		}
		key := pricing.KeyFromSizeSpec(codeSpec)
		code := key
		height := 0
		if i := strings.LastIndex(key, "-"); i > 0 {
			code = key[:i]
			height, _ = strconv.Atoi(key[i+1:])
		}
		label := r.get("label", "title")
		if label == "" {
			label = pricing.LabelForKey(key)
		}
		id := r.get("id")
		if id == "" {
			id = key
		}
		out = append(out, domain.Size{ID: id, Code: code, Label: label, Height: height, Key: key})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := vntext.Compare(out[i].Code, out[j].Code); c != 0 {
			return c < 0
		}
		return out[i].Height < out[j].Height
	})
	return out
}

// MapTypes converts the pricing-scheme tab, ordered by the order column.
func MapTypes(rows []Row) []domain.ProductType {
	var out []domain.ProductType
	for _, r := range rows {
		id := r.get("id", "key", "code")
		if id == "" {
			continue
		}
		t := domain.ProductType{
			ID:       id,
			Code:     r.get("code"),
			Name:     r.get("name", "title"),
			Sizes:    ParseSizeCodes(r.get("sizes")),
			SchemeID: r.get("schemeid", "scheme"),
		}
		if v := r.get("order"); v != "" {
			t.Order, _ = strconv.Atoi(strings.TrimSpace(v))
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// MapLevels converts the base-price tab. The prices column is a JSON object
// whose textual key order is preserved.
func MapLevels(rows []Row) []domain.PriceLevel {
	var out []domain.PriceLevel
	for _, r := range rows {
		id := r.get("id", "key", "name")
		if id == "" {
			continue
		}
		var prices domain.SizePrices
		if raw := r.get("prices", "pricebysize"); raw != "" {
			prices = ParsePriceBySize(raw)
		}
		out = append(out, domain.PriceLevel{
			ID:       id,
			Name:     r.get("name", "title"),
			SchemeID: r.get("schemeid", "scheme"),
			Prices:   prices,
		})
	}
	return out
}

// MapCategories converts the categories tab.
func MapCategories(rows []Row) []domain.Category {
	var out []domain.Category
	for _, r := range rows {
		title := r.get("title", "name")
		key := r.get("key", "id")
		if key == "" {
			key = vntext.Slugify(title)
		}
		if key == "" {
			continue
		}
		if title == "" {
			title = key
		}
		out = append(out, domain.Category{Key: key, Title: title})
	}
	return out
}

// MapTags converts the tags tab.
func MapTags(rows []Row) []domain.Tag {
	var out []domain.Tag
	for _, r := range rows {
		label := r.get("label", "name", "title")
		if label == "" {
			continue
		}
		id := r.get("id", "key")
		if id == "" {
			id = vntext.Slugify(label)
		}
		out = append(out, domain.Tag{ID: id, Label: label})
	}
	return out
}

// MapMenu converts the navigation tab to flat rows; the tree is assembled
// by the catalog.
func MapMenu(rows []Row) []domain.MenuItem {
	var out []domain.MenuItem
	for _, r := range rows {
		key := r.get("key", "id")
		if key == "" {
			continue
		}
		item := domain.MenuItem{
			Key:    key,
			Title:  r.get("title", "name"),
			Parent: r.get("parent"),
		}
		if item.Title == "" {
			item.Title = key
		}
		if v := r.get("order"); v != "" {
			item.Order, _ = strconv.Atoi(strings.TrimSpace(v))
		}
		out = append(out, item)
	}
	return out
}

// MapPages converts the content-pages tab.
func MapPages(rows []Row) []domain.Page {
	var out []domain.Page
	for _, r := range rows {
		key := r.get("key", "id")
		if key == "" {
			continue
		}
		out = append(out, domain.Page{
			Key:   key,
			Title: r.get("title", "name"),
			Body:  r.get("body", "content"),
		})
	}
	return out
}

// MapAnnouncements converts the ticker tab: inactive and empty rows are
// dropped here, the time window is checked at serve time.
func MapAnnouncements(rows []Row) []domain.Announcement {
	var out []domain.Announcement
	for _, r := range rows {
		text := r.get("text", "title", "body")
		if text == "" {
			continue
		}
		a := domain.Announcement{
			Text:   text,
			Active: true,
			Start:  parseDateMillis(r.get("start", "from")),
			End:    parseDateMillis(r.get("end", "to")),
		}
		if v := r.get("active", "enabled"); v != "" {
			a.Active = parseFlag(v)
		}
		if !a.Active {
			continue
		}
		if v := r.get("order"); v != "" {
			a.Order, _ = strconv.Atoi(strings.TrimSpace(v))
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

var driveFilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`drive\.google\.com/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`drive\.google\.com/open\?id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`drive\.google\.com/uc\?(?:export=\w+&)?id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`drive\.google\.com/thumbnail\?id=([a-zA-Z0-9_-]+)`),
}

// NormalizeImageURL rewrites Drive share links to the thumbnail endpoint,
// which serves images directly and at a bounded resolution. Other http(s)
// URLs pass through with spaces escaped; anything else is dropped.
func NormalizeImageURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, pat := range driveFilePatterns {
		if m := pat.FindStringSubmatch(raw); m != nil {
			return DriveThumbnailURL(m[1])
		}
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		if u, err := url.Parse(raw); err == nil {
			return u.String()
		}
		return strings.ReplaceAll(raw, " ", "%20")
	}
	return ""
}

// DriveThumbnailURL is the direct-image endpoint for a Drive file id.
func DriveThumbnailURL(fileID string) string {
	return "https://drive.google.com/thumbnail?id=" + url.QueryEscape(fileID) + "&sz=w2048"
}
