package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SizePrices is an insertion-ordered map from size key to price. The pricing
// resolver walks candidate keys in the order the sheet declared them, so the
// order has to survive parsing, caching and re-resolution.
type SizePrices struct {
	keys   []string
	values map[string]float64
}

// NewSizePrices returns an empty SizePrices.
func NewSizePrices() SizePrices {
	return SizePrices{values: map[string]float64{}}
}

// Set inserts or replaces a price. First insertion fixes the key's position.
func (p *SizePrices) Set(key string, price float64) {
	if p.values == nil {
		p.values = map[string]float64{}
	}
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = price
}

// Get returns the price for key and whether it exists.
func (p SizePrices) Get(key string) (float64, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (p SizePrices) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len returns the number of entries.
func (p SizePrices) Len() int { return len(p.keys) }

// Values returns the prices in key insertion order.
func (p SizePrices) Values() []float64 {
	out := make([]float64, 0, len(p.keys))
	for _, k := range p.keys {
		out = append(out, p.values[k])
	}
	return out
}

// MarshalJSON encodes as a JSON object in insertion order.
func (p SizePrices) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving its textual key order.
func (p *SizePrices) UnmarshalJSON(data []byte) error {
	*p = NewSizePrices()
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("sizeprices: expected object, got %v", tok)
	}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("sizeprices: non-string key %v", kt)
		}
		var v float64
		if err := dec.Decode(&v); err != nil {
			return err
		}
		p.Set(key, v)
	}
	_, err = dec.Token() // closing brace
	return err
}
