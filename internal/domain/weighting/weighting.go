package weighting

import (
	"fmt"
	"math"
	"sort"
)

// MetaMode controls whether metadata fields are weighted automatically or by hand.
type MetaMode string

const (
	// MetaModeAuto weights metadata automatically.
	MetaModeAuto MetaMode = "auto"
	// MetaModeManual exposes metadata fields for manual weighting.
	MetaModeManual MetaMode = "manual"
)

// IsValid checks the mode is one of the known values.
func (m MetaMode) IsValid() bool {
	return m == MetaModeAuto || m == MetaModeManual
}

// ParseMetaMode parses a mode. Empty input defaults to auto.
func ParseMetaMode(s string) (MetaMode, error) {
	if s == "" {
		return MetaModeAuto, nil
	}
	m := MetaMode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("meta mode must be %q or %q, got %q", MetaModeAuto, MetaModeManual, s)
	}
	return m, nil
}

// FieldWeight is the relevance weight of one field and whether it is searched.
type FieldWeight struct {
	Enabled bool    `json:"enabled"`
	Weight  float64 `json:"weight"`
}

// Fields maps a field key (post_title, terms.category.name, meta.color.value) to its weight.
type Fields map[string]FieldWeight

// Configuration maps a post type to its field weights.
type Configuration map[string]Fields

// Clone returns a deep copy.
func (c Configuration) Clone() Configuration {
	if c == nil {
		return nil
	}
	out := make(Configuration, len(c))
	for pt, fields := range c {
		out[pt] = fields.Clone()
	}
	return out
}

// Clone returns a copy of the field map.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Equal compares two field maps. Nil and empty are equal.
func (f Fields) Equal(o Fields) bool {
	if len(f) != len(o) {
		return false
	}
	for k, v := range f {
		ov, ok := o[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Equal compares two configurations structurally. Nil and empty are equal.
func (c Configuration) Equal(o Configuration) bool {
	if len(c) != len(o) {
		return false
	}
	for pt, fields := range c {
		ofields, ok := o[pt]
		if !ok || !fields.Equal(ofields) {
			return false
		}
	}
	return true
}

// PostTypes returns the configured post types in sorted order.
func (c Configuration) PostTypes() []string {
	out := make([]string, 0, len(c))
	for pt := range c {
		out = append(out, pt)
	}
	sort.Strings(out)
	return out
}

// Normalize returns a copy where every catalog field has an entry, filled
// with the catalog default when absent. Post types unknown to the catalog
// are dropped.
func (c Configuration) Normalize(cat Catalog) Configuration {
	out := make(Configuration, len(cat))
	for pt, def := range cat {
		fields := c[pt].Clone()
		if fields == nil {
			fields = make(Fields)
		}
		for _, g := range def.Groups {
			for _, f := range g.Fields {
				if _, ok := fields[f.Key]; !ok {
					fields[f.Key] = f.Default
				}
			}
		}
		out[pt] = fields
	}
	return out
}

// Validate checks the whole configuration against the catalog.
// It reports the first violation in post type / field order.
func (c Configuration) Validate(cat Catalog) error {
	for _, pt := range c.PostTypes() {
		if !cat.Has(pt) {
			return fmt.Errorf("unknown post type %q", pt)
		}
		fields := c[pt]
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if k == "" {
				return fmt.Errorf("%s: empty field key", pt)
			}
			w := fields[k].Weight
			if math.IsNaN(w) || math.IsInf(w, 0) {
				return fmt.Errorf("%s.%s: weight must be a finite number", pt, k)
			}
			if w < 0 {
				return fmt.Errorf("%s.%s: weight must be non-negative, got %v", pt, k, w)
			}
		}
	}
	return nil
}

// Settings is the unit persisted and exchanged with the editor.
// MetaMode travels next to the configuration, not inside it.
type Settings struct {
	MetaMode  MetaMode      `json:"meta_mode"`
	Weighting Configuration `json:"weighting_configuration"`
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	return Settings{MetaMode: s.MetaMode, Weighting: s.Weighting.Clone()}
}

// Equal compares mode and configuration.
func (s Settings) Equal(o Settings) bool {
	return s.MetaMode == o.MetaMode && s.Weighting.Equal(o.Weighting)
}

// Validate checks mode and configuration.
func (s Settings) Validate(cat Catalog) error {
	if !s.MetaMode.IsValid() {
		return fmt.Errorf("invalid meta mode %q", s.MetaMode)
	}
	return s.Weighting.Validate(cat)
}

// Normalize fills catalog defaults and defaults an empty mode to auto.
func (s Settings) Normalize(cat Catalog) Settings {
	mode := s.MetaMode
	if mode == "" {
		mode = MetaModeAuto
	}
	return Settings{MetaMode: mode, Weighting: s.Weighting.Normalize(cat)}
}
