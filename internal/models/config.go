package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SitemapConfig holds the settings of one sitemap document
type SitemapConfig struct {
	Include  []string    `json:"include"`
	Exclude  []string    `json:"exclude"`
	Defaults EntryFields `json:"defaults"`
	URLs     []URLInput  `json:"urls"`
}

type SitemapsMode int

const (
	SingleSitemap SitemapsMode = iota
	AutoSitemaps
	NamedSitemaps
)

// Sitemaps is either false (single sitemap), true (automatic partitioning)
// or an ordered name -> config mapping.
type Sitemaps struct {
	Auto    bool                     `json:"auto"`
	Names   []string                 `json:"names"`
	Configs map[string]SitemapConfig `json:"configs"`
}

// Mode tells which multi-sitemap mode is active
func (s Sitemaps) Mode() SitemapsMode {
	switch {
	case len(s.Names) > 0:
		return NamedSitemaps
	case s.Auto:
		return AutoSitemaps
	default:
		return SingleSitemap
	}
}

// UnmarshalJSON decodes `true`, `false` or an object, keeping the key order
func (s *Sitemaps) UnmarshalJSON(b []byte) error {

	*s = Sitemaps{}
	trimmed := bytes.TrimSpace(b)

	switch string(trimmed) {
	case "", "null", "false":
		return nil
	case "true":
		s.Auto = true
		return nil
	}

	s.Configs = make(map[string]SitemapConfig)
	return decodeOrderedObject(trimmed, func(name string, dec *json.Decoder) error {
		var cfg SitemapConfig
		if err := dec.Decode(&cfg); err != nil {
			return fmt.Errorf("invalid config for sitemap '%s'; %w", name, err)
		}
		if _, ok := s.Configs[name]; !ok {
			s.Names = append(s.Names, name)
		}
		s.Configs[name] = cfg
		return nil
	})
}

// RouteRule attaches sitemap fields to a routing pattern.
// Index set to false removes matching paths from every sitemap.
type RouteRule struct {
	Pattern string       `json:"pattern"`
	Index   *bool        `json:"index,omitempty"`
	Sitemap *EntryFields `json:"sitemap,omitempty"`
}

// Excludes reports whether the rule removes its paths from the sitemap
func (r RouteRule) Excludes() bool {
	return r.Index != nil && !*r.Index
}

type RouteRules []RouteRule

// UnmarshalJSON decodes a pattern -> rule object, keeping declaration order
func (rr *RouteRules) UnmarshalJSON(b []byte) error {

	*rr = nil
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}

	return decodeOrderedObject(trimmed, func(pattern string, dec *json.Decoder) error {
		var rule RouteRule
		if err := dec.Decode(&rule); err != nil {
			return fmt.Errorf("invalid route rule '%s'; %w", pattern, err)
		}
		rule.Pattern = pattern
		*rr = append(*rr, rule)
		return nil
	})
}

// decodeOrderedObject walks the keys of a JSON object in document order
func decodeOrderedObject(b []byte, decodeValue func(key string, dec *json.Decoder) error) error {

	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("expected a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}

		if err := decodeValue(key, dec); err != nil {
			return err
		}
	}

	_, err = dec.Token()
	return err
}
