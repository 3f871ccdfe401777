package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type ChangeFreq string

const (
	Always  ChangeFreq = "always"
	Hourly  ChangeFreq = "hourly"
	Daily   ChangeFreq = "daily"
	Weekly  ChangeFreq = "weekly"
	Monthly ChangeFreq = "monthly"
	Yearly  ChangeFreq = "yearly"
	Never   ChangeFreq = "never"
)

// Valid reports whether the change frequency is one the protocol knows about
func (c ChangeFreq) Valid() bool {
	switch c {
	case Always, Hourly, Daily, Weekly, Monthly, Yearly, Never:
		return true
	}
	return false
}

// Alternate is a translated version of a URL (xhtml:link)
type Alternate struct {
	Hreflang string `json:"hreflang"`
	Href     string `json:"href"`
}

// Image is one image:image record
type Image struct {
	Loc         string `json:"loc"`
	Caption     string `json:"caption,omitempty"`
	GeoLocation string `json:"geoLocation,omitempty"`
	Title       string `json:"title,omitempty"`
	License     string `json:"license,omitempty"`
}

// Video is one video:video record
type Video struct {
	ThumbnailLoc         string     `json:"thumbnail_loc"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	ContentLoc           string     `json:"content_loc,omitempty"`
	PlayerLoc            string     `json:"player_loc,omitempty"`
	Duration             int        `json:"duration,omitempty"`
	ExpirationDate       *time.Time `json:"expiration_date,omitempty"`
	Rating               *float64   `json:"rating,omitempty"`
	ViewCount            *int       `json:"view_count,omitempty"`
	PublicationDate      *time.Time `json:"publication_date,omitempty"`
	FamilyFriendly       *bool      `json:"family_friendly,omitempty"`
	RequiresSubscription *bool      `json:"requires_subscription,omitempty"`
	Live                 *bool      `json:"live,omitempty"`
	Tags                 []string   `json:"tag,omitempty"`
	Uploader             string     `json:"uploader,omitempty"`
}

// EntryFields is the partial, optional part of a sitemap entry.
// It is what defaults, URL inputs and route rules contribute.
// A nil slice means "not set", a non-nil empty slice clears
// whatever lower precedence sources accumulated.
type EntryFields struct {
	Lastmod    *time.Time  `json:"lastmod,omitempty"`
	ChangeFreq ChangeFreq  `json:"changefreq,omitempty"`
	Priority   *float64    `json:"priority,omitempty"`
	Alternates []Alternate `json:"alternatives"`
	Images     []Image     `json:"images"`
	Videos     []Video     `json:"videos"`

	// Sitemap tags the entry for automatic partitioning
	Sitemap string `json:"sitemap,omitempty"`
}

// SitemapEntry is one fully resolved <url> record
type SitemapEntry struct {
	Loc        string
	Lastmod    *time.Time
	ChangeFreq ChangeFreq
	Priority   *float64
	Alternates []Alternate
	Images     []Image
	Videos     []Video
}

// URLInput is a candidate URL, with optional per-URL fields
type URLInput struct {
	Path string `json:"loc"`
	EntryFields
}

// IndexEntry is one <sitemap> record in the sitemap index
type IndexEntry struct {
	Name    string
	Loc     string
	Lastmod time.Time
}

// Layouts accepted for lastmod values coming from configuration
var lastmodLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseLastmod parses a W3C datetime, date-only values included
func ParseLastmod(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range lastmodLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized lastmod value '%s'", value)
}

// UnmarshalJSON lets lastmod be written as a plain date
func (f *EntryFields) UnmarshalJSON(b []byte) error {

	type alias EntryFields
	aux := struct {
		*alias
		Lastmod string `json:"lastmod,omitempty"`
	}{alias: (*alias)(f)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	if aux.Lastmod == "" {
		f.Lastmod = nil
		return nil
	}

	t, err := ParseLastmod(aux.Lastmod)
	if err != nil {
		return err
	}

	f.Lastmod = &t
	return nil
}

// UnmarshalJSON accepts either a bare path string
// or an object with a "loc" (or "path") key plus entry fields.
func (u *URLInput) UnmarshalJSON(b []byte) error {

	var path string
	if err := json.Unmarshal(b, &path); err == nil {
		*u = URLInput{Path: path}
		return nil
	}

	var keys struct {
		Loc  string `json:"loc"`
		Path string `json:"path"`
	}

	if err := json.Unmarshal(b, &keys); err != nil {
		return fmt.Errorf("invalid sitemap url; %w", err)
	}

	var fields EntryFields
	if err := json.Unmarshal(b, &fields); err != nil {
		return fmt.Errorf("invalid sitemap url fields; %w", err)
	}

	u.Path = keys.Loc
	if u.Path == "" {
		u.Path = keys.Path
	}
	u.EntryFields = fields

	return nil
}
