package sitemap

import (
	"log"
	"reflect"
	"slices"
	"time"

	"github.com/vlatan/sitemap-builder/internal/models"
)

// EntrySources are the inputs of one sitemap entry, lowest precedence first
type EntrySources struct {
	Defaults models.EntryFields
	URL      models.EntryFields
	Rule     models.EntryFields

	// Lastmod discovered outside of configuration (e.g. file timestamps),
	// only consulted when automatic lastmod is enabled
	Discovered *time.Time
}

// BuildEntry resolves the entry for a loc.
// Per field the merged route rule wins over the URL's own fields,
// which win over the sitemap defaults. Lastmod is the most recent
// value any source supplied and is omitted when none did.
func BuildEntry(loc string, src EntrySources) models.SitemapEntry {

	fields := MergeFields(src.URL, src.Rule)
	fields.Lastmod = latest(fields.Lastmod, src.Discovered)

	if fields.Lastmod == nil {
		fields.Lastmod = src.Defaults.Lastmod
	}

	if fields.ChangeFreq == "" {
		fields.ChangeFreq = src.Defaults.ChangeFreq
	}

	if fields.Priority == nil {
		fields.Priority = src.Defaults.Priority
	}

	if fields.Alternates == nil {
		fields.Alternates = src.Defaults.Alternates
	}

	if fields.Images == nil {
		fields.Images = src.Defaults.Images
	}

	if fields.Videos == nil {
		fields.Videos = src.Defaults.Videos
	}

	entry := models.SitemapEntry{
		Loc:        loc,
		Lastmod:    fields.Lastmod,
		Alternates: fields.Alternates,
		Images:     fields.Images,
		Videos:     fields.Videos,
	}

	if fields.ChangeFreq != "" {
		if fields.ChangeFreq.Valid() {
			entry.ChangeFreq = fields.ChangeFreq
		} else {
			log.Printf("Dropping unknown changefreq '%s' on '%s'", fields.ChangeFreq, loc)
		}
	}

	if fields.Priority != nil {
		p := min(max(*fields.Priority, 0), 1)
		entry.Priority = &p
	}

	return entry
}

// mergeDuplicate folds a later entry with the same loc into the first one.
// The first entry keeps its scalar values; the later one fills what is missing
// and contributes its lastmod if more recent. List fields are concatenated,
// skipping items the first entry already carries.
func mergeDuplicate(first, later models.SitemapEntry) models.SitemapEntry {

	first.Lastmod = latest(first.Lastmod, later.Lastmod)

	if first.ChangeFreq == "" {
		first.ChangeFreq = later.ChangeFreq
	}

	if first.Priority == nil {
		first.Priority = later.Priority
	}

	first.Alternates = appendMissing(first.Alternates, later.Alternates)
	first.Images = appendMissing(first.Images, later.Images)
	first.Videos = appendMissing(first.Videos, later.Videos)

	return first
}

// appendMissing appends the items of add not already present in acc.
// Discovered images are overlaid on every occurrence of a loc,
// so the same item can reach both entries.
func appendMissing[T any](acc, add []T) []T {

	out := slices.Clip(acc)
	for _, item := range add {
		if !slices.ContainsFunc(acc, func(have T) bool { return reflect.DeepEqual(have, item) }) {
			out = append(out, item)
		}
	}

	return out
}
