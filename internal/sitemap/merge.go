package sitemap

import (
	"slices"
	"time"

	"github.com/vlatan/sitemap-builder/internal/models"
)

// MergeFields layers src over dst and returns the result.
// Scalar fields set in src override dst, lastmod keeps the most recent value,
// list fields are concatenated unless src holds a non-nil empty list,
// which clears them. Neither argument is modified.
func MergeFields(dst, src models.EntryFields) models.EntryFields {

	dst.Lastmod = latest(dst.Lastmod, src.Lastmod)

	if src.ChangeFreq != "" {
		dst.ChangeFreq = src.ChangeFreq
	}

	if src.Priority != nil {
		dst.Priority = src.Priority
	}

	if src.Sitemap != "" {
		dst.Sitemap = src.Sitemap
	}

	dst.Alternates = mergeList(dst.Alternates, src.Alternates)
	dst.Images = mergeList(dst.Images, src.Images)
	dst.Videos = mergeList(dst.Videos, src.Videos)

	return dst
}

func mergeList[T any](acc, add []T) []T {
	switch {
	case add == nil:
		return acc
	case len(add) == 0:
		return []T{}
	default:
		// Clip so that appending never writes into a shared backing array
		return append(slices.Clip(acc), add...)
	}
}

// latest returns the most recent of the timestamps, nil if none is set
func latest(times ...*time.Time) *time.Time {
	var newest *time.Time
	for _, t := range times {
		if t == nil {
			continue
		}
		if newest == nil || t.After(*newest) {
			newest = t
		}
	}
	return newest
}

// Resolver turns the route rules matching a path into one partial entry
type Resolver struct {
	matcher Matcher
}

func NewResolver(matcher Matcher) *Resolver {
	return &Resolver{matcher: matcher}
}

// Resolve merges every matching rule, least specific first.
// The discovered images come last, with lowest precedence:
// an explicit image with the same loc lends them its metadata.
// It reports excluded when any matching rule disables indexing.
func (r *Resolver) Resolve(routePath string, discovered []models.Image) (models.EntryFields, bool) {

	var merged models.EntryFields

	if r.matcher != nil {
		for _, rule := range r.matcher.Match(routePath) {
			if rule.Excludes() {
				return models.EntryFields{}, true
			}
			if rule.Sitemap != nil {
				merged = MergeFields(merged, *rule.Sitemap)
			}
		}
	}

	if len(discovered) == 0 {
		return merged, false
	}

	explicit := make(map[string]models.Image, len(merged.Images))
	for _, img := range merged.Images {
		if _, ok := explicit[img.Loc]; !ok {
			explicit[img.Loc] = img
		}
	}

	images := slices.Clip(merged.Images)
	for _, img := range discovered {
		if known, ok := explicit[img.Loc]; ok {
			img = overlayImage(img, known)
		}
		images = append(images, img)
	}

	merged.Images = images
	return merged, false
}

// overlayImage fills img with the non-empty fields of explicit
func overlayImage(img, explicit models.Image) models.Image {
	if explicit.Caption != "" {
		img.Caption = explicit.Caption
	}
	if explicit.GeoLocation != "" {
		img.GeoLocation = explicit.GeoLocation
	}
	if explicit.Title != "" {
		img.Title = explicit.Title
	}
	if explicit.License != "" {
		img.License = explicit.License
	}
	return img
}
