package sitemap

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vlatan/sitemap-builder/internal/models"
)

const (
	Namespace     = "http://www.sitemaps.org/schemas/sitemap/0.9"
	LastmodLayout = "2006-01-02T15:04:05-07:00"

	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`
	creditComment  = `<!-- XML Sitemap generated by sitemap-builder -->`

	urlsetOpen = `<urlset xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"` +
		` xmlns:video="http://www.google.com/schemas/sitemap-video/1.1"` +
		` xmlns:xhtml="http://www.w3.org/1999/xhtml"` +
		` xmlns:image="http://www.google.com/schemas/sitemap-image/1.1"` +
		` xsi:schemaLocation="http://www.sitemaps.org/schemas/sitemap/0.9` +
		` http://www.sitemaps.org/schemas/sitemap/0.9/sitemap.xsd` +
		` http://www.google.com/schemas/sitemap-image/1.1` +
		` http://www.google.com/schemas/sitemap-image/1.1/sitemap-image.xsd"` +
		` xmlns="` + Namespace + `">`
	urlsetClose = `</urlset>`

	indexOpen  = `<sitemapindex xmlns="` + Namespace + `">`
	indexClose = `</sitemapindex>`
)

// RenderOptions controls the document wrapping.
// An empty StylesheetURL means no stylesheet instruction.
type RenderOptions struct {
	StylesheetURL string
	Credits       bool
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// escapeText escapes the XML entities and drops what XML 1.0 cannot carry:
// invalid UTF-8 and characters outside the Char production.
func escapeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return -1
	}, strings.ToValidUTF8(s, ""))
	return xmlEscaper.Replace(s)
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// EscapeValue renders a value as XML text.
// Booleans become "yes"/"no", everything else is formatted and escaped.
func EscapeValue(value any) string {
	switch v := value.(type) {
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case string:
		return escapeText(v)
	case time.Time:
		return v.Format(LastmodLayout)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case models.ChangeFreq:
		return escapeText(string(v))
	default:
		return escapeText(fmt.Sprint(v))
	}
}

// RenderSitemap renders a urlset document, one <url> per line
func RenderSitemap(entries []models.SitemapEntry, opts RenderOptions) string {

	lines := make([]string, 0, len(entries)+2)
	lines = append(lines, urlsetOpen)

	var b strings.Builder
	for _, entry := range entries {
		b.Reset()
		writeEntry(&b, entry)
		lines = append(lines, b.String())
	}

	lines = append(lines, urlsetClose)
	return wrap(lines, opts)
}

// RenderIndex renders a sitemapindex document
func RenderIndex(entries []models.IndexEntry, opts RenderOptions) string {

	lines := make([]string, 0, len(entries)+2)
	lines = append(lines, indexOpen)

	for _, entry := range entries {
		lines = append(lines, "<sitemap>"+
			element("loc", entry.Loc)+
			element("lastmod", entry.Lastmod)+
			"</sitemap>",
		)
	}

	lines = append(lines, indexClose)
	return wrap(lines, opts)
}

// IndexLastmod is the most recent lastmod of the entries, or now if none has one
func IndexLastmod(entries []models.SitemapEntry, now time.Time) time.Time {

	var newest *time.Time
	for _, entry := range entries {
		newest = latest(newest, entry.Lastmod)
	}

	if newest == nil {
		return now
	}

	return *newest
}

func wrap(lines []string, opts RenderOptions) string {

	head := xmlDeclaration
	if opts.StylesheetURL != "" {
		head += `<?xml-stylesheet type="text/xsl" href="` + EscapeValue(opts.StylesheetURL) + `"?>`
	}

	out := make([]string, 0, len(lines)+2)
	out = append(out, head)
	out = append(out, lines...)

	if opts.Credits {
		out = append(out, creditComment)
	}

	return strings.Join(out, "\n")
}

func writeEntry(b *strings.Builder, e models.SitemapEntry) {

	b.WriteString("<url>")
	b.WriteString(element("loc", e.Loc))

	if e.Lastmod != nil {
		b.WriteString(element("lastmod", *e.Lastmod))
	}

	if e.ChangeFreq != "" {
		b.WriteString(element("changefreq", e.ChangeFreq))
	}

	if e.Priority != nil {
		b.WriteString(element("priority", *e.Priority))
	}

	for _, alt := range e.Alternates {
		if alt.Href == "" {
			continue
		}
		fmt.Fprintf(b, `<xhtml:link rel="alternate" hreflang="%s" href="%s" />`,
			EscapeValue(alt.Hreflang), EscapeValue(alt.Href))
	}

	for _, img := range e.Images {
		writeImage(b, img)
	}

	for _, video := range e.Videos {
		writeVideo(b, video)
	}

	b.WriteString("</url>")
}

func writeImage(b *strings.Builder, img models.Image) {

	if img.Loc == "" {
		return
	}

	b.WriteString("<image:image>")
	b.WriteString(element("image:loc", img.Loc))
	b.WriteString(optional("image:caption", img.Caption))
	b.WriteString(optional("image:geo_location", img.GeoLocation))
	b.WriteString(optional("image:title", img.Title))
	b.WriteString(optional("image:license", img.License))
	b.WriteString("</image:image>")
}

func writeVideo(b *strings.Builder, v models.Video) {

	b.WriteString("<video:video>")
	b.WriteString(optional("video:thumbnail_loc", v.ThumbnailLoc))
	b.WriteString(optional("video:title", v.Title))
	b.WriteString(optional("video:description", v.Description))
	b.WriteString(optional("video:content_loc", v.ContentLoc))
	b.WriteString(optional("video:player_loc", v.PlayerLoc))

	if v.Duration > 0 {
		b.WriteString(element("video:duration", v.Duration))
	}

	if v.ExpirationDate != nil {
		b.WriteString(element("video:expiration_date", *v.ExpirationDate))
	}

	if v.Rating != nil {
		b.WriteString(element("video:rating", *v.Rating))
	}

	if v.ViewCount != nil {
		b.WriteString(element("video:view_count", *v.ViewCount))
	}

	if v.PublicationDate != nil {
		b.WriteString(element("video:publication_date", *v.PublicationDate))
	}

	if v.FamilyFriendly != nil {
		b.WriteString(element("video:family_friendly", *v.FamilyFriendly))
	}

	if v.RequiresSubscription != nil {
		b.WriteString(element("video:requires_subscription", *v.RequiresSubscription))
	}

	if v.Live != nil {
		b.WriteString(element("video:live", *v.Live))
	}

	for _, tag := range v.Tags {
		b.WriteString(optional("video:tag", tag))
	}

	b.WriteString(optional("video:uploader", v.Uploader))
	b.WriteString("</video:video>")
}

func element(name string, value any) string {
	return "<" + name + ">" + EscapeValue(value) + "</" + name + ">"
}

// optional renders the element only for a non-empty value
func optional(name, value string) string {
	if value == "" {
		return ""
	}
	return element(name, value)
}
