package sitemap

import (
	_ "embed"
)

// StylesheetPath is where the XSL stylesheet is served, relative to the base
const StylesheetPath = "/__sitemap__/style.xsl"

//go:embed style.xsl
var stylesheet []byte

// Stylesheet returns the XSL document used to render sitemaps in browsers
func Stylesheet() []byte {
	return stylesheet
}
