package discover

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/vlatan/sitemap-builder/internal/models"
	"github.com/vlatan/sitemap-builder/internal/sitemap"
)

// Page is one rendered HTML document and the route it was served on
type Page struct {
	Route string
	Body  io.Reader
}

// Images returns the images found within the <main> element of a HTML document,
// resolved against the site URL, in document order. Repeated images are kept.
func Images(r io.Reader, site *url.URL) ([]models.Image, error) {

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse the document; %w", err)
	}

	var images []models.Image
	doc.Find("main").First().Find("img[src]").Each(func(i int, s *goquery.Selection) {

		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}

		ref, err := url.Parse(src)
		if err != nil {
			log.Printf("Skipping image '%s'; %v", src, err)
			return
		}

		images = append(images, models.Image{Loc: site.ResolveReference(ref).String()})
	})

	return images, nil
}

// Collect scans the pages and maps every route to its images.
// Routes without images are left out.
func Collect(pages []Page, site *url.URL) (map[string][]models.Image, error) {

	result := make(map[string][]models.Image)
	for _, page := range pages {
		images, err := Images(page.Body, site)
		if err != nil {
			return nil, fmt.Errorf("couldn't scan route '%s'; %w", page.Route, err)
		}

		if len(images) > 0 {
			result[page.Route] = append(result[page.Route], images...)
		}
	}

	return result, nil
}

// FromDir walks a directory of prerendered HTML and returns the routes found
// along with their images and modification times
func FromDir(dir string, site *url.URL) ([]string, sitemap.Discovered, error) {

	discovered := sitemap.Discovered{
		Images:  make(map[string][]models.Image),
		Lastmod: make(map[string]time.Time),
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, discovered, fmt.Errorf("couldn't open the directory %s; %w", dir, err)
	}
	defer root.Close()

	var routes []string
	walkDirFunc := func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if name != "." && strings.HasPrefix(d.Name(), "_") {
				return fs.SkipDir
			}
			return nil
		}

		route, ok := RouteFromFile(name)
		if !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		file, err := root.Open(name)
		if err != nil {
			return fmt.Errorf("couldn't open the file %s; %w", name, err)
		}
		defer file.Close()

		images, err := Images(file, site)
		if err != nil {
			return fmt.Errorf("couldn't scan the file %s; %w", name, err)
		}

		routes = append(routes, route)
		discovered.Lastmod[route] = info.ModTime().UTC()
		if len(images) > 0 {
			discovered.Images[route] = images
		}

		return nil
	}

	if err := fs.WalkDir(root.FS(), ".", walkDirFunc); err != nil {
		return nil, discovered, err
	}

	return routes, discovered, nil
}

// RouteFromFile maps a prerendered file to the route it serves.
// Error pages, non HTML files and files starting with an underscore have no route.
func RouteFromFile(name string) (string, bool) {

	name = path.Clean(strings.TrimPrefix(name, "./"))
	base := path.Base(name)

	if path.Ext(base) != ".html" || strings.HasPrefix(base, "_") {
		return "", false
	}

	switch base {
	case "404.html", "200.html":
		return "", false
	case "index.html":
		dir := path.Dir(name)
		if dir == "." {
			return "/", true
		}
		return "/" + dir, true
	}

	return "/" + strings.TrimSuffix(name, ".html"), true
}
