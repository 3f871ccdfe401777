package urls

const allURLsQuery = `
	SELECT path, lastmod, changefreq, priority, sitemap
	FROM sitemap_url
	ORDER BY created_at ASC, id ASC
`

const upsertURLQuery = `
	INSERT INTO sitemap_url (path, lastmod, changefreq, priority, sitemap)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (path) DO UPDATE SET
		lastmod = EXCLUDED.lastmod,
		changefreq = EXCLUDED.changefreq,
		priority = EXCLUDED.priority,
		sitemap = EXCLUDED.sitemap,
		updated_at = NOW()
`

const deleteURLQuery = `DELETE FROM sitemap_url WHERE path = $1`
