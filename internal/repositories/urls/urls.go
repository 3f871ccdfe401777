package urls

import (
	"context"
	"time"

	"github.com/vlatan/sitemap-builder/internal/drivers/database"
	"github.com/vlatan/sitemap-builder/internal/models"
	"github.com/vlatan/sitemap-builder/internal/utils"
)

// Repository is the explicit URL source stored in Postgres
type Repository struct {
	db database.Service
}

func New(db database.Service) *Repository {
	return &Repository{db: db}
}

// Get all the stored URLs, oldest first
func (r *Repository) URLs(ctx context.Context) ([]models.URLInput, error) {

	// Get rows from DB
	rows, err := r.db.Query(ctx, allURLsQuery)
	if err != nil {
		return nil, err
	}

	// Close rows on exit
	defer rows.Close()

	// Iterate over the rows
	var urls []models.URLInput
	for rows.Next() {
		var u models.URLInput

		var ( // Nullable columns in the DB need pointers for the scan
			lastmod    *time.Time
			changefreq *string
			priority   *float64
			sitemap    *string
		)

		if err = rows.Scan(&u.Path, &lastmod, &changefreq, &priority, &sitemap); err != nil {
			return nil, err
		}

		u.Lastmod = lastmod
		u.Priority = priority

		if changefreq != nil {
			u.ChangeFreq = models.ChangeFreq(*changefreq)
		}

		u.Sitemap = utils.PtrToString(sitemap)

		urls = append(urls, u)
	}

	// If error during iteration
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return urls, nil
}

// Insert a URL or update the stored one with the same path
func (r *Repository) Upsert(ctx context.Context, u models.URLInput) (int64, error) {
	return r.db.Exec(
		ctx,
		upsertURLQuery,
		u.Path,
		u.Lastmod,
		utils.NullString(string(u.ChangeFreq)),
		u.Priority,
		utils.NullString(u.Sitemap),
	)
}

// Delete a URL
func (r *Repository) Delete(ctx context.Context, path string) (int64, error) {
	return r.db.Exec(ctx, deleteURLQuery, path)
}
