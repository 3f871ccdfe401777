package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

const storedURLsQuery = "SELECT COUNT(*) FROM sitemap_url"

// Health checks the health of the database connection.
// It returns the pool statistics and the number of stored sitemap URLs.
func (s *service) Health(ctx context.Context) map[string]any {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	stats := make(map[string]any)

	if err := s.db.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Printf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"

	storedURLs, err := s.StoredURLs(ctx)
	if err != nil {
		stats["status"] = "degraded"
		stats["error"] = err.Error()
		log.Println(err)
	} else {
		stats["stored_urls"] = storedURLs
	}

	// Connection pool snapshots
	dbStats := s.db.Stat()
	stats["maximum_possible_connections"] = dbStats.MaxConns()
	stats["current_open_connections"] = dbStats.TotalConns()
	stats["current_connections_in_use"] = dbStats.AcquiredConns()
	stats["current_idle_connections"] = dbStats.IdleConns()
	stats["cumulative_waited_acquired"] = dbStats.EmptyAcquireCount()

	var messages []string
	if dbStats.MaxConns() > 0 {
		utilization := float64(dbStats.AcquiredConns()) / float64(dbStats.MaxConns())
		stats["connection_pool_utilization"] = fmt.Sprintf("%.2f", utilization*100)

		if utilization > 0.85 {
			messages = append(messages, fmt.Sprintf("Pool highly utilized: %.2f%%", utilization*100))
		}
	}

	if len(messages) > 0 {
		stats["message"] = strings.Join(messages, "; ")
	}

	return stats
}
