package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// This file centralizes all Redis cache keys and TTL values for the Roamly application
// Pattern: roamly:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	// Webhook event dedup entries. The database ledger is the durable source
	// of truth; the cache entry only short-circuits redeliveries, so it may
	// expire long before the ledger row does.
	TTL_WEBHOOK_DEDUP = 72 * time.Hour

	// Tour details change rarely
	TTL_TOUR_DETAILS = 6 * time.Hour
)

// ================== CACHE KEY BUILDERS ==================

// WebhookEventKey returns the dedup key for a gateway webhook event id
func WebhookEventKey(eventID string) string {
	return fmt.Sprintf("roamly:payments:webhook:%s", eventID)
}

// TourKey returns the cache key for a tour record
func TourKey(tourID string) string {
	return fmt.Sprintf("roamly:tours:detail:%s", tourID)
}
