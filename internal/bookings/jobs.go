package bookings

import (
	"context"
	"log"
	"time"
)

// SweepProcessor cancels abandoned PENDING_PAYMENT bookings in the background.
// An abandoned booking is one whose gateway order was created (or failed to be
// created) but never saw a capture or failure event within the TTL.
type SweepProcessor struct {
	service Service
	config  *SweepConfig
	done    chan struct{}
}

// SweepConfig contains configuration for the pending-booking sweep
type SweepConfig struct {
	Interval   time.Duration
	PendingTTL time.Duration
	BatchSize  int
}

// DefaultSweepConfig returns default sweep configuration
func DefaultSweepConfig() *SweepConfig {
	return &SweepConfig{
		Interval:   15 * time.Minute,
		PendingTTL: 24 * time.Hour,
		BatchSize:  100,
	}
}

// NewSweepProcessor creates a new sweep processor
func NewSweepProcessor(service Service, config *SweepConfig) *SweepProcessor {
	if config == nil {
		config = DefaultSweepConfig()
	}

	return &SweepProcessor{
		service: service,
		config:  config,
		done:    make(chan struct{}),
	}
}

// Start starts the background sweep
func (sp *SweepProcessor) Start(ctx context.Context) {
	log.Printf("Starting pending-booking sweep with %v interval (TTL %v)", sp.config.Interval, sp.config.PendingTTL)
	go sp.run(ctx)
}

// Stop stops the background sweep
func (sp *SweepProcessor) Stop() {
	close(sp.done)
	log.Println("Pending-booking sweep stopped")
}

func (sp *SweepProcessor) run(ctx context.Context) {
	ticker := time.NewTicker(sp.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sp.sweep(ctx)
		case <-sp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (sp *SweepProcessor) sweep(ctx context.Context) {
	expired, err := sp.service.SweepStalePending(ctx, sp.config.PendingTTL, sp.config.BatchSize)
	if err != nil {
		log.Printf("Error sweeping stale pending bookings: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("Swept %d stale pending bookings to CANCELLED", expired)
	}
}
