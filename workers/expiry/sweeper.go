package expiry

import (
	"context"
	"log"
	"time"

	"github.com/agoralive/debate-engine/services/arenas"
)

// Sweeper drives round time limits: it periodically closes every active
// arena round that has outlived its configured duration. Each close runs in
// its own transaction, so a creator closing the round first simply wins.
type Sweeper struct {
	arenaService *arenas.ArenaService
	interval     time.Duration
}

func NewSweeper(arenaService *arenas.ArenaService) *Sweeper {
	return &Sweeper{
		arenaService: arenaService,
		interval:     30 * time.Second,
	}
}

func (w *Sweeper) Start(ctx context.Context) {
	log.Println("Starting round expiry sweeper")
	go w.run(ctx)
}

func (w *Sweeper) run(ctx context.Context) {
	if err := w.arenaService.CloseExpiredRounds(ctx); err != nil {
		log.Printf("Initial expiry sweep failed: %v\n", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Stopping round expiry sweeper")
			return
		case <-ticker.C:
			if err := w.arenaService.CloseExpiredRounds(ctx); err != nil {
				log.Printf("Expiry sweep failed: %v\n", err)
			}
		}
	}
}
