package session

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweep periodically deletes expired session records until ctx is done.
// Every cookie-less request mints a row, so without reclamation the durable
// store grows with every health check and crawler hit; the memory store sweeps
// opportunistically on its own, but running it here too keeps both backends
// on the same contract.
//
// Run it on its own goroutine:
//
//	go session.Sweep(ctx, store, cfg.Session.SweepInterval)
func Sweep(ctx context.Context, store Store, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.DeleteExpired(ctx, now)
			if err != nil {
				log.Warn().Err(err).Msg("session sweep failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("expired sessions reclaimed")
			}
		}
	}
}
