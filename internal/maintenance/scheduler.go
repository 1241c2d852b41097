// Package maintenance runs the recurring cleanup jobs: the daily chat
// purge and the hourly expired-upload purge.  Both are plain goroutines
// driven by timers, not a cron dependency, and both survive their own
// failures: an error is logged and the next run is scheduled regardless.
package maintenance

import (
	"context"
	"log"
	"time"

	"github.com/brotherhood/platform/internal/repository"
)

// jobTimeout bounds the database work of a single run.
const jobTimeout = 30 * time.Second

// NextPurgeTime returns the next occurrence of the daily boundary (hour
// o'clock in loc) strictly after now.  The boundary is re-derived from the
// current time on every call, so a restart needs no persisted "last run"
// state: a restart shortly before the boundary cannot double-fire, and an
// outage spanning boundaries silently skips the missed runs.
func NextPurgeTime(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// StartChatRetention launches the self-perpetuating daily chat purge.  The
// timer fires at hour o'clock in the tz timezone, purges the chat table,
// and reschedules itself for the next boundary.
func StartChatRetention(chat *repository.ChatRepo, hour int, tz string) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("retention: unknown timezone %q, using UTC: %v", tz, err)
		loc = time.UTC
	}
	go func() {
		for {
			next := NextPurgeTime(time.Now(), hour, loc)
			log.Printf("retention: next chat purge at %s", next.Format(time.RFC3339))
			time.Sleep(time.Until(next))

			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			n, err := chat.PurgeAll(ctx)
			cancel()
			if err != nil {
				log.Printf("retention: chat purge failed: %v", err)
				continue
			}
			log.Printf("retention: purged %d chat messages", n)
		}
	}()
}

// StartFilePurge launches the fixed-interval expired-upload purge.  The
// interval job is independent of chat retention; a failed run is logged
// and the ticker keeps going.
func StartFilePurge(files *repository.FileRepo, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			n, err := files.PurgeExpired(ctx, time.Now())
			cancel()
			if err != nil {
				log.Printf("maintenance: file purge failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("maintenance: purged %d expired files", n)
			}
		}
	}()
}
