package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

const (
	dbPingTimeout = 5 * time.Second
	dbWaitMax     = 30 * time.Second
	dbBackoffMax  = 5 * time.Second
)

// openDatabase opens the Postgres pool and waits for the instance to answer
// pings, backing off between attempts until dbWaitMax.
func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	deadline := time.Now().Add(dbWaitMax)
	backoff := 500 * time.Millisecond

	var lastErr error
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
		lastErr = db.PingContext(pingCtx)
		cancel()

		if lastErr == nil {
			if attempt > 1 {
				log.Info().Int("attempts", attempt).Msg("database ready")
			}
			return db, nil
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			break
		}

		log.Warn().Err(lastErr).Int("attempt", attempt).Dur("backoff", backoff).
			Msg("database not ready, retrying")
		time.Sleep(backoff)
		backoff *= 2
		if backoff > dbBackoffMax {
			backoff = dbBackoffMax
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("ping database: %w", lastErr)
}
