// Package janitor periodically removes denylist entries whose tokens have
// expired anyway.
package janitor

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lifestyle/internal/logging"
	"github.com/dmitrijs2005/lifestyle/internal/server/revocation"
)

var now = time.Now

type Janitor struct {
	purger revocation.Purger
	period time.Duration
	logger logging.Logger
}

func New(p revocation.Purger, period time.Duration, l logging.Logger) *Janitor {
	return &Janitor{
		purger: p,
		period: period,
		logger: l.With("module", "janitor"),
	}
}

// Run purges once per period until ctx is done. A failed purge is logged
// and retried on the next tick.
func (j *Janitor) Run(ctx context.Context) {
	if j.period <= 0 {
		return
	}

	ticker := time.NewTicker(j.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.purge(ctx)
		}
	}
}

func (j *Janitor) purge(ctx context.Context) {
	n, err := j.purger.Purge(ctx, now().UTC())
	if err != nil {
		j.logger.Error(ctx, "purge failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.Info(ctx, "purged revoked tokens", "count", n)
	}
}
