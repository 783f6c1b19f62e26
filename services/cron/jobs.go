package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// CheckDatabaseHealth pings the catalog store.
func (m *CronManager) CheckDatabaseHealth(ctx context.Context) (string, error) {
	start := time.Now()
	if err := m.store.Ping(ctx); err != nil {
		return "", errors.Wrap(err, "database unreachable")
	}
	return fmt.Sprintf("database reachable in %s", time.Since(start).Round(time.Millisecond)), nil
}

// CleanupRevokedTokens removes blacklist entries whose token has expired.
func (m *CronManager) CleanupRevokedTokens(ctx context.Context) (string, error) {
	removed, err := m.tokens.Cleanup(ctx)
	if err != nil {
		return "", errors.Wrap(err, "cleanup revoked tokens")
	}
	return fmt.Sprintf("removed %d expired revoked tokens", removed), nil
}

// PruneJobLogs deletes job runs older than JobLogRetention.
func (m *CronManager) PruneJobLogs(ctx context.Context) (string, error) {
	removed, err := m.store.PruneJobLogs(ctx, time.Now().Add(-JobLogRetention))
	if err != nil {
		return "", errors.Wrap(err, "prune job logs")
	}
	return fmt.Sprintf("pruned %d job logs", removed), nil
}
