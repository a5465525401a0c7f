package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/allisson/quickie/internal/store"
)

// purgeResult is the JSON shape of purge-expired.
type purgeResult struct {
	Count     int64     `json:"count"`
	OlderThan time.Time `json:"older_than"`
	DryRun    bool      `json:"dry_run"`
}

// RunPurgeExpired removes SQL rows whose deadline passed before now. Reads already ignore
// them, so this only reclaims space. With dryRun it counts instead of deleting.
func RunPurgeExpired(
	ctx context.Context,
	purger store.ExpiredPurger,
	logger *slog.Logger,
	writer io.Writer,
	now time.Time,
	dryRun bool,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("purging expired entries",
		slog.Time("older_than", now),
		slog.Bool("dry_run", dryRun),
	)

	var (
		count int64
		err   error
	)
	if dryRun {
		count, err = purger.CountExpired(ctx, now)
	} else {
		count, err = purger.DeleteExpired(ctx, now)
	}
	if err != nil {
		return fmt.Errorf("failed to purge expired entries: %w", err)
	}

	if format == formatJSON {
		if err := writeJSON(writer, purgeResult{Count: count, OlderThan: now.UTC(), DryRun: dryRun}); err != nil {
			return err
		}
	} else {
		if dryRun {
			_, _ = fmt.Fprintf(writer, "Dry-run mode: Would delete %d expired entr(ies)\n", count)
		} else {
			_, _ = fmt.Fprintf(writer, "Successfully deleted %d expired entr(ies)\n", count)
		}
	}

	logger.Info("purge completed",
		slog.Int64("count", count),
		slog.Bool("dry_run", dryRun),
	)

	return nil
}
