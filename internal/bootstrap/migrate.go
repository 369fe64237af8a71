package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/yaddak/yaddak/internal/common/logger"
	"github.com/yaddak/yaddak/internal/store"
)

// Step is one entity migration, named for logs and errors.
type Step struct {
	Name     string
	Migrator store.Migrator
}

// MigrateAll runs steps in order and stops at the first failure. Every step
// is idempotent, so a partial run can be retried from the top.
func MigrateAll(ctx context.Context, log *logger.Logger, steps ...Step) error {
	for _, step := range steps {
		start := time.Now()
		if err := step.Migrator.Migrate(ctx); err != nil {
			log.WithFields(ctx, logger.Fields{
				"entity": step.Name,
				"action": "migrate_failed",
			}).Errorf("migration failed: %v", err)
			return fmt.Errorf("migrate %s: %w", step.Name, err)
		}
		log.WithFields(ctx, logger.Fields{
			"entity":      step.Name,
			"duration_ms": time.Since(start).Milliseconds(),
			"action":      "migrate_success",
		}).Info("migration applied")
	}
	return nil
}
