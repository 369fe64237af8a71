// Package seed imports the bundled bestiary into the monsters table.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/yaddak/yaddak/internal/common/crypto"
	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	"github.com/yaddak/yaddak/internal/common/logger"
	"github.com/yaddak/yaddak/internal/monster/domain"
	"github.com/yaddak/yaddak/internal/observability/metrics"
	userdomain "github.com/yaddak/yaddak/internal/user/domain"
)

type MonsterStore interface {
	ExistsByName(ctx context.Context, name string) (bool, error)
	Insert(ctx context.Context, monster domain.Monster) error
}

type UserStore interface {
	Get(ctx context.Context, id uuid.UUID) (userdomain.User, error)
	Insert(ctx context.Context, user userdomain.User) error
}

type Importer struct {
	monsters MonsterStore
	users    UserStore
	hasher   crypto.CredentialHasher
	ids      crypto.IDGenerator
	log      *logger.Logger
}

func NewImporter(monsters MonsterStore, users UserStore, hasher crypto.CredentialHasher, ids crypto.IDGenerator, log *logger.Logger) *Importer {
	return &Importer{
		monsters: monsters,
		users:    users,
		hasher:   hasher,
		ids:      ids,
		log:      log,
	}
}

// ImportFile loads records from path and inserts those whose name is not yet
// stored. A missing file is not an error.
func (i *Importer) ImportFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			i.log.WithFields(ctx, logger.Fields{
				"path":   path,
				"action": "seed_skipped",
			}).Warn("seed file not found, skipping monster import")
			return 0, nil
		}
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var records []domain.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return 0, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	return i.Import(ctx, records)
}

func (i *Importer) Import(ctx context.Context, records []domain.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	if err := i.EnsureCatalogOwner(ctx); err != nil {
		return 0, err
	}

	inserted := 0
	for _, rec := range records {
		exists, err := i.monsters.ExistsByName(ctx, rec.Name)
		if err != nil {
			return inserted, fmt.Errorf("check monster %q: %w", rec.Name, err)
		}
		if exists {
			continue
		}

		id, err := i.ids.NewID()
		if err != nil {
			return inserted, commonerrors.ErrInternalError.WithCause(err)
		}

		if err := i.monsters.Insert(ctx, rec.ToMonster(id, domain.CatalogOwnerID)); err != nil {
			return inserted, fmt.Errorf("insert monster %q: %w", rec.Name, err)
		}
		inserted++
		metrics.SeedRecordsInserted.WithLabelValues("monsters").Inc()
	}

	i.log.WithFields(ctx, logger.Fields{
		"records":  len(records),
		"inserted": inserted,
		"action":   "seed_completed",
	}).Infof("monster seed completed: %d inserted, %d already present", inserted, len(records)-inserted)

	return inserted, nil
}

// EnsureCatalogOwner creates the user that owns imported monsters. Its
// credential is derived from a random secret that is never kept, so nobody
// can log in as it. The owner is found by id only; if its name or email is
// already held by another user it is stored under a fallback identity.
func (i *Importer) EnsureCatalogOwner(ctx context.Context) error {
	_, err := i.users.Get(ctx, domain.CatalogOwnerID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, commonerrors.ErrNotFound) {
		return fmt.Errorf("lookup catalog owner: %w", err)
	}

	name, email := domain.CatalogOwnerName, domain.CatalogOwnerEmail
	err = i.insertCatalogOwner(ctx, name, email)
	if errors.Is(err, commonerrors.ErrAlreadyExists) {
		name, email = fallbackCatalogOwner()
		i.log.WithFields(ctx, logger.Fields{
			"user_id":   domain.CatalogOwnerID.String(),
			"user_name": name,
			"action":    "catalog_owner_renamed",
		}).Warnf("catalog owner identity held by another user: %v", err)
		err = i.insertCatalogOwner(ctx, name, email)
	}
	if err != nil {
		return fmt.Errorf("create catalog owner: %w", err)
	}

	i.log.WithFields(ctx, logger.Fields{
		"user_id":   domain.CatalogOwnerID.String(),
		"user_name": name,
		"action":    "catalog_owner_created",
	}).Info("catalog owner created")
	return nil
}

func (i *Importer) insertCatalogOwner(ctx context.Context, name, email string) error {
	secret, err := i.ids.NewID()
	if err != nil {
		return commonerrors.ErrInternalError.WithCause(err)
	}
	digest, err := i.hasher.Hash(domain.CatalogOwnerID, name, secret.String())
	if err != nil {
		return err
	}

	return i.users.Insert(ctx, userdomain.User{
		ID:        domain.CatalogOwnerID,
		UserName:  name,
		UserEmail: email,
		UserAuth:  digest,
	})
}

func fallbackCatalogOwner() (string, string) {
	suffix := strings.SplitN(domain.CatalogOwnerID.String(), "-", 2)[0]
	local, host, _ := strings.Cut(domain.CatalogOwnerEmail, "@")
	return domain.CatalogOwnerName + "-" + suffix, local + "+" + suffix + "@" + host
}
