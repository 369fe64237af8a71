package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	pgx "github.com/jackc/pgx/v4"

	"github.com/yaddak/yaddak/internal/common/db"
	"github.com/yaddak/yaddak/internal/common/logger"
	"github.com/yaddak/yaddak/internal/monster/domain"
	"github.com/yaddak/yaddak/internal/store"
	userrepo "github.com/yaddak/yaddak/internal/user/repository"
)

const Table = "monsters"

type Repository interface {
	store.Repository[domain.Monster]
	ExistsByName(ctx context.Context, name string) (bool, error)
}

var Schema = store.Schema[domain.Monster]{
	Table: Table,
	Key:   "id",
	Columns: []store.Column{
		{Name: "id", Type: "uuid NOT NULL PRIMARY KEY"},
		{Name: "name", Type: "text NOT NULL"},
		{Name: "meta", Type: "text NOT NULL"},
		{Name: "armor_class", Type: "text NOT NULL"},
		{Name: "hit_points", Type: "text NOT NULL"},
		{Name: "speed", Type: "text NOT NULL"},
		{Name: "str", Type: "smallint NOT NULL"},
		{Name: "dex", Type: "smallint NOT NULL"},
		{Name: "con", Type: "smallint NOT NULL"},
		{Name: "int", Type: "smallint NOT NULL"},
		{Name: "wis", Type: "smallint NOT NULL"},
		{Name: "cha", Type: "smallint NOT NULL"},
		{Name: "saving_throws", Type: "text NOT NULL"},
		{Name: "skills", Type: "text NOT NULL"},
		{Name: "senses", Type: "text NOT NULL"},
		{Name: "languages", Type: "text NOT NULL"},
		{Name: "challenge", Type: "real NOT NULL"},
		{Name: "traits", Type: "text"},
		{Name: "actions", Type: "text NOT NULL"},
		{Name: "damage_immunities", Type: "text"},
		{Name: "condition_immunities", Type: "text"},
		{Name: "legendary_actions", Type: "text"},
		{Name: "img_url", Type: "text NOT NULL"},
		{Name: "user_id", Type: "uuid NOT NULL"},
	},
	Constraints: []string{
		`CONSTRAINT "monsters_user_id_fkey" FOREIGN KEY ("user_id") REFERENCES "` + userrepo.Table +
			`" ("id") ON DELETE CASCADE ON UPDATE CASCADE`,
	},
	Indexes: []store.Index{
		{Name: "monsters_name_idx", Columns: []string{"name"}},
		{Name: "monsters_user_id_idx", Columns: []string{"user_id"}},
	},
	Scan: func(row pgx.Row) (domain.Monster, error) {
		var m domain.Monster
		err := row.Scan(
			&m.ID, &m.Name, &m.Meta, &m.ArmorClass, &m.HitPoints, &m.Speed,
			&m.Str, &m.Dex, &m.Con, &m.Int, &m.Wis, &m.Cha,
			&m.SavingThrows, &m.Skills, &m.Senses, &m.Languages, &m.Challenge,
			&m.Traits, &m.Actions, &m.DamageImmunities, &m.ConditionImmunities, &m.LegendaryActions,
			&m.ImgURL, &m.UserID,
		)
		return m, err
	},
	Values: func(m domain.Monster) []any {
		return []any{
			m.ID, m.Name, m.Meta, m.ArmorClass, m.HitPoints, m.Speed,
			m.Str, m.Dex, m.Con, m.Int, m.Wis, m.Cha,
			m.SavingThrows, m.Skills, m.Senses, m.Languages, m.Challenge,
			m.Traits, m.Actions, m.DamageImmunities, m.ConditionImmunities, m.LegendaryActions,
			m.ImgURL, m.UserID,
		}
	},
}

type PgRepository struct {
	*store.PgRepository[domain.Monster]
}

func NewPgRepository(q db.Querier, log *logger.Logger, opts store.Options) *PgRepository {
	return &PgRepository{PgRepository: store.NewPgRepository(q, Schema, log, opts)}
}

func (r *PgRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	return r.Exists(ctx, sq.Eq{store.Ident("name"): name})
}
