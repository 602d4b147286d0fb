package service

import (
	"context"
	"sync"

	"envelope_bot/internal/models"
	"envelope_bot/pkg/db"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const (
	createTrackingTable = `create table if not exists envelope_tracking (
	name       text primary key,
	data       jsonb not null,
	updated_at timestamptz not null default now()
)`
	selectTracking = `select data from envelope_tracking where name = $1`
	upsertTracking = `insert into envelope_tracking (name, data, updated_at) values ($1, $2, now())
on conflict (name) do update set data = excluded.data, updated_at = excluded.updated_at`
)

// PgStore хранит состояние одной jsonb-строкой на стратегию.
type PgStore struct {
	tx   db.TxManager
	name string

	schemaOnce sync.Once
	schemaErr  error
}

func NewPgStore(tx db.TxManager, name string) *PgStore {
	return &PgStore{tx: tx, name: name}
}

func (p *PgStore) ensureSchema(ctx context.Context) error {
	p.schemaOnce.Do(func() {
		p.schemaErr = p.tx.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
			_, err := tx.Exec(ctx, createTrackingTable)
			return err
		})
	})
	return p.schemaErr
}

func (p *PgStore) Load(ctx context.Context) (models.TrackingStore, error) {
	if err := p.ensureSchema(ctx); err != nil {
		return models.TrackingStore{}, errors.Wrap(err, "tracking schema")
	}

	var raw []byte
	err := p.tx.RunRepeatableRead(ctx, func(ctx context.Context, tx db.Transaction) error {
		return tx.QueryRow(ctx, selectTracking, p.name).Scan(&raw)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return EmptyStore(), nil
	}
	if err != nil {
		return models.TrackingStore{}, errors.Wrapf(err, "load tracking %s", p.name)
	}

	var s models.TrackingStore
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return models.TrackingStore{}, errors.Wrapf(err, "decode tracking %s", p.name)
	}
	return normalize(s), nil
}

func (p *PgStore) Save(ctx context.Context, s models.TrackingStore) error {
	if err := p.ensureSchema(ctx); err != nil {
		return errors.Wrap(err, "tracking schema")
	}
	b, err := sonic.Marshal(normalize(s))
	if err != nil {
		return errors.Wrap(err, "encode tracking")
	}
	return p.tx.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctx, upsertTracking, p.name, b)
		return errors.Wrapf(err, "save tracking %s", p.name)
	})
}
