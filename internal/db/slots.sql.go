package db

import (
	"context"
	"time"
)

const getSlot = `-- name: GetSlot :one
SELECT key, value, updated_at FROM kv_slots WHERE key = ?
`

func (q *Queries) GetSlot(ctx context.Context, key string) (KvSlot, error) {
	row := q.db.QueryRowContext(ctx, getSlot, key)
	var i KvSlot
	err := row.Scan(&i.Key, &i.Value, &i.UpdatedAt)
	return i, err
}

const upsertSlot = `-- name: UpsertSlot :exec
INSERT INTO kv_slots (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
    value = excluded.value,
    updated_at = excluded.updated_at
`

type UpsertSlotParams struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

func (q *Queries) UpsertSlot(ctx context.Context, arg UpsertSlotParams) error {
	_, err := q.db.ExecContext(ctx, upsertSlot, arg.Key, arg.Value, arg.UpdatedAt)
	return err
}
