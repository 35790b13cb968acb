package db

import (
	"context"
	"time"
)

const insertArtifact = `-- name: InsertArtifact :exec
INSERT INTO artifact_log (serial, subject_id, kind, label, snapshot, realm, x, y, z, issued_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertArtifactParams struct {
	Serial    string
	SubjectID string
	Kind      string
	Label     string
	Snapshot  string
	Realm     string
	X         int64
	Y         int64
	Z         int64
	IssuedAt  time.Time
}

func (q *Queries) InsertArtifact(ctx context.Context, arg InsertArtifactParams) error {
	_, err := q.db.ExecContext(ctx, insertArtifact,
		arg.Serial,
		arg.SubjectID,
		arg.Kind,
		arg.Label,
		arg.Snapshot,
		arg.Realm,
		arg.X,
		arg.Y,
		arg.Z,
		arg.IssuedAt,
	)
	return err
}

const listArtifactsBySubject = `-- name: ListArtifactsBySubject :many
SELECT serial, subject_id, kind, label, snapshot, realm, x, y, z, issued_at
FROM artifact_log
WHERE subject_id = ?
ORDER BY issued_at DESC
LIMIT ?
`

type ListArtifactsBySubjectParams struct {
	SubjectID string
	Limit     int64
}

func (q *Queries) ListArtifactsBySubject(ctx context.Context, arg ListArtifactsBySubjectParams) ([]ArtifactLog, error) {
	rows, err := q.db.QueryContext(ctx, listArtifactsBySubject, arg.SubjectID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ArtifactLog
	for rows.Next() {
		var i ArtifactLog
		if err := rows.Scan(
			&i.Serial,
			&i.SubjectID,
			&i.Kind,
			&i.Label,
			&i.Snapshot,
			&i.Realm,
			&i.X,
			&i.Y,
			&i.Z,
			&i.IssuedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listRecentArtifacts = `-- name: ListRecentArtifacts :many
SELECT serial, subject_id, kind, label, snapshot, realm, x, y, z, issued_at
FROM artifact_log
ORDER BY issued_at DESC
LIMIT ?
`

func (q *Queries) ListRecentArtifacts(ctx context.Context, limit int64) ([]ArtifactLog, error) {
	rows, err := q.db.QueryContext(ctx, listRecentArtifacts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ArtifactLog
	for rows.Next() {
		var i ArtifactLog
		if err := rows.Scan(
			&i.Serial,
			&i.SubjectID,
			&i.Kind,
			&i.Label,
			&i.Snapshot,
			&i.Realm,
			&i.X,
			&i.Y,
			&i.Z,
			&i.IssuedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
