package db

import (
	"time"
)

type ArtifactLog struct {
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

type KvSlot struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
