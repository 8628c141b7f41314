package model

import (
	"time"
)

// FileRecord is the bookkeeping entry for an uploaded object. StorageKey is
// always exactly owner + "/" + filename; the record caches a deterministically
// derivable value and is never consulted to resolve keys on the request path.
type FileRecord struct {
	ID         string    `db:"id"`
	Owner      string    `db:"owner"`
	Filename   string    `db:"filename"`
	StorageKey string    `db:"storage_key"`
	CreatedAt  time.Time `db:"created_at"`
}
