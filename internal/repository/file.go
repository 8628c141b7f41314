package repository

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/nimbusvault/nimbusvault/internal/model"
)

type FileRepository interface {
	Upsert(record *model.FileRecord) error
	Remove(owner, filename string) error
	ByOwner(owner string) ([]*model.FileRecord, error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Upsert(record *model.FileRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	query := `INSERT INTO files (id, owner, filename, storage_key, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          ON CONFLICT (owner, filename) DO UPDATE SET storage_key = excluded.storage_key`

	_, err := r.db.Exec(query, record.ID, record.Owner, record.Filename, record.StorageKey, record.CreatedAt)
	return err
}

// Remove is idempotent: removing a record that does not exist is not an error,
// so a retried delete after a crash between object and metadata deletion is safe.
func (r *fileRepository) Remove(owner, filename string) error {
	query := `DELETE FROM files WHERE owner = $1 AND filename = $2`

	_, err := r.db.Exec(query, owner, filename)
	return err
}

// ByOwner exists for auditing; the upload/list/download path never reads the
// index because storage keys are recomputed deterministically.
func (r *fileRepository) ByOwner(owner string) ([]*model.FileRecord, error) {
	var records []*model.FileRecord
	query := `SELECT * FROM files WHERE owner = $1 ORDER BY created_at DESC`

	err := r.db.Select(&records, query, owner)
	if err != nil {
		return nil, err
	}

	return records, nil
}
