package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nimbusvault/nimbusvault/internal/model"
	"github.com/nimbusvault/nimbusvault/internal/repository"
	"github.com/nimbusvault/nimbusvault/internal/storage"
	"github.com/nimbusvault/nimbusvault/internal/validation"
)

// ErrFileNotFound is returned when a download URL is requested for an object
// the store cannot confirm exists.
var ErrFileNotFound = errors.New("file not found")

type FileService struct {
	fileRepo repository.FileRepository
	gateway  storage.Gateway
}

func NewFileService(fileRepo repository.FileRepository, gateway storage.Gateway) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		gateway:  gateway,
	}
}

// UploadURL issues a presigned PUT URL for owner's filename and records the
// upload in the metadata index. The index entry caches a derivable value;
// keys are never read back from it.
func (s *FileService) UploadURL(ctx context.Context, owner, filename string) (string, error) {
	err := validation.ValidateFilename(filename)
	if err != nil {
		return "", err
	}

	key := storage.KeyFor(owner, filename)

	url, err := s.gateway.PresignUpload(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to presign upload: %w", err)
	}

	record := &model.FileRecord{
		Owner:      owner,
		Filename:   filename,
		StorageKey: key,
		CreatedAt:  time.Now(),
	}
	err = s.fileRepo.Upsert(record)
	if err != nil {
		return "", fmt.Errorf("failed to record upload: %w", err)
	}

	return url, nil
}

// List returns the first page of the owner's objects, names prefix-stripped.
func (s *FileService) List(ctx context.Context, owner string) ([]storage.ObjectInfo, error) {
	return s.gateway.List(ctx, owner)
}

// DownloadURL issues a presigned GET URL. An object whose existence cannot be
// confirmed yields ErrFileNotFound.
func (s *FileService) DownloadURL(ctx context.Context, owner, filename string) (string, error) {
	err := validation.ValidateFilename(filename)
	if err != nil {
		return "", err
	}

	key := storage.KeyFor(owner, filename)

	url, err := s.gateway.PresignDownload(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, filename)
		}
		return "", fmt.Errorf("failed to presign download: %w", err)
	}

	return url, nil
}

// Delete removes the object first, then the metadata record. The two steps
// are not transactional: a crash in between leaves a stale index entry, which
// the idempotent Remove makes safe to clean up on a later delete.
func (s *FileService) Delete(ctx context.Context, owner, filename string) error {
	err := validation.ValidateFilename(filename)
	if err != nil {
		return err
	}

	key := storage.KeyFor(owner, filename)

	err = s.gateway.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	err = s.fileRepo.Remove(owner, filename)
	if err != nil {
		// Object is already gone; the stale record will be cleaned up when
		// the delete is retried.
		slog.Warn("failed to remove file record", "error", err, "owner", owner, "filename", filename)
	}

	return nil
}

// Records returns the metadata index entries for an owner. Audit only; the
// request path never resolves keys through the index.
func (s *FileService) Records(owner string) ([]*model.FileRecord, error) {
	return s.fileRepo.ByOwner(owner)
}
