package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/nimbusvault/nimbusvault/internal/model"
	"github.com/nimbusvault/nimbusvault/internal/service"
	"github.com/nimbusvault/nimbusvault/internal/storage"
	"github.com/nimbusvault/nimbusvault/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockGateway is a mock implementation of storage.Gateway
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) PresignUpload(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) PresignDownload(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) List(ctx context.Context, owner string) ([]storage.ObjectInfo, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.ObjectInfo), args.Error(1)
}

func (m *mockGateway) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// fakeFileRepo is an in-memory FileRepository with upsert semantics.
type fakeFileRepo struct {
	mu      sync.Mutex
	records map[string]*model.FileRecord // owner + "\x00" + filename
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{records: make(map[string]*model.FileRecord)}
}

func (r *fakeFileRepo) key(owner, filename string) string {
	return owner + "\x00" + filename
}

func (r *fakeFileRepo) Upsert(record *model.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := *record
	r.records[r.key(record.Owner, record.Filename)] = &rec
	return nil
}

func (r *fakeFileRepo) Remove(owner, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, r.key(owner, filename))
	return nil
}

func (r *fakeFileRepo) ByOwner(owner string) ([]*model.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.FileRecord
	for _, rec := range r.records {
		if rec.Owner == owner {
			c := *rec
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) get(owner, filename string) *model.FileRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[r.key(owner, filename)]
}

func TestUploadURLScopesKeyAndRecordsUpload(t *testing.T) {
	gw := new(mockGateway)
	repo := newFakeFileRepo()
	svc := service.NewFileService(repo, gw)

	gw.On("PresignUpload", mock.Anything, "alice/report.txt").
		Return("https://bucket.example/alice/report.txt?sig=abc", nil)

	url, err := svc.UploadURL(context.Background(), "alice", "report.txt")
	require.NoError(t, err)
	assert.Contains(t, url, "alice/report.txt")

	record := repo.get("alice", "report.txt")
	require.NotNil(t, record)
	assert.Equal(t, "alice/report.txt", record.StorageKey)

	gw.AssertExpectations(t)
}

func TestUploadURLRejectsPathEscapes(t *testing.T) {
	gw := new(mockGateway)
	svc := service.NewFileService(newFakeFileRepo(), gw)

	for _, filename := range []string{"", "../other/creds.txt", "a/b.txt", ".."} {
		_, err := svc.UploadURL(context.Background(), "alice", filename)
		assert.True(t, validation.IsValidationError(err), "filename %q must be rejected", filename)
	}

	// No key is ever constructed for a rejected filename
	gw.AssertNotCalled(t, "PresignUpload", mock.Anything, mock.Anything)
}

func TestDownloadURLNotFound(t *testing.T) {
	gw := new(mockGateway)
	svc := service.NewFileService(newFakeFileRepo(), gw)

	gw.On("PresignDownload", mock.Anything, "alice/ghost.txt").
		Return("", storage.ErrObjectNotFound)

	_, err := svc.DownloadURL(context.Background(), "alice", "ghost.txt")
	assert.ErrorIs(t, err, service.ErrFileNotFound)
}

func TestDownloadURLSuccess(t *testing.T) {
	gw := new(mockGateway)
	svc := service.NewFileService(newFakeFileRepo(), gw)

	gw.On("PresignDownload", mock.Anything, "alice/report.txt").
		Return("https://bucket.example/alice/report.txt?sig=get", nil)

	url, err := svc.DownloadURL(context.Background(), "alice", "report.txt")
	require.NoError(t, err)
	assert.Contains(t, url, "sig=get")
}

func TestDeleteRemovesObjectThenRecord(t *testing.T) {
	gw := new(mockGateway)
	repo := newFakeFileRepo()
	svc := service.NewFileService(repo, gw)

	require.NoError(t, repo.Upsert(&model.FileRecord{
		Owner: "alice", Filename: "report.txt", StorageKey: "alice/report.txt",
	}))

	gw.On("Delete", mock.Anything, "alice/report.txt").Return(nil)

	require.NoError(t, svc.Delete(context.Background(), "alice", "report.txt"))
	assert.Nil(t, repo.get("alice", "report.txt"))
	gw.AssertExpectations(t)
}

func TestDeleteKeepsRecordWhenObjectDeletionFails(t *testing.T) {
	gw := new(mockGateway)
	repo := newFakeFileRepo()
	svc := service.NewFileService(repo, gw)

	require.NoError(t, repo.Upsert(&model.FileRecord{
		Owner: "alice", Filename: "report.txt", StorageKey: "alice/report.txt",
	}))

	gw.On("Delete", mock.Anything, "alice/report.txt").Return(assert.AnError)

	err := svc.Delete(context.Background(), "alice", "report.txt")
	require.Error(t, err)
	// Object deletion comes first; on failure the index is untouched
	assert.NotNil(t, repo.get("alice", "report.txt"))
}

func TestListPassesThroughOwnerScope(t *testing.T) {
	gw := new(mockGateway)
	svc := service.NewFileService(newFakeFileRepo(), gw)

	gw.On("List", mock.Anything, "alice").Return([]storage.ObjectInfo{
		{Key: "report.txt", Size: 42},
	}, nil)

	files, err := svc.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "report.txt", files[0].Key)
	assert.Equal(t, int64(42), files[0].Size)
}
