package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	apperrors "github.com/allisson/citadel/internal/errors"
	"github.com/allisson/citadel/internal/keystore/domain"
)

// FileKeyRepository persists each key as its own JSON document under a
// directory, named "<id>.json". Writes are atomic: encode to a temp file in
// the same directory, then rename over the destination, so a crash mid-write
// never leaves a torn file behind.
type FileKeyRepository struct {
	dir string
	mu  sync.RWMutex
}

// NewFileKeyRepository builds a file-backed key repository rooted at dir,
// creating the directory if it does not already exist.
func NewFileKeyRepository(dir string) (*FileKeyRepository, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, apperrors.Wrap(err, "failed to create key storage directory")
	}
	return &FileKeyRepository{dir: dir}, nil
}

func (r *FileKeyRepository) path(id domain.KeyId) (string, error) {
	s := string(id)
	if s == "" || strings.ContainsAny(s, "/\\.") {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "invalid key id")
	}
	return filepath.Join(r.dir, s+".json"), nil
}

// Get reads and decodes the key's record, or returns domain.ErrKeyNotFound.
func (r *FileKeyRepository) Get(_ context.Context, id domain.KeyId) (*domain.KeyMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, err := r.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, &domain.StorageError{Msg: err.Error()}
	}

	var key domain.KeyMetadata
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, &domain.StorageError{Msg: err.Error()}
	}
	return &key, nil
}

// Put encodes and atomically writes the key's record.
func (r *FileKeyRepository) Put(_ context.Context, key *domain.KeyMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.path(key.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		return &domain.StorageError{Msg: err.Error()}
	}

	tmp, err := os.CreateTemp(r.dir, "."+string(key.ID)+".*.tmp")
	if err != nil {
		return &domain.StorageError{Msg: err.Error()}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &domain.StorageError{Msg: err.Error()}
	}
	if err := tmp.Close(); err != nil {
		return &domain.StorageError{Msg: err.Error()}
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return &domain.StorageError{Msg: err.Error()}
	}
	if err := os.Rename(tmpName, p); err != nil {
		return &domain.StorageError{Msg: err.Error()}
	}
	return nil
}

// Delete removes the key's file. A missing file is not an error.
func (r *FileKeyRepository) Delete(_ context.Context, id domain.KeyId) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return &domain.StorageError{Msg: err.Error()}
	}
	return nil
}

// List reads every stored key.
func (r *FileKeyRepository) List(ctx context.Context) ([]*domain.KeyMetadata, error) {
	r.mu.RLock()
	entries, err := os.ReadDir(r.dir)
	r.mu.RUnlock()
	if err != nil {
		return nil, &domain.StorageError{Msg: err.Error()}
	}

	var out []*domain.KeyMetadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := domain.KeyId(strings.TrimSuffix(entry.Name(), ".json"))
		key, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, nil
}

// ListByState filters List by state.
func (r *FileKeyRepository) ListByState(ctx context.Context, state domain.KeyState) ([]*domain.KeyMetadata, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.KeyMetadata
	for _, k := range all {
		if k.State == state {
			out = append(out, k)
		}
	}
	return out, nil
}

// ListByParent filters List by ParentID.
func (r *FileKeyRepository) ListByParent(ctx context.Context, id domain.KeyId) ([]*domain.KeyMetadata, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.KeyMetadata
	for _, k := range all {
		if k.ParentID != nil && *k.ParentID == id {
			out = append(out, k)
		}
	}
	return out, nil
}
