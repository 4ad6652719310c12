package repository

import (
	"context"
	"errors"
	"sync"
)

// ErrNoCredential is returned by Load when nothing is stored.
var ErrNoCredential = errors.New("no stored credential")

// CredentialRepository persists the single opaque credential across restarts.
// Clear must be idempotent.
type CredentialRepository interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, credential string) error
	Clear(ctx context.Context) error
}

type memoryCredentialRepository struct {
	mu         sync.Mutex
	credential string
	present    bool
}

// NewMemoryCredentialRepository returns a process-local repository.
func NewMemoryCredentialRepository() CredentialRepository {
	return &memoryCredentialRepository{}
}

func (r *memoryCredentialRepository) Load(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.present {
		return "", ErrNoCredential
	}
	return r.credential, nil
}

func (r *memoryCredentialRepository) Save(_ context.Context, credential string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credential = credential
	r.present = true
	return nil
}

func (r *memoryCredentialRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credential = ""
	r.present = false
	return nil
}
