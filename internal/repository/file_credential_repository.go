package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type fileCredentialRepository struct {
	path string
}

// NewFileCredentialRepository stores the credential in a single 0600 file.
func NewFileCredentialRepository(path string) CredentialRepository {
	return &fileCredentialRepository{path: path}
}

func (r *fileCredentialRepository) Load(_ context.Context) (string, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("read credential file: %w", err)
	}
	credential := strings.TrimSpace(string(raw))
	if credential == "" {
		return "", ErrNoCredential
	}
	return credential, nil
}

// Save writes through a temp file so a crash never leaves a truncated credential.
func (r *fileCredentialRepository) Save(_ context.Context, credential string) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credential-*")
	if err != nil {
		return fmt.Errorf("create temp credential file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod credential file: %w", err)
	}
	if _, err := tmp.WriteString(credential); err != nil {
		tmp.Close()
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credential file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}

func (r *fileCredentialRepository) Clear(_ context.Context) error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}
