package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakePgx keeps rows in a map and dispatches on the statement verb.
type fakePgx struct {
	rows map[string]string
}

type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.value
	return nil
}

func (f *fakePgx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	key := args[0].(string)
	switch {
	case strings.Contains(sql, "INSERT"):
		f.rows[key] = args[1].(string)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.Contains(sql, "DELETE"):
		if _, ok := f.rows[key]; !ok {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		delete(f.rows, key)
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag{}, nil
}

func (f *fakePgx) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	v, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{value: v}
}

func repositories(t *testing.T) map[string]CredentialRepository {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]CredentialRepository{
		"memory":   NewMemoryCredentialRepository(),
		"file":     NewFileCredentialRepository(filepath.Join(t.TempDir(), "nested", "token")),
		"redis":    NewRedisCredentialRepository(rdb, "token"),
		"postgres": NewPostgresCredentialRepository(&fakePgx{rows: map[string]string{}}, "token"),
	}
}

func TestCredentialRepositoryContract(t *testing.T) {
	ctx := context.Background()

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Load(ctx)
			require.ErrorIs(t, err, ErrNoCredential)

			require.NoError(t, repo.Save(ctx, "T1"))
			got, err := repo.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, "T1", got)

			require.NoError(t, repo.Save(ctx, "T2"))
			got, err = repo.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, "T2", got)

			require.NoError(t, repo.Clear(ctx))
			require.NoError(t, repo.Clear(ctx))
			_, err = repo.Load(ctx)
			require.ErrorIs(t, err, ErrNoCredential)
		})
	}
}

func TestFileRepositoryPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	repo := NewFileCredentialRepository(path)

	require.NoError(t, repo.Save(context.Background(), "secret"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileRepositoryBlankFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	_, err := NewFileCredentialRepository(path).Load(context.Background())
	require.ErrorIs(t, err, ErrNoCredential)
}

func TestRedisRepositoryNamespacesKey(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	require.NoError(t, NewRedisCredentialRepository(rdb, "token").Save(context.Background(), "T1"))
	got, err := mr.Get("console:credential:token")
	require.NoError(t, err)
	require.Equal(t, "T1", got)
}
