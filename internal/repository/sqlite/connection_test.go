package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ameyamatmk/voice-diary/internal/model"
	"github.com/ameyamatmk/voice-diary/internal/testutil"
)

func TestNewConnection_EmptyPath(t *testing.T) {
	_, err := NewConnection(context.Background(), "  ", testutil.MakeNoopLogger())
	require.Error(t, err)
}

func TestCredentialRepository_SQLite(t *testing.T) {
	paths := map[string]string{
		"memory": MemoryPath,
		"file":   filepath.Join(t.TempDir(), "vault.db"),
	}

	for name, path := range paths {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			conn, err := NewConnection(ctx, path, testutil.MakeNoopLogger())
			require.NoError(t, err)
			t.Cleanup(func() { _ = conn.Close() })
			require.NoError(t, conn.PingContext(ctx))

			repo := NewCredentialRepository(conn)
			cred := model.StoredCredential{
				ID:             []byte{0xfb, 0xff, 0x01},
				RelyingPartyID: "localhost",
				UserHandle:     []byte("alice-handle"),
				UserName:       "alice",
				PrivateKey:     []byte("der"),
				CreatedAt:      time.Now(),
			}
			require.NoError(t, repo.Create(ctx, cred))

			dup := cred
			dup.ID = []byte{0x02}
			assert.ErrorIs(t, repo.Create(ctx, dup), model.ErrInvalidState)

			got, err := repo.GetByID(ctx, cred.ID)
			require.NoError(t, err)
			assert.Equal(t, cred.UserHandle, got.UserHandle)
			assert.Nil(t, got.LastUsedAt)

			count, err := repo.IncrementSignCount(ctx, cred.ID, time.Now())
			require.NoError(t, err)
			assert.Equal(t, uint32(1), count)

			list, err := repo.ListByRelyingParty(ctx, "localhost")
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, uint32(1), list[0].SignCount)
			assert.NotNil(t, list[0].LastUsedAt)

			other, err := repo.ListByRelyingParty(ctx, "example.com")
			require.NoError(t, err)
			assert.Empty(t, other)

			require.NoError(t, repo.Delete(ctx, cred.ID))
			_, err = repo.GetByID(ctx, cred.ID)
			assert.ErrorIs(t, err, model.ErrNotFound)
		})
	}
}

func TestNewConnection_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vault.db")

	conn, err := NewConnection(ctx, path, testutil.MakeNoopLogger())
	require.NoError(t, err)
	require.NoError(t, NewCredentialRepository(conn).Create(ctx, model.StoredCredential{
		ID: []byte{1}, RelyingPartyID: "localhost", UserHandle: []byte("h"), UserName: "alice",
		PrivateKey: []byte("k"), CreatedAt: time.Now(),
	}))
	require.NoError(t, conn.Close())

	conn, err = NewConnection(ctx, path, testutil.MakeNoopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	got, err := NewCredentialRepository(conn).GetByID(ctx, []byte{1})
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserName)
}
