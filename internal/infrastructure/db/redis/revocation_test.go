package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRevocationList(t *testing.T) (*TokenRevocationList, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewTokenRevocationList(client), mr
}

func TestTokenRevocationList_RevokeAndCheck(t *testing.T) {
	list, mr := setupRevocationList(t)
	ctx := context.Background()

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists("revoked:jti-1"))

	mr.FastForward(2 * time.Hour)
	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenRevocationList_SkipsExpiredTokens(t *testing.T) {
	list, mr := setupRevocationList(t)

	require.NoError(t, list.Revoke(context.Background(), "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists("revoked:old"))
}

func TestTokenRevocationList_StoreDown(t *testing.T) {
	list, mr := setupRevocationList(t)
	mr.Close()

	_, err := list.IsRevoked(context.Background(), "jti-1")
	assert.Error(t, err)
}
