package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stellar-copytrade-lab/internal/domain"
	"stellar-copytrade-lab/internal/storage"
)

func TestAssetCache_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewAssetCache(db, 10*time.Minute)
	assets := []domain.IssuedAssetRef{{Code: "LU", Issuer: "GISSUER"}}
	data, err := json.Marshal(assets)
	require.NoError(t, err)

	mock.ExpectSet("copytrade:domain_assets:lu.meme", data, 10*time.Minute).SetVal("OK")

	require.NoError(t, cache.Set(context.Background(), "lu.meme", assets))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetCache_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewAssetCache(db, 0)

	mock.ExpectGet("copytrade:domain_assets:lu.meme").SetVal(`[{"code":"LU","issuer":"GISSUER"}]`)

	assets, err := cache.Get(context.Background(), "lu.meme")
	require.NoError(t, err)
	assert.Equal(t, []domain.IssuedAssetRef{{Code: "LU", Issuer: "GISSUER"}}, assets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetCache_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewAssetCache(db, 0)

	mock.ExpectGet("copytrade:domain_assets:none.example").RedisNil()

	_, err := cache.Get(context.Background(), "none.example")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAssetCache_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewAssetCache(db, 0)

	mock.ExpectGet("copytrade:domain_assets:lu.meme").SetErr(errors.New("connection reset"))

	_, err := cache.Get(context.Background(), "lu.meme")
	require.Error(t, err)
	assert.False(t, errors.Is(err, storage.ErrNotFound))
}

func TestAssetCache_CorruptValue(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewAssetCache(db, 0)

	mock.ExpectGet("copytrade:domain_assets:lu.meme").SetVal("not json")

	_, err := cache.Get(context.Background(), "lu.meme")
	assert.Error(t, err)
}
