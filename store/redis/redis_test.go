package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/artboard"
	"github.com/gogpu/artboard/store"
	"github.com/gogpu/artboard/store/storetest"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		client, _ := setupRedis(t)
		return New(client)
	})
}

func TestKeys(t *testing.T) {
	client, mr := setupRedis(t)
	s := New(client, WithPrefix("test:"))
	p, err := s.Create(context.Background(), "gen-1", artboard.NewProject("", "a.png", 10, 10))
	require.NoError(t, err)

	assert.True(t, mr.Exists("test:project:"+p.ID))
	id, err := mr.Get("test:generation:gen-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, id)

	raw, err := mr.Get("test:project:" + p.ID)
	require.NoError(t, err)
	assert.Contains(t, raw, `"generationId":"gen-1"`)
}

func TestTTL(t *testing.T) {
	client, mr := setupRedis(t)
	s := New(client, WithTTL(time.Hour))
	ctx := context.Background()
	p, err := s.Create(ctx, "gen-ttl", artboard.NewProject("", "a.png", 10, 10))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL(DefaultPrefix+"project:"+p.ID))
	assert.Equal(t, time.Hour, mr.TTL(DefaultPrefix+"generation:gen-ttl"))

	mr.FastForward(30 * time.Minute)
	_, err = s.Update(ctx, p.ID, artboard.Patch{})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL(DefaultPrefix+"project:"+p.ID), "update refreshes the ttl")

	mr.FastForward(2 * time.Hour)
	_, err = s.Get(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCorruptDocument(t *testing.T) {
	client, mr := setupRedis(t)
	require.NoError(t, mr.Set(DefaultPrefix+"project:bad", "{not json"))
	_, err := New(client).Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestServerDown(t *testing.T) {
	client, mr := setupRedis(t)
	s := New(client)
	mr.Close()
	_, err := s.Get(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	s, err := Open(context.Background(), addr, "", 0)
	require.NoError(t, err)
	defer s.Close()

	mr.Close()
	_, err = Open(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
