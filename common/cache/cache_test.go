package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"torrent-info/common/errs"
	"torrent-info/common/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newTestCache(t *testing.T) *Cache {
	backend, err := OpenBolt(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	c := New(backend, 0)
	t.Cleanup(func() { c.Close() })
	return c
}

func entry(i int, name string) *model.Torrent {
	return &model.Torrent{
		InfoHash:     fmt.Sprintf("%040x", i),
		Name:         name,
		TotalSize:    int64(i),
		NumFiles:     1,
		Files:        []*model.File{{Path: name, Size: int64(i)}},
		CreationDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
	}
}

func TestCacheGetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)
	e := entry(1, "one")

	got, err := c.Get(ctx, e.InfoHash)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, e))
	got, err = c.Get(ctx, e.InfoHash)
	require.NoError(t, err)
	assert.Equal(t, e, got)

	require.NoError(t, c.Delete(ctx, e.InfoHash))
	got, err = c.Get(ctx, e.InfoHash)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheSetReplaces(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)
	e := entry(2, "old")
	require.NoError(t, c.Set(ctx, e))
	newer := entry(2, "new")
	require.NoError(t, c.Set(ctx, newer))
	got, err := c.Get(ctx, e.InfoHash)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)
	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCacheSetKeepsCallerEntry(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)
	e := entry(0xab, "upper")
	e.InfoHash = fmt.Sprintf("%040X", 0xab)
	require.NoError(t, c.Set(ctx, e))
	assert.Equal(t, fmt.Sprintf("%040X", 0xab), e.InfoHash)

	got, err := c.Get(ctx, fmt.Sprintf("%040x", 0xab))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, fmt.Sprintf("%040x", 0xab), got.InfoHash)
	assert.Equal(t, "upper", got.Name)
}

func TestCacheRejectsIncomplete(t *testing.T) {
	c := newTestCache(t)
	e := entry(3, "bad")
	e.TotalSize = 99
	assert.True(t, errs.IsKind(c.Set(context.Background(), e), errs.KindInvalid))
	assert.True(t, errs.IsKind(c.Set(context.Background(), nil), errs.KindInvalid))
}

func TestCacheClear(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, c.Set(ctx, entry(i, "x")))
	}
	require.NoError(t, c.Clear(ctx))
	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	list, total, err := c.List(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 0, total)
}

func TestCacheListPaging(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)
	for i := 0; i < 25; i++ {
		require.NoError(t, c.Set(ctx, entry(i, fmt.Sprintf("item-%02d", i))))
	}

	page := 0
	list, total, err := c.List(ctx, nil, &page)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	if assert.Len(t, list, 20) {
		assert.Equal(t, "item-24", list[0].Name)
		for i := 1; i < len(list); i++ {
			assert.True(t, list[i-1].CreationDate.After(list[i].CreationDate))
		}
	}

	page = 20
	list, _, err = c.List(ctx, nil, &page)
	require.NoError(t, err)
	if assert.Len(t, list, 5) {
		assert.Equal(t, "item-04", list[0].Name)
	}

	page = 3
	list, _, err = c.List(ctx, nil, &page)
	require.NoError(t, err)
	if assert.Len(t, list, 20) {
		assert.Equal(t, "item-21", list[0].Name)
	}

	page = 25
	list, total, err = c.List(ctx, nil, &page)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 25, total)

	list, _, err = c.List(ctx, nil, nil)
	require.NoError(t, err)
	assert.Len(t, list, 25)

	page = -1
	_, _, err = c.List(ctx, nil, &page)
	assert.True(t, errs.IsKind(err, errs.KindInvalid))
}

func TestCacheListFilter(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)
	require.NoError(t, c.Set(ctx, entry(1, "Ubuntu 22.04")))
	require.NoError(t, c.Set(ctx, entry(2, "ubuntu server")))
	require.NoError(t, c.Set(ctx, entry(3, "Debian")))

	list, total, err := c.List(ctx, &Filter{Name: "  Ubuntu "}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Ubuntu 22.04", list[0].Name)

	hashes := []string{entry(3, "").InfoHash, "FFFF" + entry(9, "").InfoHash[4:], entry(1, "").InfoHash, entry(3, "").InfoHash}
	list, total, err = c.List(ctx, &Filter{Hashes: hashes}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "Debian", list[0].Name)
	assert.Equal(t, "Ubuntu 22.04", list[1].Name)

	// Name wins over hashes.
	list, _, err = c.List(ctx, &Filter{Name: "Debian", Hashes: []string{entry(1, "").InfoHash}}, nil)
	require.NoError(t, err)
	if assert.Len(t, list, 1) {
		assert.Equal(t, "Debian", list[0].Name)
	}
}

func TestCacheDeleteMany(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)
	for i := 0; i < 4; i++ {
		require.NoError(t, c.Set(ctx, entry(i, "x")))
	}
	require.NoError(t, c.Delete(ctx, entry(0, "").InfoHash, " "+entry(2, "").InfoHash, "", "missing"))
	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCachePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")
	backend, err := OpenBolt(path)
	require.NoError(t, err)
	c := New(backend, 20)
	require.NoError(t, c.Set(ctx, entry(7, "kept")))
	require.NoError(t, c.Close())

	backend, err = OpenBolt(path)
	require.NoError(t, err)
	c = New(backend, 20)
	defer c.Close()
	got, err := c.Get(ctx, entry(7, "").InfoHash)
	require.NoError(t, err)
	if assert.NotNil(t, got) {
		assert.Equal(t, "kept", got.Name)
	}
}

func TestMongoQuery(t *testing.T) {
	assert.Equal(t, bson.M{}, mongoQuery(&Filter{}))
	assert.Equal(t, bson.M{"name": bson.M{"$regex": `a\.b`}}, mongoQuery(&Filter{Name: "a.b"}))
	assert.Equal(t, bson.M{"_id": bson.M{"$in": []string{"x"}}}, mongoQuery(&Filter{Hashes: []string{"x"}}))
}
