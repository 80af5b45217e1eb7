// Package cache persists resolved torrents by info hash.
package cache

import (
	"context"
	"sort"
	"strings"

	"torrent-info/common/errs"
	"torrent-info/common/model"

	"github.com/juju/errors"
)

const DefaultPageSize = 20

// Backend stores torrents keyed by lower-case hex info hash. Get returns nil
// without error for a missing key.
type Backend interface {
	Get(ctx context.Context, hash string) (*model.Torrent, error)
	Put(ctx context.Context, t *model.Torrent) error
	Delete(ctx context.Context, hashes ...string) error
	Clear(ctx context.Context) error
	Scan(ctx context.Context, f *Filter) ([]*model.Torrent, error)
	Len(ctx context.Context) (int, error)
	Close() error
}

// Filter selects entries by name substring or by hash. A non-empty Name
// takes precedence over Hashes.
type Filter struct {
	Name   string
	Hashes []string
}

func (f *Filter) normalize() *Filter {
	if f == nil {
		return &Filter{}
	}
	ret := &Filter{Name: strings.TrimSpace(f.Name)}
	if ret.Name != "" {
		return ret
	}
	seen := make(map[string]struct{}, len(f.Hashes))
	for _, h := range f.Hashes {
		h = NormalizeHash(h)
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		ret.Hashes = append(ret.Hashes, h)
	}
	return ret
}

// Match reports whether t passes a normalized filter.
func (f *Filter) Match(t *model.Torrent) bool {
	if f.Name != "" {
		return strings.Contains(t.Name, f.Name)
	}
	if len(f.Hashes) != 0 {
		for _, h := range f.Hashes {
			if h == t.InfoHash {
				return true
			}
		}
		return false
	}
	return true
}

func NormalizeHash(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

type Cache struct {
	backend  Backend
	pageSize int
}

func New(backend Backend, pageSize int) *Cache {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Cache{backend: backend, pageSize: pageSize}
}

func (c *Cache) Get(ctx context.Context, hash string) (*model.Torrent, error) {
	t, err := c.backend.Get(ctx, NormalizeHash(hash))
	if err != nil {
		return nil, errs.Wrap(errs.KindCache, err, "failed to read %s", hash)
	}
	return t, nil
}

// Set stores t under its info hash, replacing any previous entry.
func (c *Cache) Set(ctx context.Context, t *model.Torrent) error {
	if t == nil || !t.Valid() {
		return errs.Invalidf("refusing to cache an incomplete torrent")
	}
	entry := *t
	entry.InfoHash = NormalizeHash(t.InfoHash)
	err := c.backend.Put(ctx, &entry)
	if err != nil {
		return errs.Wrap(errs.KindCache, err, "failed to write %s", entry.InfoHash)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, hashes ...string) error {
	keys := (&Filter{Hashes: hashes}).normalize().Hashes
	if len(keys) == 0 {
		return nil
	}
	err := c.backend.Delete(ctx, keys...)
	if err != nil {
		return errs.Wrap(errs.KindCache, err, "failed to delete %d entries", len(keys))
	}
	return nil
}

func (c *Cache) Clear(ctx context.Context) error {
	err := c.backend.Clear(ctx)
	if err != nil {
		return errs.Wrap(errs.KindCache, err, "failed to clear")
	}
	return nil
}

func (c *Cache) Len(ctx context.Context) (int, error) {
	n, err := c.backend.Len(ctx)
	if err != nil {
		return 0, errs.Wrap(errs.KindCache, err, "failed to count entries")
	}
	return n, nil
}

// List returns the entries passing f, newest creation date first, and their
// total count before paging. A nil page returns every entry.
func (c *Cache) List(ctx context.Context, f *Filter, page *int) ([]*model.Torrent, int, error) {
	if page != nil && *page < 0 {
		return nil, 0, errs.Invalidf("negative page offset %d", *page)
	}
	entries, err := c.backend.Scan(ctx, f.normalize())
	if err != nil {
		return nil, 0, errs.Wrap(errs.KindCache, err, "failed to list entries")
	}
	SortByCreationDate(entries)
	total := len(entries)
	if page != nil {
		entries = Paginate(entries, *page, c.pageSize)
	}
	return entries, total, nil
}

func (c *Cache) Close() error {
	return errors.Trace(c.backend.Close())
}

// SortByCreationDate orders newest first, ties broken by info hash.
func SortByCreationDate(entries []*model.Torrent) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.CreationDate.Equal(b.CreationDate) {
			return a.CreationDate.After(b.CreationDate)
		}
		return a.InfoHash < b.InfoHash
	})
}

// Paginate slices entries at offset. Offset 0 is the first page and an
// offset at or past the end yields an empty page.
func Paginate(entries []*model.Torrent, offset, size int) []*model.Torrent {
	if offset >= len(entries) {
		return []*model.Torrent{}
	}
	end := offset + size
	if end > len(entries) {
		end = len(entries)
	}
	return entries[offset:end]
}
