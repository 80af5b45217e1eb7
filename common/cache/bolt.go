package cache

import (
	"context"
	"encoding/json"
	"time"

	"torrent-info/common/model"

	"github.com/juju/errors"
	bolt "go.etcd.io/bbolt"
)

var torrentsBucket = []byte("torrents")

// BoltBackend keeps JSON encoded torrents in a single bbolt bucket.
type BoltBackend struct {
	db *bolt.DB
}

var _ Backend = (*BoltBackend)(nil)

func OpenBolt(path string) (*BoltBackend, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.Annotatef(err, "open %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(torrentsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Trace(err)
	}
	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Get(_ context.Context, hash string) (*model.Torrent, error) {
	var ret *model.Torrent
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(torrentsBucket).Get([]byte(hash))
		if v == nil {
			return nil
		}
		ret = &model.Torrent{}
		return json.Unmarshal(v, ret)
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return ret, nil
}

func (b *BoltBackend) Put(_ context.Context, t *model.Torrent) error {
	buf, err := json.Marshal(t)
	if err != nil {
		return errors.Trace(err)
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(torrentsBucket).Put([]byte(t.InfoHash), buf)
	})
	return errors.Trace(err)
}

func (b *BoltBackend) Delete(_ context.Context, hashes ...string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(torrentsBucket)
		for _, h := range hashes {
			if err := bucket.Delete([]byte(h)); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Trace(err)
}

func (b *BoltBackend) Clear(_ context.Context) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(torrentsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(torrentsBucket)
		return err
	})
	return errors.Trace(err)
}

func (b *BoltBackend) Scan(_ context.Context, f *Filter) ([]*model.Torrent, error) {
	ret := make([]*model.Torrent, 0)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(torrentsBucket)
		if f.Name == "" && len(f.Hashes) != 0 {
			for _, h := range f.Hashes {
				v := bucket.Get([]byte(h))
				if v == nil {
					continue
				}
				t := &model.Torrent{}
				if err := json.Unmarshal(v, t); err != nil {
					return errors.Annotatef(err, "entry %s", h)
				}
				ret = append(ret, t)
			}
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			t := &model.Torrent{}
			if err := json.Unmarshal(v, t); err != nil {
				return errors.Annotatef(err, "entry %s", k)
			}
			if f.Match(t) {
				ret = append(ret, t)
			}
			return nil
		})
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	return ret, nil
}

func (b *BoltBackend) Len(_ context.Context) (int, error) {
	n := 0
	err := b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(torrentsBucket).Stats().KeyN
		return nil
	})
	return n, errors.Trace(err)
}

func (b *BoltBackend) Close() error {
	return errors.Trace(b.db.Close())
}
