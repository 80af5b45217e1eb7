package cache

import (
	"context"
	"regexp"

	"torrent-info/common/model"

	"github.com/juju/errors"
	"github.com/kamva/mgm/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBackend stores torrents in the mgm collection of model.Torrent.
type MongoBackend struct {
	coll *mgm.Collection
}

var _ Backend = (*MongoBackend)(nil)

// InitMongo sets up the default mgm connection.
func InitMongo(dbName, uri string) error {
	return mgm.SetDefaultConfig(nil, dbName, options.Client().ApplyURI(uri))
}

func OpenMongo(dbName, uri string) (*MongoBackend, error) {
	err := InitMongo(dbName, uri)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &MongoBackend{coll: mgm.Coll(&model.Torrent{})}, nil
}

func (m *MongoBackend) Get(ctx context.Context, hash string) (*model.Torrent, error) {
	t := &model.Torrent{}
	err := m.coll.FindByIDWithCtx(ctx, hash, t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Trace(err)
	}
	return t, nil
}

func (m *MongoBackend) Put(ctx context.Context, t *model.Torrent) error {
	opts := options.Replace().SetUpsert(true)
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": t.InfoHash}, t, opts)
	return errors.Trace(err)
}

func (m *MongoBackend) Delete(ctx context.Context, hashes ...string) error {
	_, err := m.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": hashes}})
	return errors.Trace(err)
}

func (m *MongoBackend) Clear(ctx context.Context) error {
	_, err := m.coll.DeleteMany(ctx, bson.M{})
	return errors.Trace(err)
}

func (m *MongoBackend) Scan(ctx context.Context, f *Filter) ([]*model.Torrent, error) {
	ret := make([]*model.Torrent, 0)
	err := m.coll.SimpleFindWithCtx(ctx, &ret, mongoQuery(f))
	if err != nil {
		return nil, errors.Trace(err)
	}
	return ret, nil
}

func mongoQuery(f *Filter) bson.M {
	if f.Name != "" {
		return bson.M{"name": bson.M{"$regex": regexp.QuoteMeta(f.Name)}}
	}
	if len(f.Hashes) != 0 {
		return bson.M{"_id": bson.M{"$in": f.Hashes}}
	}
	return bson.M{}
}

func (m *MongoBackend) Len(ctx context.Context) (int, error) {
	n, err := m.coll.CountDocuments(ctx, bson.M{})
	return int(n), errors.Trace(err)
}

func (m *MongoBackend) Close() error {
	_, client, _, err := mgm.DefaultConfigs()
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(client.Disconnect(mgm.Ctx()))
}
