package preset

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/settings"
)

// Defaults for MongoConfig.
const (
	DefaultMongoURI        = "mongodb://localhost:27017"
	DefaultMongoDatabase   = "easel"
	DefaultMongoCollection = "presets"
	defaultMongoTimeout    = 10 * time.Second
)

// MongoConfig configures a MongoCollection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoCollection stores presets as documents keyed by a unique,
// case-folded name.
type MongoCollection struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoDoc is the stored document. Settings hold the versioned JSON
// encoding so older documents can still be decoded.
type mongoDoc struct {
	ID        string    `bson:"_id"`
	Key       string    `bson:"key"`
	Name      string    `bson:"name"`
	Settings  string    `bson:"settings"`
	CreatedAt time.Time `bson:"created_at"`
}

// NewMongoCollection connects, pings the primary and ensures the unique
// name index.
func NewMongoCollection(ctx context.Context, cfg MongoConfig) (*MongoCollection, error) {
	if cfg.URI == "" {
		cfg.URI = DefaultMongoURI
	}
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultMongoTimeout
	}

	opts := options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(cfg.Timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongodb")
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("preset_key"),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create preset index")
	}
	return &MongoCollection{client: client, coll: coll}, nil
}

func nameKey(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

func (c *MongoCollection) Save(ctx context.Context, sp settings.SharedPreset) (settings.SharedPreset, error) {
	sp = stamp(sp)
	if err := validate(sp); err != nil {
		return settings.SharedPreset{}, err
	}
	encoded, err := settings.Encode(sp.Settings)
	if err != nil {
		return settings.SharedPreset{}, err
	}

	update := bson.M{
		"$set": bson.M{
			"name":     sp.Name,
			"settings": string(encoded),
		},
		"$setOnInsert": bson.M{
			"_id":        sp.ID.String(),
			"created_at": sp.CreatedAt,
		},
	}
	_, err = c.coll.UpdateOne(ctx, bson.M{"key": nameKey(sp.Name)}, update, options.Update().SetUpsert(true))
	if err != nil {
		return settings.SharedPreset{}, errors.Wrap(errors.ErrCodeStorage, err, "save preset %q", sp.Name)
	}
	return c.Get(ctx, sp.Name)
}

func (c *MongoCollection) Get(ctx context.Context, name string) (settings.SharedPreset, error) {
	var doc mongoDoc
	err := c.coll.FindOne(ctx, bson.M{"key": nameKey(name)}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return settings.SharedPreset{}, notFound(name)
	}
	if err != nil {
		return settings.SharedPreset{}, errors.Wrap(errors.ErrCodeStorage, err, "load preset %q", name)
	}
	return doc.preset()
}

func (c *MongoCollection) List(ctx context.Context) ([]settings.SharedPreset, error) {
	cur, err := c.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "key", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list presets")
	}
	var docs []mongoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list presets")
	}

	out := make([]settings.SharedPreset, 0, len(docs))
	for _, d := range docs {
		sp, err := d.preset()
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	sortByName(out)
	return out, nil
}

func (c *MongoCollection) Delete(ctx context.Context, name string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"key": nameKey(name)})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete preset %q", name)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

// Close disconnects the client.
func (c *MongoCollection) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

func (d mongoDoc) preset() (settings.SharedPreset, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return settings.SharedPreset{}, errors.Wrap(errors.ErrCodeInvalidPreset, err, "preset %q has a bad id", d.Name)
	}
	p, err := settings.Decode([]byte(d.Settings))
	if err != nil {
		return settings.SharedPreset{}, errors.Wrap(errors.ErrCodeInvalidPreset, err, "preset %q", d.Name)
	}
	return settings.SharedPreset{ID: id, Name: d.Name, Settings: p, CreatedAt: d.CreatedAt.UTC()}, nil
}

var _ Collection = (*MongoCollection)(nil)
