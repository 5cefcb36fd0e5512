package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dealership_api/internal/domain"
)

type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects and pings once. The returned store owns the client.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", classify(err))
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", classify(err))
	}
	return New(client, cfg.Database), nil
}

func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

func (s *Store) coll(c domain.Collection) *mongo.Collection {
	return s.db.Collection(string(c))
}

func (s *Store) Insert(ctx context.Context, c domain.Collection, d domain.Document) (domain.Document, error) {
	oid := primitive.NewObjectID()
	in := toBSON(d)
	in[domain.IDField] = oid
	if _, err := s.coll(c).InsertOne(ctx, in); err != nil {
		return nil, fmt.Errorf("insert %s: %w", c, classify(err))
	}
	saved := d.Clone()
	saved[domain.IDField] = oid.Hex()
	return saved, nil
}

func (s *Store) InsertMany(ctx context.Context, c domain.Collection, ds []domain.Document) (int, error) {
	if len(ds) == 0 {
		return 0, nil
	}
	batch := make([]any, 0, len(ds))
	for _, d := range ds {
		in := toBSON(d)
		in[domain.IDField] = primitive.NewObjectID()
		batch = append(batch, in)
	}
	res, err := s.coll(c).InsertMany(ctx, batch)
	if err != nil {
		n := 0
		if res != nil {
			n = len(res.InsertedIDs)
		}
		return n, fmt.Errorf("insert many %s: %w", c, classify(err))
	}
	return len(res.InsertedIDs), nil
}

func (s *Store) DeleteAll(ctx context.Context, c domain.Collection) (int64, error) {
	res, err := s.coll(c).DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", c, classify(err))
	}
	return res.DeletedCount, nil
}

func (s *Store) Find(ctx context.Context, c domain.Collection, f domain.Filter) ([]domain.Document, error) {
	q := bson.M{}
	for k, v := range f {
		// a string equality never matches other BSON types
		q[k] = v
	}
	cursor, err := s.coll(c).Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c, classify(err))
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("read %s: %w", c, classify(err))
	}
	out := make([]domain.Document, 0, len(raw))
	for _, m := range raw {
		out = append(out, fromBSON(m))
	}
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, c domain.Collection, id string) (domain.Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// never issued by this store, so no such document exists
		return nil, fmt.Errorf("%s %s: %w", c, id, domain.ErrNotFound)
	}
	var m bson.M
	if err := s.coll(c).FindOne(ctx, bson.M{domain.IDField: oid}).Decode(&m); err != nil {
		return nil, fmt.Errorf("find %s %s: %w", c, id, classify(err))
	}
	return fromBSON(m), nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return classify(err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// classify maps driver errors onto the domain kinds.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%v: %w", err, domain.ErrNotFound)
	case errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		mongo.IsNetworkError(err),
		mongo.IsTimeout(err):
		return fmt.Errorf("%v: %w", err, domain.ErrStorageUnavailable)
	}
	var sse mongo.ServerError
	if errors.As(err, &sse) {
		return fmt.Errorf("%v: %w", err, domain.ErrInternal)
	}
	// server selection failures surface as plain topology errors
	return fmt.Errorf("%v: %w", err, domain.ErrStorageUnavailable)
}
