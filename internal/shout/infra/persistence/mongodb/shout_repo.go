package mongodb

import (
	"context"
	"errors"
	"time"

	"WorldRepublic/internal/shout/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultShoutCollectionName = "shouts"

// shoutDoc 是动态聚合的文档形态（字段少，不单设 model 包）。
type shoutDoc struct {
	ID        string    `bson:"_id"`
	Version   uint64    `bson:"version"`
	Author    string    `bson:"author"`
	Message   string    `bson:"message"`
	Likes     []string  `bson:"likes,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

func toDoc(s *domain.Shout) shoutDoc {
	return shoutDoc{
		ID:        s.ID,
		Version:   s.Version,
		Author:    s.Author,
		Message:   s.Message,
		Likes:     s.Likes,
		CreatedAt: s.CreatedAt,
	}
}

func toShout(d shoutDoc) *domain.Shout {
	return &domain.Shout{
		ID:        d.ID,
		Version:   d.Version,
		Author:    d.Author,
		Message:   d.Message,
		Likes:     d.Likes,
		CreatedAt: d.CreatedAt,
	}
}

// ShoutRepo 实现 app.ShoutRepo，Save 按 (_id, version) 做 CAS。
type ShoutRepo struct {
	coll *mongo.Collection
}

func NewShoutRepo(db *mongo.Database) *ShoutRepo {
	if db == nil {
		return &ShoutRepo{}
	}
	return &ShoutRepo{coll: db.Collection(defaultShoutCollectionName)}
}

func (r *ShoutRepo) Get(ctx context.Context, id string) (*domain.Shout, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb shout collection is nil")
	}
	var doc shoutDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrShoutNotFound
		}
		return nil, err
	}
	return toShout(doc), nil
}

func (r *ShoutRepo) ListByAuthors(ctx context.Context, authors []string, limit int) ([]*domain.Shout, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb shout collection is nil")
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cur, err := r.coll.Find(ctx, bson.M{"author": bson.M{"$in": authors}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Shout
	for cur.Next(ctx) {
		var doc shoutDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, toShout(doc))
	}
	return out, cur.Err()
}

func (r *ShoutRepo) Create(ctx context.Context, s *domain.Shout) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb shout collection is nil")
	}
	_, err := r.coll.InsertOne(ctx, toDoc(s))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrVersionConflict
	}
	return err
}

func (r *ShoutRepo) Save(ctx context.Context, s *domain.Shout) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb shout collection is nil")
	}
	doc := toDoc(s)
	doc.Version = s.Version + 1

	res, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": s.ID, "version": s.Version},
		doc,
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}
	s.Version = doc.Version
	return nil
}
