package mongodb

import (
	"context"
	"errors"
	"time"

	"WorldRepublic/internal/election/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const defaultElectionCollectionName = "elections"

// electionDoc 是选举聚合的文档形态。
type electionDoc struct {
	ID      string           `bson:"_id"`
	Version uint64           `bson:"version"`
	Type    domain.Type      `bson:"type"`
	Tally   domain.TallyKind `bson:"tally"`

	Country string `bson:"country,omitempty"`
	Party   string `bson:"party,omitempty"`
	Seats   int    `bson:"seats"`

	Status  domain.Status `bson:"status"`
	StartAt time.Time     `bson:"start_at"`
	EndAt   time.Time     `bson:"end_at"`

	Candidates []domain.Candidate `bson:"candidates,omitempty"`
	Winners    []string           `bson:"winners,omitempty"`
}

func toDoc(e *domain.Election) electionDoc {
	return electionDoc{
		ID:         e.ID,
		Version:    e.Version,
		Type:       e.Type,
		Tally:      e.Tally,
		Country:    e.Country,
		Party:      e.Party,
		Seats:      e.Seats,
		Status:     e.Status,
		StartAt:    e.StartAt,
		EndAt:      e.EndAt,
		Candidates: e.Candidates,
		Winners:    e.Winners,
	}
}

func toElection(d electionDoc) *domain.Election {
	return &domain.Election{
		ID:         d.ID,
		Version:    d.Version,
		Type:       d.Type,
		Tally:      d.Tally,
		Country:    d.Country,
		Party:      d.Party,
		Seats:      d.Seats,
		Status:     d.Status,
		StartAt:    d.StartAt,
		EndAt:      d.EndAt,
		Candidates: d.Candidates,
		Winners:    d.Winners,
	}
}

// ElectionRepo 实现 app.ElectionRepo，Save 按 (_id, version) 做 CAS。
type ElectionRepo struct {
	coll *mongo.Collection
}

func NewElectionRepo(db *mongo.Database) *ElectionRepo {
	if db == nil {
		return &ElectionRepo{}
	}
	return &ElectionRepo{coll: db.Collection(defaultElectionCollectionName)}
}

func (r *ElectionRepo) Get(ctx context.Context, id string) (*domain.Election, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb election collection is nil")
	}
	var doc electionDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrElectionNotFound
		}
		return nil, err
	}
	return toElection(doc), nil
}

func (r *ElectionRepo) ListDue(ctx context.Context, now time.Time) ([]*domain.Election, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb election collection is nil")
	}
	filter := bson.M{
		"status": bson.M{"$ne": domain.StatusCompleted},
		"end_at": bson.M{"$lte": now},
	}
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Election
	for cur.Next(ctx) {
		var doc electionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, toElection(doc))
	}
	return out, cur.Err()
}

func (r *ElectionRepo) Create(ctx context.Context, e *domain.Election) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb election collection is nil")
	}
	_, err := r.coll.InsertOne(ctx, toDoc(e))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrVersionConflict
	}
	return err
}

func (r *ElectionRepo) Save(ctx context.Context, e *domain.Election) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb election collection is nil")
	}
	doc := toDoc(e)
	doc.Version = e.Version + 1

	res, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": e.ID, "version": e.Version},
		doc,
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}
	e.Version = doc.Version
	return nil
}
