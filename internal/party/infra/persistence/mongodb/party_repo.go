package mongodb

import (
	"context"
	"errors"
	"time"

	"WorldRepublic/internal/party/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const defaultPartyCollectionName = "parties"

// partyDoc 是政党聚合的文档形态（字段少，不单设 model 包）。
type partyDoc struct {
	ID            string            `bson:"_id"`
	Version       uint64            `bson:"version"`
	Name          string            `bson:"name"`
	Country       string            `bson:"country"`
	President     string            `bson:"president,omitempty"`
	VicePresident string            `bson:"vice_president,omitempty"`
	Members       []string          `bson:"members,omitempty"`
	Stances       map[string]string `bson:"stances,omitempty"`
	CreatedAt     time.Time         `bson:"created_at"`
}

func toDoc(p *domain.Party) partyDoc {
	return partyDoc{
		ID:            p.ID,
		Version:       p.Version,
		Name:          p.Name,
		Country:       p.Country,
		President:     p.President,
		VicePresident: p.VicePresident,
		Members:       p.Members,
		Stances:       p.Stances,
		CreatedAt:     p.CreatedAt,
	}
}

func toParty(d partyDoc) *domain.Party {
	return &domain.Party{
		ID:            d.ID,
		Version:       d.Version,
		Name:          d.Name,
		Country:       d.Country,
		President:     d.President,
		VicePresident: d.VicePresident,
		Members:       d.Members,
		Stances:       d.Stances,
		CreatedAt:     d.CreatedAt,
	}
}

// PartyRepo 实现 app.PartyRepo，Save 按 (_id, version) 做 CAS。
type PartyRepo struct {
	coll *mongo.Collection
}

func NewPartyRepo(db *mongo.Database) *PartyRepo {
	if db == nil {
		return &PartyRepo{}
	}
	return &PartyRepo{coll: db.Collection(defaultPartyCollectionName)}
}

func (r *PartyRepo) Get(ctx context.Context, id string) (*domain.Party, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb party collection is nil")
	}
	var doc partyDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPartyNotFound
		}
		return nil, err
	}
	return toParty(doc), nil
}

func (r *PartyRepo) Create(ctx context.Context, p *domain.Party) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb party collection is nil")
	}
	_, err := r.coll.InsertOne(ctx, toDoc(p))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrVersionConflict
	}
	return err
}

func (r *PartyRepo) Save(ctx context.Context, p *domain.Party) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb party collection is nil")
	}
	doc := toDoc(p)
	doc.Version = p.Version + 1

	res, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": p.ID, "version": p.Version},
		doc,
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}
	p.Version = doc.Version
	return nil
}
