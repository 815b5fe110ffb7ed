package mongodb

import (
	"context"
	"errors"

	"WorldRepublic/internal/citizen/domain"
	"WorldRepublic/internal/citizen/infra/persistence/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const defaultCitizenCollectionName = "citizens"

// CitizenRepo 实现 app.CitizenRepo。
// Save 按 (_id, version) 做 CAS；版本已前进时匹配不到文档，返回版本冲突。
type CitizenRepo struct {
	coll *mongo.Collection
}

func NewCitizenRepo(db *mongo.Database) *CitizenRepo {
	if db == nil {
		return &CitizenRepo{}
	}
	return &CitizenRepo{coll: db.Collection(defaultCitizenCollectionName)}
}

func (r *CitizenRepo) Get(ctx context.Context, id string) (*domain.Citizen, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb citizen collection is nil")
	}
	var doc model.CitizenDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCitizenNotFound
		}
		return nil, err
	}
	return model.DocToCitizen(doc), nil
}

func (r *CitizenRepo) GetByUsername(ctx context.Context, username string) (*domain.Citizen, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb citizen collection is nil")
	}
	var doc model.CitizenDoc
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCitizenNotFound
		}
		return nil, err
	}
	return model.DocToCitizen(doc), nil
}

func (r *CitizenRepo) Create(ctx context.Context, c *domain.Citizen) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb citizen collection is nil")
	}
	_, err := r.coll.InsertOne(ctx, model.CitizenToDoc(c))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrVersionConflict
	}
	return err
}

func (r *CitizenRepo) Save(ctx context.Context, c *domain.Citizen) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb citizen collection is nil")
	}
	doc := model.CitizenToDoc(c)
	doc.Version = c.Version + 1

	res, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": c.ID, "version": c.Version},
		doc,
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}
	c.Version = doc.Version
	return nil
}
