package mongodb

import (
	"context"
	"errors"

	"WorldRepublic/internal/country/domain"
	"WorldRepublic/internal/country/infra/persistence/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const defaultCountryCollectionName = "countries"

// CountryRepo 实现 app.CountryRepo。
// Save 按 (_id, version) 做 CAS；版本已前进时匹配不到文档，返回版本冲突。
type CountryRepo struct {
	coll *mongo.Collection
}

func NewCountryRepo(db *mongo.Database) *CountryRepo {
	if db == nil {
		return &CountryRepo{}
	}
	return &CountryRepo{coll: db.Collection(defaultCountryCollectionName)}
}

func (r *CountryRepo) Get(ctx context.Context, id string) (*domain.Country, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb country collection is nil")
	}
	var doc model.CountryDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCountryNotFound
		}
		return nil, err
	}
	return model.DocToCountry(doc), nil
}

func (r *CountryRepo) List(ctx context.Context) ([]*domain.Country, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb country collection is nil")
	}
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Country
	for cur.Next(ctx) {
		var doc model.CountryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, model.DocToCountry(doc))
	}
	return out, cur.Err()
}

func (r *CountryRepo) Create(ctx context.Context, c *domain.Country) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb country collection is nil")
	}
	_, err := r.coll.InsertOne(ctx, model.CountryToDoc(c))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrVersionConflict
	}
	return err
}

func (r *CountryRepo) Save(ctx context.Context, c *domain.Country) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb country collection is nil")
	}
	doc := model.CountryToDoc(c)
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
