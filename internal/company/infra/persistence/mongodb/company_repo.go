package mongodb

import (
	"context"
	"errors"

	"WorldRepublic/internal/company/domain"
	"WorldRepublic/internal/company/infra/persistence/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const defaultCompanyCollectionName = "companies"

// CompanyRepo 实现 app.CompanyRepo。
// Save 按 (_id, version) 做 CAS；版本已前进时匹配不到文档，返回版本冲突。
type CompanyRepo struct {
	coll *mongo.Collection
}

func NewCompanyRepo(db *mongo.Database) *CompanyRepo {
	if db == nil {
		return &CompanyRepo{}
	}
	return &CompanyRepo{coll: db.Collection(defaultCompanyCollectionName)}
}

func (r *CompanyRepo) Get(ctx context.Context, id string) (*domain.Company, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb company collection is nil")
	}
	var doc model.CompanyDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	return model.DocToCompany(doc), nil
}

func (r *CompanyRepo) Create(ctx context.Context, c *domain.Company) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb company collection is nil")
	}
	_, err := r.coll.InsertOne(ctx, model.CompanyToDoc(c))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrVersionConflict
	}
	return err
}

func (r *CompanyRepo) Save(ctx context.Context, c *domain.Company) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb company collection is nil")
	}
	doc := model.CompanyToDoc(c)
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
