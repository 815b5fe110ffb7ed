package mongodb

import (
	"context"
	"errors"

	battleapp "WorldRepublic/internal/battle/app"
	"WorldRepublic/internal/battle/domain"
	countrydomain "WorldRepublic/internal/country/domain"
	countrymodel "WorldRepublic/internal/country/infra/persistence/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// WarResolver 实现 app.WarResolver：一轮到期战斗的结算在同一个驱动会话事务里整体提交。
// 事务失败整批回滚，winner 一个都不会被写下，下一轮重试不会重复结算。
type WarResolver struct {
	client    *mongo.Client
	battles   *mongo.Collection
	countries *mongo.Collection
}

func NewWarResolver(client *mongo.Client, db *mongo.Database) *WarResolver {
	if client == nil || db == nil {
		return &WarResolver{}
	}
	return &WarResolver{
		client:    client,
		battles:   db.Collection(defaultBattleCollectionName),
		countries: db.Collection("countries"),
	}
}

func (r *WarResolver) ResolveBatch(ctx context.Context, battleIDs []string) ([]battleapp.Resolution, error) {
	if r == nil || r.client == nil {
		return nil, errors.New("mongodb war resolver is not connected")
	}
	if len(battleIDs) == 0 {
		return nil, nil
	}
	session, err := r.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	out, err := session.WithTransaction(ctx, func(sc context.Context) (any, error) {
		results := make([]battleapp.Resolution, 0, len(battleIDs))
		for _, id := range battleIDs {
			res, err := r.resolveTx(sc, id)
			if err != nil {
				// 并发触发下另一个结算器刚写完 winner：跳过这场，不拖垮整批
				if errors.Is(err, domain.ErrBattleNotActive) {
					continue
				}
				return nil, err
			}
			results = append(results, res)
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]battleapp.Resolution), nil
}

func (r *WarResolver) resolveTx(ctx context.Context, battleID string) (battleapp.Resolution, error) {
	var doc battleDoc
	err := r.battles.FindOne(ctx, bson.M{"_id": battleID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return battleapp.Resolution{}, domain.ErrBattleNotFound
		}
		return battleapp.Resolution{}, err
	}
	if doc.Winner != "" {
		return battleapp.Resolution{}, domain.ErrBattleNotActive
	}
	b := toBattle(doc)

	res := battleapp.Resolution{
		BattleID:    b.ID,
		Winner:      b.Defender,
		AttackerWon: b.AttackerWins(),
		Region:      b.Region,
	}

	if res.AttackerWon {
		res.Winner = b.Attacker
		defender, err := r.loadCountry(ctx, b.Defender)
		if err != nil {
			return battleapp.Resolution{}, err
		}
		attacker, err := r.loadCountry(ctx, b.Attacker)
		if err != nil {
			return battleapp.Resolution{}, err
		}

		spoil := defender.WarSpoil()
		region, err := defender.RemoveRegion(b.Region)
		if err != nil {
			return battleapp.Resolution{}, err
		}
		if spoil > 0 && !defender.Treasury.Debit(countrydomain.TreasuryGold, spoil) {
			return battleapp.Resolution{}, countrydomain.ErrInsufficientTreasury
		}
		attacker.Treasury.Credit(countrydomain.TreasuryGold, spoil)
		attacker.AddRegion(region)
		res.Spoil = spoil

		if err := r.saveCountry(ctx, defender); err != nil {
			return battleapp.Resolution{}, err
		}
		if err := r.saveCountry(ctx, attacker); err != nil {
			return battleapp.Resolution{}, err
		}
	}

	// winner 只被写一次：并发结算时另一方的事务会在这里匹配不到
	upd, err := r.battles.UpdateOne(ctx,
		bson.M{"_id": b.ID, "winner": ""},
		bson.M{"$set": bson.M{"winner": res.Winner}},
	)
	if err != nil {
		return battleapp.Resolution{}, err
	}
	if upd.MatchedCount == 0 {
		return battleapp.Resolution{}, domain.ErrBattleNotActive
	}
	return res, nil
}

func (r *WarResolver) loadCountry(ctx context.Context, id string) (*countrydomain.Country, error) {
	var doc countrymodel.CountryDoc
	err := r.countries.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, countrydomain.ErrCountryNotFound
		}
		return nil, err
	}
	return countrymodel.DocToCountry(doc), nil
}

func (r *WarResolver) saveCountry(ctx context.Context, c *countrydomain.Country) error {
	doc := countrymodel.CountryToDoc(c)
	doc.Version = c.Version + 1
	res, err := r.countries.ReplaceOne(ctx,
		bson.M{"_id": c.ID, "version": c.Version},
		doc,
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return countrydomain.ErrVersionConflict
	}
	return nil
}
