package mongodb

import (
	"context"
	"errors"
	"time"

	"WorldRepublic/internal/battle/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const defaultBattleCollectionName = "battles"

// battleDoc 是战斗聚合的文档形态。winner 恒存（空串表示未分胜负），
// 让 RecordHit 与结算器的条件更新可以直接按 winner=="" 过滤。
type battleDoc struct {
	ID      string `bson:"_id"`
	Version uint64 `bson:"version"`

	Attacker string `bson:"attacker"`
	Defender string `bson:"defender"`
	Region   string `bson:"region"`
	Wall     int    `bson:"wall"`

	ExpiresAt time.Time `bson:"expires_at"`
	Winner    string    `bson:"winner"`

	Attackers domain.SideStats `bson:"attackers"`
	Defenders domain.SideStats `bson:"defenders"`

	CreatedAt time.Time `bson:"created_at"`
}

func toDoc(b *domain.Battle) battleDoc {
	return battleDoc{
		ID:        b.ID,
		Version:   b.Version,
		Attacker:  b.Attacker,
		Defender:  b.Defender,
		Region:    b.Region,
		Wall:      b.Wall,
		ExpiresAt: b.ExpiresAt,
		Winner:    b.Winner,
		Attackers: b.Attackers,
		Defenders: b.Defenders,
		CreatedAt: b.CreatedAt,
	}
}

func toBattle(d battleDoc) *domain.Battle {
	return &domain.Battle{
		ID:        d.ID,
		Version:   d.Version,
		Attacker:  d.Attacker,
		Defender:  d.Defender,
		Region:    d.Region,
		Wall:      d.Wall,
		ExpiresAt: d.ExpiresAt,
		Winner:    d.Winner,
		Attackers: d.Attackers,
		Defenders: d.Defenders,
		CreatedAt: d.CreatedAt,
	}
}

// BattleRepo 实现 app.BattleRepo。
// RecordHit 走原子条件更新而不是整文档 CAS：高频出击不应互相挤掉。
type BattleRepo struct {
	coll *mongo.Collection
}

func NewBattleRepo(db *mongo.Database) *BattleRepo {
	if db == nil {
		return &BattleRepo{}
	}
	return &BattleRepo{coll: db.Collection(defaultBattleCollectionName)}
}

func (r *BattleRepo) Get(ctx context.Context, id string) (*domain.Battle, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb battle collection is nil")
	}
	var doc battleDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBattleNotFound
		}
		return nil, err
	}
	return toBattle(doc), nil
}

func (r *BattleRepo) ListDue(ctx context.Context, now time.Time) ([]*domain.Battle, error) {
	if r == nil || r.coll == nil {
		return nil, errors.New("mongodb battle collection is nil")
	}
	filter := bson.M{
		"winner":     "",
		"expires_at": bson.M{"$lte": now},
	}
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.Battle
	for cur.Next(ctx) {
		var doc battleDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, toBattle(doc))
	}
	return out, cur.Err()
}

func (r *BattleRepo) Create(ctx context.Context, b *domain.Battle) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb battle collection is nil")
	}
	_, err := r.coll.InsertOne(ctx, toDoc(b))
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrVersionConflict
	}
	return err
}

// RecordHit 原子落一击：
// - $inc 该战士的累计伤害（首击时 Mongo 自动创建路径）
// - $push 战报头插（$position 0）并截断到容量（$slice）
// 过滤条件只匹配未到期未分胜负的文档；匹配不到时区分“不存在”和“已结束”。
func (r *BattleRepo) RecordHit(ctx context.Context, battleID string, side domain.Side, hit domain.Hit) error {
	if r == nil || r.coll == nil {
		return errors.New("mongodb battle collection is nil")
	}
	prefix := "attackers"
	if side == domain.SideDefender {
		prefix = "defenders"
	}
	filter := bson.M{
		"_id":        battleID,
		"winner":     "",
		"expires_at": bson.M{"$gt": time.Now()},
	}
	update := bson.M{
		"$inc": bson.M{prefix + ".damage." + hit.CitizenID: hit.Damage},
		"$push": bson.M{prefix + ".recent_hits": bson.M{
			"$each":     bson.A{hit},
			"$position": 0,
			"$slice":    domain.RecentHitsCap,
		}},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if err := r.coll.FindOne(ctx, bson.M{"_id": battleID}).Err(); errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrBattleNotFound
		}
		return domain.ErrBattleNotActive
	}
	return nil
}
