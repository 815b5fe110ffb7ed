package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	battleapp "WorldRepublic/internal/battle/app"
	battlemongo "WorldRepublic/internal/battle/infra/persistence/mongodb"
	citizenapp "WorldRepublic/internal/citizen/app"
	citizenmongo "WorldRepublic/internal/citizen/infra/persistence/mongodb"
	countryapp "WorldRepublic/internal/country/app"
	countrymongo "WorldRepublic/internal/country/infra/persistence/mongodb"
	electionapp "WorldRepublic/internal/election/app"
	electiondomain "WorldRepublic/internal/election/domain"
	electionmongo "WorldRepublic/internal/election/infra/persistence/mongodb"
	"WorldRepublic/internal/engine"
	"WorldRepublic/internal/ledger"
	partyapp "WorldRepublic/internal/party/app"
	partymongo "WorldRepublic/internal/party/infra/persistence/mongodb"
	"WorldRepublic/internal/shared/infrastructure/db"
	mongoinfra "WorldRepublic/internal/shared/infrastructure/mongo"
	"WorldRepublic/internal/shared/logs"
	"WorldRepublic/internal/shared/serverconfig"
	"WorldRepublic/internal/shared/utils"
	"WorldRepublic/modules/kit/logx"

	"go.uber.org/zap"
)

// 独立跑批进程：战斗结算、选举收盘、法案清扫。
// once 模式给 cron 部署用；否则按固定间隔循环。所有任务幂等，
// 与引擎进程内的 ticker 并发触发也不会重复结算。
func main() {
	serverconfig.Load("")
	if err := logs.Init("resolver", serverconfig.Conf.Log); err != nil {
		panic(err)
	}
	log := logx.NewZapLogger(logs.Logger())

	mongoClient, err := mongoinfra.Open(serverconfig.Conf.MongoDB, logs.Logger())
	if err != nil {
		logs.Fatal("open mongodb failed", zap.Error(err))
	}
	mdb := mongoClient.Database(serverconfig.Conf.MongoDB.Database)

	gormDB, err := db.Open(serverconfig.Conf.MySQL)
	if err != nil {
		logs.Fatal("open db failed", zap.Error(err))
	}
	journal := ledger.NewGormJournal(gormDB)
	if err := journal.Migrate(); err != nil {
		logs.Fatal("ledger migrate failed", zap.Error(err))
	}

	countrySvc := countryapp.NewCountryService(countrymongo.NewCountryRepo(mdb), utils.NextSnowflakeID, log)
	citizenSvc := citizenapp.NewCitizenService(
		citizenmongo.NewCitizenRepo(mdb), countrySvc, journal, nil, utils.NextSnowflakeID, log)
	citizens := engine.NewCitizenAdapter(citizenSvc)
	partySvc := partyapp.NewPartyService(partymongo.NewPartyRepo(mdb), citizens, log)
	electionSvc := electionapp.NewElectionService(
		electionmongo.NewElectionRepo(mdb), citizens, countrySvc,
		engine.NewOfficeAdapter(countrySvc, partySvc),
		electiondomain.TieBreak(serverconfig.Conf.Game.PopularVoteTieBreak), log)
	battleSvc := battleapp.NewBattleService(
		battlemongo.NewBattleRepo(mdb), citizens, engine.NewCountryAdapter(countrySvc),
		battlemongo.NewWarResolver(mongoClient, mdb), journal, log)

	batch := engine.NewBatchRunner(battleSvc, electionSvc, countrySvc, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serverconfig.Conf.Resolver.Once {
		batch.RunAll(ctx)
	} else {
		batch.Loop(ctx, time.Duration(serverconfig.Conf.Resolver.IntervalS)*time.Second)
	}

	_ = mongoClient.Disconnect(context.Background())
}
