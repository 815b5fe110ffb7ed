package main

import (
	"context"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	battleapp "WorldRepublic/internal/battle/app"
	battlemongo "WorldRepublic/internal/battle/infra/persistence/mongodb"
	citizenapp "WorldRepublic/internal/citizen/app"
	citizenmongo "WorldRepublic/internal/citizen/infra/persistence/mongodb"
	companyapp "WorldRepublic/internal/company/app"
	companymongo "WorldRepublic/internal/company/infra/persistence/mongodb"
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
	transporthttp "WorldRepublic/internal/shared/transport/http"
	"WorldRepublic/internal/shared/transport/ws"
	"WorldRepublic/internal/shared/utils"
	shoutapp "WorldRepublic/internal/shout/app"
	shoutmongo "WorldRepublic/internal/shout/infra/persistence/mongodb"
	"WorldRepublic/modules/kit/logx"

	"go.uber.org/zap"
)

func main() {
	serverconfig.Load("")
	if err := logs.Init("engine", serverconfig.Conf.Log); err != nil {
		panic(err)
	}
	logs.Info("conf", zap.Any("conf", serverconfig.Conf))
	log := logx.NewZapLogger(logs.Logger())

	// ---- 存储 ----
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

	// ---- 告警推送 ----
	hub := ws.NewHub(serverconfig.Conf.Game.WSSecretEnabled, log)

	// ---- 应用服务 ----
	countrySvc := countryapp.NewCountryService(countrymongo.NewCountryRepo(mdb), utils.NextSnowflakeID, log)
	citizenSvc := citizenapp.NewCitizenService(
		citizenmongo.NewCitizenRepo(mdb), countrySvc, journal, hub, utils.NextSnowflakeID, log)

	citizens := engine.NewCitizenAdapter(citizenSvc)
	companySvc := companyapp.NewCompanyService(
		companymongo.NewCompanyRepo(mdb), citizens, journal, utils.NewOfferToken, log)
	partySvc := partyapp.NewPartyService(partymongo.NewPartyRepo(mdb), citizens, log)
	electionSvc := electionapp.NewElectionService(
		electionmongo.NewElectionRepo(mdb), citizens, countrySvc,
		engine.NewOfficeAdapter(countrySvc, partySvc),
		electiondomain.TieBreak(serverconfig.Conf.Game.PopularVoteTieBreak), log)
	battleSvc := battleapp.NewBattleService(
		battlemongo.NewBattleRepo(mdb), citizens, engine.NewCountryAdapter(countrySvc),
		battlemongo.NewWarResolver(mongoClient, mdb), journal, log)
	shoutSvc := shoutapp.NewShoutService(shoutmongo.NewShoutRepo(mdb), utils.NextSnowflakeID, log)

	// ---- 分发与 actor ----
	dispatcher, err := engine.NewDispatcher(engine.BuildHandlers(engine.Services{
		Citizens:  citizenSvc,
		Companies: companySvc,
		Countries: countrySvc,
		Elections: electionSvc,
		Battles:   battleSvc,
		Shouts:    shoutSvc,
	}), citizens, log)
	if err != nil {
		logs.Fatal("dispatcher init failed", zap.Error(err))
	}
	runtime := engine.NewRuntime(dispatcher, 0)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- 进程内定时批任务（cron 端点是同一套逻辑的外部触发面）----
	batch := engine.NewBatchRunner(battleSvc, electionSvc, countrySvc, log)
	go batch.Loop(ctx, time.Duration(serverconfig.Conf.Resolver.IntervalS)*time.Second)

	// ---- HTTP ----
	host := serverconfig.Conf.HTTPServer.Host
	if host == "" {
		host = "0.0.0.0"
	}
	addr := fmt.Sprintf("%s:%d", host, serverconfig.Conf.HTTPServer.Port)
	server := transporthttp.NewHttpServer(addr, nil, log)
	engine.NewHttpHandler(runtime, citizenSvc, partySvc, shoutSvc, batch, hub, log).
		RegisterRoutes(server.Group())

	errCh := make(chan error, 1)
	go func() {
		logs.Info("engine http server started", zap.String("addr", addr))
		if err := server.Start(); err != nil && err != nethttp.ErrServerClosed {
			errCh <- fmt.Errorf("engine http serve failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logs.Info("收到退出信号，准备优雅退出")
	case err := <-errCh:
		if err != nil {
			logs.Error("服务异常退出", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logs.Error("http shutdown failed", zap.Error(err))
	}
	hub.Shutdown()
	runtime.Shutdown()
	_ = mongoClient.Disconnect(shutdownCtx)
}
