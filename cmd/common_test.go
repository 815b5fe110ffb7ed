package cmd

import (
	"testing"

	"WorldRepublic/internal/shared/logs"
	"WorldRepublic/internal/shared/serverconfig"

	"go.uber.org/zap"
)

func TestReadConfig(t *testing.T) {
	serverconfig.Load("../configs/conf.yml")
	if err := logs.Init("TestReadConfig", serverconfig.Conf.Log); err != nil {
		t.Fatalf("err=%v", err)
	}
	logs.Info("conf", zap.Any("conf", serverconfig.Conf))

	if serverconfig.Conf.HTTPServer.Port == 0 {
		t.Fatalf("httpserver.port 未配置")
	}
	if serverconfig.Conf.MongoDB.Database == "" {
		t.Fatalf("mongodb.database 未配置")
	}
}
