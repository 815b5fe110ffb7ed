package serverconfig

import (
	"os"

	"WorldRepublic/internal/shared/config"
)

const defaultConfigRelPath = "configs/conf.yml"

var Conf Config

func Load(path string) {
	if path == "" {
		path = defaultConfigRelPath
	}
	config.Load(path, &Conf)
	// 环境变量优先；若未设置则回填配置中的密钥，兼容本地开发场景。
	if os.Getenv("JWT_SECRET") == "" && Conf.JWTSecret != "" {
		_ = os.Setenv("JWT_SECRET", Conf.JWTSecret)
	}
	if os.Getenv("RESOLVER_SECRET") == "" && Conf.Resolver.Secret != "" {
		_ = os.Setenv("RESOLVER_SECRET", Conf.Resolver.Secret)
	}
}
