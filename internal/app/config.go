package app

import (
	"github.com/startupai/startupai-backend/internal/platform/envutil"
	"github.com/startupai/startupai-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Environment string
	Version     string

	MetricsAddr string

	RunServer bool
	RunWorker bool
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:        envutil.GetEnv("PORT", "8080", log),
		Environment: envutil.GetEnv("APP_ENV", "development", log),
		Version:     envutil.GetEnv("APP_VERSION", "dev", log),
		MetricsAddr: envutil.GetEnv("METRICS_ADDR", ":9090", log),
		RunServer:   envutil.GetEnvAsBool("RUN_SERVER", true),
		RunWorker:   envutil.GetEnvAsBool("RUN_WORKER", true),
	}
}
