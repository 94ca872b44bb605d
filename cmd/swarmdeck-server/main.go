package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/sirupsen/logrus"
	"github.com/swarmdeck/swarmdeck-server/common"
	"github.com/swarmdeck/swarmdeck-server/configs"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/core"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/utils/logutils"
)

func main() {
	var (
		app = kingpin.New("swarmdeck-server", "The swarmdeck cluster management console")

		host       = app.Flag("host", "Host to listen on").Default("0.0.0.0").Envar("SWARMDECK_HOST").String()
		port       = app.Flag("port", "Port to listen on").Default("8888").Envar("SWARMDECK_PORT").Uint16()
		configPath = app.Flag("config", "Path to the server config file").Default("config.yaml").Envar("SWARMDECK_CONFIG").String()
		// Logging
		logLevel  = app.Flag("log-level", "Log-Level, must be one of [DEBUG, INFO, WARN, ERROR]").Default("INFO").Envar("LOG_LEVEL").Enum("DEBUG", "INFO", "WARN", "ERROR", "debug", "info", "warn", "error")
		logFormat = app.Flag("log-format", "Log-Format, must be one of [TEXT, JSON]").Default("TEXT").Envar("LOG_FORMAT").Enum("TEXT", "JSON")
	)
	app.HelpFlag.Short('h')
	app.Version(common.Version())

	kingpin.MustParse(app.Parse(os.Args[1:]))
	logutils.Setup(*logLevel, *logFormat)

	configFile, err := configs.LoadServerConfigFile(*configPath)
	if err != nil {
		log.WithError(err).Fatalf("failed to load config from %s", *configPath)
	}

	server := core.New(configs.ServerConfig{
		ConfigFile: *configFile,
		CliOpts: configs.CLIOptions{
			Host:     *host,
			HTTPPort: *port,
			LogLevel: *logLevel,
		},
	})
	server.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("failed to shut down cleanly")
	}
}
