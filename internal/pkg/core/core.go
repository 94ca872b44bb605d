package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/swarmdeck/swarmdeck-server/configs"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/api"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/api/apicommon"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/auth"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/cluster"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/registry"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/store"
)

type Swarmdeck struct {
	engine   *gin.Engine
	srv      *http.Server
	store    *store.BoltStore
	hostname string
	port     uint16
}

// New returns an instance of a Swarmdeck server.
func New(config configs.ServerConfig) *Swarmdeck {
	s := Swarmdeck{}
	return s.init(config)
}

func (s *Swarmdeck) init(config configs.ServerConfig) *Swarmdeck {
	st, err := store.Open(config.ConfigFile.Storage.Path)
	if err != nil {
		log.WithError(err).Fatalf("failed to open store at %s", config.ConfigFile.Storage.Path)
	}
	s.store = st
	if err := bootstrapAdmin(st, config.ConfigFile.Admin); err != nil {
		log.WithError(err).Fatal("failed to bootstrap admin account")
	}

	engineClient, err := cluster.NewEngineClient(config.ConfigFile.Engine.Host, config.ConfigFile.Engine.APIVersion)
	if err != nil {
		log.WithError(err).Fatalf("failed to create engine client for %s", config.ConfigFile.Engine.Host)
	}
	waitCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := engineClient.WaitForEngine(waitCtx); err != nil {
		log.WithError(err).Fatal("cluster engine did not become reachable")
	}

	tokens := registry.NewECRTokenClient()
	appConfig := &api.Config{
		Cluster: engineClient,
		Store:   st,
		Providers: registry.NewProviders(
			st,
			registry.NewPinger(),
			registry.NewHubClient(registry.DefaultHubURL),
			tokens,
		),
		Browser:    registry.NewBrowser(tokens),
		SessionTTL: time.Duration(config.ConfigFile.Session.TTLHours) * time.Hour,
	}

	s.hostname = config.CliOpts.Host
	s.port = config.CliOpts.HTTPPort
	if !strings.EqualFold(config.CliOpts.LogLevel, "debug") {
		gin.SetMode(gin.ReleaseMode)
	}
	s.engine = api.BuildApp(appConfig)
	if err := s.engine.SetTrustedProxies(config.ConfigFile.TrustedProxies); err != nil {
		log.WithError(err).Fatal("failed to set trusted proxies")
	}
	return s
}

// bootstrapAdmin creates the configured admin account on an empty database.
// An existing account of the same name is left untouched.
func bootstrapAdmin(st store.Store, admin configs.AdminConfiguration) error {
	if admin.Username == "" {
		return nil
	}
	existing, err := st.UserByUsername(admin.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return err
	}
	created, err := st.CreateUser(&store.User{
		Username: admin.Username,
		Password: hash,
		Role:     apicommon.RoleAdmin,
	})
	if err != nil {
		return err
	}
	if created != nil {
		log.Infof("Bootstrapped admin account %s", admin.Username)
	}
	return nil
}

// Start the Swarmdeck server.
func (s *Swarmdeck) Start() {
	log.Info("Starting Swarmdeck server")
	serverURL := fmt.Sprintf("%s:%d", s.hostname, s.port)
	s.srv = &http.Server{
		Addr:    serverURL,
		Handler: s.engine,
	}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()
	log.Infof("Listening on %s", s.srv.Addr)
}

// Stop the Swarmdeck server and release the console database.
func (s *Swarmdeck) Stop(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	if closeErr := s.store.Close(); err == nil {
		err = closeErr
	}
	return err
}
