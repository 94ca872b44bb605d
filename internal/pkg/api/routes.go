package api

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/api/apicommon"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/auth"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/cluster"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/registry"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/store"
)

// RouteID is the symbolic identifier of one handler. The table below is
// total over the request surface and fixed at startup; dispatching an
// unmapped identifier panics.
type RouteID string

const (
	RouteLogin    RouteID = "login"
	RoutePassword RouteID = "password"
	RouteVersion  RouteID = "version"

	RouteServices        RouteID = "services"
	RouteService         RouteID = "service"
	RouteServiceCreate   RouteID = "service-create"
	RouteServiceUpdate   RouteID = "service-update"
	RouteServiceDelete   RouteID = "service-delete"
	RouteServiceRedeploy RouteID = "service-redeploy"
	RouteServiceRollback RouteID = "service-rollback"

	RouteNodes      RouteID = "nodes"
	RouteNode       RouteID = "node"
	RouteNodeUpdate RouteID = "node-update"

	RouteTasks RouteID = "tasks"
	RouteTask  RouteID = "task"

	RouteNetworks      RouteID = "networks"
	RouteNetwork       RouteID = "network"
	RouteNetworkCreate RouteID = "network-create"
	RouteNetworkDelete RouteID = "network-delete"

	RouteVolumes      RouteID = "volumes"
	RouteVolume       RouteID = "volume"
	RouteVolumeCreate RouteID = "volume-create"
	RouteVolumeDelete RouteID = "volume-delete"

	RouteSecrets      RouteID = "secrets"
	RouteSecret       RouteID = "secret"
	RouteSecretCreate RouteID = "secret-create"
	RouteSecretUpdate RouteID = "secret-update"
	RouteSecretDelete RouteID = "secret-delete"

	RouteConfigs      RouteID = "configs"
	RouteConfig       RouteID = "config"
	RouteConfigCreate RouteID = "config-create"
	RouteConfigDelete RouteID = "config-delete"

	RouteStacks      RouteID = "stacks"
	RouteStack       RouteID = "stack"
	RouteStackCreate RouteID = "stack-create"
	RouteStackUpdate RouteID = "stack-update"
	RouteStackDelete RouteID = "stack-delete"

	RouteUsers      RouteID = "users"
	RouteUser       RouteID = "user"
	RouteUserCreate RouteID = "user-create"
	RouteUserUpdate RouteID = "user-update"
	RouteUserDelete RouteID = "user-delete"

	RouteRegistries       RouteID = "registries"
	RouteRegistriesTyped  RouteID = "registries-typed"
	RouteRegistry         RouteID = "registry"
	RouteRegistryCreate   RouteID = "registry-create"
	RouteRegistryUpdate   RouteID = "registry-update"
	RouteRegistryDelete   RouteID = "registry-delete"
	RouteRepositories     RouteID = "repositories"
	RouteRepositoryTags   RouteID = "repository-tags"
	RouteRepositoryDigest RouteID = "repository-digest"
)

// Browser lists repositories of a linked registry account.
type Browser interface {
	Repositories(ctx context.Context, reg *store.Registry) ([]string, error)
	Tags(ctx context.Context, reg *store.Registry, repository string) ([]string, error)
	Descriptor(ctx context.Context, reg *store.Registry, repository, tag string) (v1.Descriptor, error)
}

// Config carries the collaborators of the API layer.
type Config struct {
	Cluster    cluster.Client
	Store      store.Store
	Providers  registry.Providers
	Browser    Browser
	SessionTTL time.Duration
}

// API holds the handler table and its collaborators. Handlers are pure
// with respect to the dispatcher; all side effects happen in collaborator
// calls.
type API struct {
	cluster    cluster.Client
	store      store.Store
	providers  registry.Providers
	browser    Browser
	sessionTTL time.Duration
	handlers   map[RouteID]gin.HandlerFunc
}

// NewAPI builds the handler table.
func NewAPI(config *Config) *API {
	a := &API{
		cluster:    config.Cluster,
		store:      config.Store,
		providers:  config.Providers,
		browser:    config.Browser,
		sessionTTL: config.SessionTTL,
	}
	if a.sessionTTL == 0 {
		a.sessionTTL = 24 * time.Hour
	}
	a.handlers = map[RouteID]gin.HandlerFunc{
		RouteLogin:    a.login,
		RoutePassword: a.passwordChange,
		RouteVersion:  a.version,

		RouteServices:        a.services,
		RouteService:         a.service,
		RouteServiceCreate:   a.serviceCreate,
		RouteServiceUpdate:   a.serviceUpdate,
		RouteServiceDelete:   a.serviceDelete,
		RouteServiceRedeploy: a.serviceRedeploy,
		RouteServiceRollback: a.serviceRollback,

		RouteNodes:      a.nodes,
		RouteNode:       a.node,
		RouteNodeUpdate: a.nodeUpdate,

		RouteTasks: a.tasks,
		RouteTask:  a.task,

		RouteNetworks:      a.networks,
		RouteNetwork:       a.network,
		RouteNetworkCreate: a.networkCreate,
		RouteNetworkDelete: a.networkDelete,

		RouteVolumes:      a.volumes,
		RouteVolume:       a.volume,
		RouteVolumeCreate: a.volumeCreate,
		RouteVolumeDelete: a.volumeDelete,

		RouteSecrets:      a.secrets,
		RouteSecret:       a.secret,
		RouteSecretCreate: a.secretCreate,
		RouteSecretUpdate: a.secretUpdate,
		RouteSecretDelete: a.secretDelete,

		RouteConfigs:      a.configs,
		RouteConfig:       a.config,
		RouteConfigCreate: a.configCreate,
		RouteConfigDelete: a.configDelete,

		RouteStacks:      a.stacks,
		RouteStack:       a.stack,
		RouteStackCreate: a.stackCreate,
		RouteStackUpdate: a.stackUpdate,
		RouteStackDelete: a.stackDelete,

		RouteUsers:      a.users,
		RouteUser:       a.user,
		RouteUserCreate: a.userCreate,
		RouteUserUpdate: a.userUpdate,
		RouteUserDelete: a.userDelete,

		RouteRegistries:       a.registries,
		RouteRegistriesTyped:  a.registriesTyped,
		RouteRegistry:         a.registryGet,
		RouteRegistryCreate:   a.registryCreate,
		RouteRegistryUpdate:   a.registryUpdate,
		RouteRegistryDelete:   a.registryDelete,
		RouteRepositories:     a.repositories,
		RouteRepositoryTags:   a.repositoryTags,
		RouteRepositoryDigest: a.repositoryDigest,
	}
	return a
}

// Dispatch resolves a route identifier to its handler. An unmapped
// identifier is a programming error and panics at registration time.
func (a *API) Dispatch(id RouteID) gin.HandlerFunc {
	handler, ok := a.handlers[id]
	if !ok {
		panic(fmt.Sprintf("no handler mapped for route %q", id))
	}
	return handler
}

// Mount registers the route surface onto the engine. Everything except
// login and version sits behind the session middleware.
func (a *API) Mount(r *gin.Engine) {
	public := r.Group("/" + apicommon.APIBasePath)
	public.POST("/login", a.Dispatch(RouteLogin))
	public.GET("/version", a.Dispatch(RouteVersion))

	protected := r.Group("/"+apicommon.APIBasePath, auth.Middleware(a.store))
	protected.POST("/password", a.Dispatch(RoutePassword))

	protected.GET("/services", a.Dispatch(RouteServices))
	protected.GET("/services/:id", a.Dispatch(RouteService))
	protected.POST("/services", a.Dispatch(RouteServiceCreate))
	protected.POST("/services/:id", a.Dispatch(RouteServiceUpdate))
	protected.DELETE("/services/:id", a.Dispatch(RouteServiceDelete))
	protected.POST("/services/:id/redeploy", a.Dispatch(RouteServiceRedeploy))
	protected.POST("/services/:id/rollback", a.Dispatch(RouteServiceRollback))

	protected.GET("/nodes", a.Dispatch(RouteNodes))
	protected.GET("/nodes/:id", a.Dispatch(RouteNode))
	protected.POST("/nodes/:id", a.Dispatch(RouteNodeUpdate))

	protected.GET("/tasks", a.Dispatch(RouteTasks))
	protected.GET("/tasks/:id", a.Dispatch(RouteTask))

	protected.GET("/networks", a.Dispatch(RouteNetworks))
	protected.GET("/networks/:id", a.Dispatch(RouteNetwork))
	protected.POST("/networks", a.Dispatch(RouteNetworkCreate))
	protected.DELETE("/networks/:id", a.Dispatch(RouteNetworkDelete))

	protected.GET("/volumes", a.Dispatch(RouteVolumes))
	protected.GET("/volumes/:name", a.Dispatch(RouteVolume))
	protected.POST("/volumes", a.Dispatch(RouteVolumeCreate))
	protected.DELETE("/volumes/:name", a.Dispatch(RouteVolumeDelete))

	protected.GET("/secrets", a.Dispatch(RouteSecrets))
	protected.GET("/secrets/:id", a.Dispatch(RouteSecret))
	protected.POST("/secrets", a.Dispatch(RouteSecretCreate))
	protected.POST("/secrets/:id", a.Dispatch(RouteSecretUpdate))
	protected.DELETE("/secrets/:id", a.Dispatch(RouteSecretDelete))

	protected.GET("/configs", a.Dispatch(RouteConfigs))
	protected.GET("/configs/:id", a.Dispatch(RouteConfig))
	protected.POST("/configs", a.Dispatch(RouteConfigCreate))
	protected.DELETE("/configs/:id", a.Dispatch(RouteConfigDelete))

	protected.GET("/stacks", a.Dispatch(RouteStacks))
	protected.GET("/stacks/:name", a.Dispatch(RouteStack))
	protected.POST("/stacks", a.Dispatch(RouteStackCreate))
	protected.POST("/stacks/:name", a.Dispatch(RouteStackUpdate))
	protected.DELETE("/stacks/:name", a.Dispatch(RouteStackDelete))

	protected.GET("/users", a.Dispatch(RouteUsers))
	protected.GET("/users/:id", a.Dispatch(RouteUser))
	protected.POST("/users", a.Dispatch(RouteUserCreate))
	protected.POST("/users/:id", a.Dispatch(RouteUserUpdate))
	protected.DELETE("/users/:id", a.Dispatch(RouteUserDelete))

	protected.GET("/registries", a.Dispatch(RouteRegistries))
	protected.GET("/registries/:registryType", a.Dispatch(RouteRegistriesTyped))
	protected.POST("/registries/:registryType", a.Dispatch(RouteRegistryCreate))
	protected.GET("/registries/:registryType/:id", a.Dispatch(RouteRegistry))
	protected.POST("/registries/:registryType/:id", a.Dispatch(RouteRegistryUpdate))
	protected.DELETE("/registries/:registryType/:id", a.Dispatch(RouteRegistryDelete))
	protected.GET("/registries/:registryType/:id/repositories", a.Dispatch(RouteRepositories))
	protected.GET("/registries/:registryType/:id/repositories/tags", a.Dispatch(RouteRepositoryTags))
	protected.GET("/registries/:registryType/:id/repositories/digest", a.Dispatch(RouteRepositoryDigest))
}
