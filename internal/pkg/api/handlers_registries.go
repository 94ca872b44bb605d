package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/api/apicommon"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/registry"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/store"
)

// RegistryView is the registry record as rendered to clients. Credential
// material stays in the store layer.
type RegistryView struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Username    string    `json:"username,omitempty"`
	Public      bool      `json:"public"`
	Owner       string    `json:"owner"`
	Region      string    `json:"region,omitempty"`
	AccessKeyID string    `json:"accessKeyId,omitempty"`
	ServiceName string    `json:"serviceName,omitempty"`
	Namespaces  []string  `json:"namespaces,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func registryView(r store.Registry) RegistryView {
	return RegistryView{
		ID:          r.ID,
		Kind:        r.Kind,
		Name:        r.Name,
		URL:         r.URL,
		Username:    r.Username,
		Public:      r.Public,
		Owner:       r.Owner,
		Region:      r.Region,
		AccessKeyID: r.AccessKeyID,
		ServiceName: r.ServiceName,
		Namespaces:  r.Namespaces,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// pathKind validates the provider tag from the request path. The guard
// runs before any store or remote call, for every method.
func pathKind(c *gin.Context) (registry.Kind, bool) {
	kind, err := registry.ParseKind(c.Param(apicommon.ParamRegistryType))
	if err != nil {
		apicommon.RespondWithError(c, http.StatusBadRequest, err)
		return "", false
	}
	return kind, true
}

// ownedRegistry loads a registry of the given kind, visible to the caller.
// Records of other owners are indistinguishable from absent ones unless
// the caller is an admin.
func (a *API) ownedRegistry(c *gin.Context, kind registry.Kind) (*store.Registry, bool) {
	identity := apicommon.MustIdentity(c)
	reg, err := a.store.Registry(c.Param("id"))
	if err != nil {
		apicommon.RespondError(c, err)
		return nil, false
	}
	if reg == nil || reg.Kind != string(kind) {
		apicommon.RespondError(c, errdefs.ErrNotFound)
		return nil, false
	}
	if reg.Owner != identity.Username && !identity.IsAdmin() {
		apicommon.RespondError(c, errdefs.ErrNotFound)
		return nil, false
	}
	return reg, true
}

func (a *API) visibleRegistries(c *gin.Context) ([]store.Registry, bool) {
	identity := apicommon.MustIdentity(c)
	if identity.IsAdmin() {
		registries, err := a.store.Registries()
		if err != nil {
			apicommon.RespondError(c, err)
			return nil, false
		}
		return registries, true
	}
	registries, err := a.store.RegistriesByOwner(identity.Username)
	if err != nil {
		apicommon.RespondError(c, err)
		return nil, false
	}
	return registries, true
}

func (a *API) registries(c *gin.Context) {
	registries, ok := a.visibleRegistries(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, lo.Map(registries, func(r store.Registry, _ int) RegistryView {
		return registryView(r)
	}))
}

func (a *API) registriesTyped(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	registries, ok := a.visibleRegistries(c)
	if !ok {
		return
	}
	ofKind := lo.Filter(registries, func(r store.Registry, _ int) bool {
		return r.Kind == string(kind)
	})
	c.JSON(http.StatusOK, lo.Map(ofKind, func(r store.Registry, _ int) RegistryView {
		return registryView(r)
	}))
}

func (a *API) registryGet(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	reg, ok := a.ownedRegistry(c, kind)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, registryView(*reg))
}

func (a *API) registryCreate(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	var form registry.Form
	if !bindJSON(c, &form) {
		return
	}
	identity := apicommon.MustIdentity(c)
	created, err := a.providers.For(kind).Create(c.Request.Context(), identity.Username, form)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apicommon.CreatedResponse{ID: created.ID})
}

func (a *API) registryUpdate(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	var form registry.Form
	if !bindJSON(c, &form) {
		return
	}
	reg, ok := a.ownedRegistry(c, kind)
	if !ok {
		return
	}
	updated, err := a.providers.For(kind).Update(c.Request.Context(), reg, form)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, registryView(*updated))
}

func (a *API) registryDelete(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	reg, ok := a.ownedRegistry(c, kind)
	if !ok {
		return
	}
	if err := a.store.DeleteRegistry(reg.ID); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) repositories(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	reg, ok := a.ownedRegistry(c, kind)
	if !ok {
		return
	}
	repositories, err := a.browser.Repositories(c.Request.Context(), reg)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, repositories)
}

func (a *API) repositoryTags(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	reg, ok := a.ownedRegistry(c, kind)
	if !ok {
		return
	}
	repository := c.Query("repository")
	if repository == "" {
		apicommon.RespondWithError(c, http.StatusBadRequest, errdefs.Validation("Parameter repository is required"))
		return
	}
	tags, err := a.browser.Tags(c.Request.Context(), reg, repository)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (a *API) repositoryDigest(c *gin.Context) {
	kind, ok := pathKind(c)
	if !ok {
		return
	}
	reg, ok := a.ownedRegistry(c, kind)
	if !ok {
		return
	}
	repository := c.Query("repository")
	tag := c.Query("tag")
	if repository == "" || tag == "" {
		apicommon.RespondWithError(c, http.StatusBadRequest, errdefs.Validation("Parameters repository and tag are required"))
		return
	}
	desc, err := a.browser.Descriptor(c.Request.Context(), reg, repository, tag)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"digest": desc.Digest.String(), "size": desc.Size})
}
