package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/api/apicommon"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/cluster"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
)

// bindJSON decodes the request body into v. A missing or malformed body
// aborts the request with 400 before any collaborator is called.
func bindJSON(c *gin.Context, v any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		apicommon.RespondWithError(c, http.StatusBadRequest, errdefs.ErrMissingRequestBody)
		return false
	}
	if err := c.ShouldBindJSON(v); err != nil {
		apicommon.RespondWithError(c, http.StatusBadRequest, errdefs.ErrUnmarshal)
		return false
	}
	return true
}

func (a *API) services(c *gin.Context) {
	services, err := a.cluster.Services(c.Request.Context())
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

func (a *API) service(c *gin.Context) {
	service, err := a.cluster.Service(c.Request.Context(), c.Param("id"))
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

func (a *API) serviceCreate(c *gin.Context) {
	var spec cluster.ServiceSpec
	if !bindJSON(c, &spec) {
		return
	}
	id, err := a.cluster.CreateService(c.Request.Context(), spec)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apicommon.CreatedResponse{ID: id})
}

func (a *API) serviceUpdate(c *gin.Context) {
	var spec cluster.ServiceSpec
	if !bindJSON(c, &spec) {
		return
	}
	id := c.Param("id")
	current, err := a.cluster.Service(c.Request.Context(), id)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	if err := a.cluster.UpdateService(c.Request.Context(), id, current.Version, spec); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) serviceDelete(c *gin.Context) {
	if err := a.cluster.DeleteService(c.Request.Context(), c.Param("id")); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) serviceRedeploy(c *gin.Context) {
	if err := a.cluster.RedeployService(c.Request.Context(), c.Param("id")); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (a *API) serviceRollback(c *gin.Context) {
	if err := a.cluster.RollbackService(c.Request.Context(), c.Param("id")); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (a *API) nodes(c *gin.Context) {
	nodes, err := a.cluster.Nodes(c.Request.Context())
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nodes)
}

func (a *API) node(c *gin.Context) {
	node, err := a.cluster.Node(c.Request.Context(), c.Param("id"))
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

func (a *API) nodeUpdate(c *gin.Context) {
	var spec cluster.NodeSpec
	if !bindJSON(c, &spec) {
		return
	}
	id := c.Param("id")
	current, err := a.cluster.Node(c.Request.Context(), id)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	if err := a.cluster.UpdateNode(c.Request.Context(), id, current.Version, spec); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) tasks(c *gin.Context) {
	tasks, err := a.cluster.Tasks(c.Request.Context())
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (a *API) task(c *gin.Context) {
	task, err := a.cluster.Task(c.Request.Context(), c.Param("id"))
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (a *API) networks(c *gin.Context) {
	networks, err := a.cluster.Networks(c.Request.Context())
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, networks)
}

func (a *API) network(c *gin.Context) {
	network, err := a.cluster.Network(c.Request.Context(), c.Param("id"))
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, network)
}

func (a *API) networkCreate(c *gin.Context) {
	var spec cluster.NetworkSpec
	if !bindJSON(c, &spec) {
		return
	}
	id, err := a.cluster.CreateNetwork(c.Request.Context(), spec)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apicommon.CreatedResponse{ID: id})
}

func (a *API) networkDelete(c *gin.Context) {
	if err := a.cluster.DeleteNetwork(c.Request.Context(), c.Param("id")); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) volumes(c *gin.Context) {
	volumes, err := a.cluster.Volumes(c.Request.Context())
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, volumes)
}

func (a *API) volume(c *gin.Context) {
	volume, err := a.cluster.Volume(c.Request.Context(), c.Param("name"))
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, volume)
}

func (a *API) volumeCreate(c *gin.Context) {
	var spec cluster.VolumeSpec
	if !bindJSON(c, &spec) {
		return
	}
	name, err := a.cluster.CreateVolume(c.Request.Context(), spec)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apicommon.CreatedResponse{ID: name})
}

func (a *API) volumeDelete(c *gin.Context) {
	if err := a.cluster.DeleteVolume(c.Request.Context(), c.Param("name")); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) secrets(c *gin.Context) {
	secrets, err := a.cluster.Secrets(c.Request.Context())
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, secrets)
}

func (a *API) secret(c *gin.Context) {
	secret, err := a.cluster.Secret(c.Request.Context(), c.Param("id"))
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, secret)
}

func (a *API) secretCreate(c *gin.Context) {
	var spec cluster.SecretSpec
	if !bindJSON(c, &spec) {
		return
	}
	id, err := a.cluster.CreateSecret(c.Request.Context(), spec)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apicommon.CreatedResponse{ID: id})
}

func (a *API) secretUpdate(c *gin.Context) {
	var spec cluster.SecretSpec
	if !bindJSON(c, &spec) {
		return
	}
	id := c.Param("id")
	current, err := a.cluster.Secret(c.Request.Context(), id)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	if err := a.cluster.UpdateSecret(c.Request.Context(), id, current.Version, spec); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) secretDelete(c *gin.Context) {
	if err := a.cluster.DeleteSecret(c.Request.Context(), c.Param("id")); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) configs(c *gin.Context) {
	configs, err := a.cluster.Configs(c.Request.Context())
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, configs)
}

func (a *API) config(c *gin.Context) {
	config, err := a.cluster.Config(c.Request.Context(), c.Param("id"))
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

func (a *API) configCreate(c *gin.Context) {
	var spec cluster.ConfigSpec
	if !bindJSON(c, &spec) {
		return
	}
	id, err := a.cluster.CreateConfig(c.Request.Context(), spec)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apicommon.CreatedResponse{ID: id})
}

func (a *API) configDelete(c *gin.Context) {
	if err := a.cluster.DeleteConfig(c.Request.Context(), c.Param("id")); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
