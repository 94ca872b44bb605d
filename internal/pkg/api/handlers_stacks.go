package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/api/apicommon"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/cluster"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
)

func (a *API) stacks(c *gin.Context) {
	stacks, err := a.cluster.Stacks(c.Request.Context())
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stacks)
}

func (a *API) stack(c *gin.Context) {
	stack, err := a.cluster.Stack(c.Request.Context(), c.Param("name"))
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stack)
}

func (a *API) stackCreate(c *gin.Context) {
	var spec cluster.StackSpec
	if !bindJSON(c, &spec) {
		return
	}
	if spec.Name == "" {
		apicommon.RespondWithError(c, http.StatusBadRequest, errdefs.Validation("Stack invalid."))
		return
	}
	ctx := c.Request.Context()
	if _, err := a.cluster.Stack(ctx, spec.Name); err == nil {
		apicommon.RespondWithError(c, http.StatusBadRequest, errdefs.Conflict("Stack already exists."))
		return
	} else if !errors.Is(err, errdefs.ErrNotFound) {
		apicommon.RespondError(c, err)
		return
	}
	if err := a.cluster.CreateStack(ctx, spec); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, apicommon.CreatedResponse{ID: spec.Name})
}

func (a *API) stackUpdate(c *gin.Context) {
	var spec cluster.StackSpec
	if !bindJSON(c, &spec) {
		return
	}
	// The payload name must agree with the path before the cluster is
	// touched at all.
	if spec.Name != c.Param("name") {
		apicommon.RespondWithError(c, http.StatusBadRequest, errdefs.Validation("Stack invalid."))
		return
	}
	ctx := c.Request.Context()
	if _, err := a.cluster.Stack(ctx, spec.Name); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	if err := a.cluster.UpdateStack(ctx, spec); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// stackDelete treats post-delete absence as the success condition. The
// delete call's own error only supplies the failure reason when the stack
// is still present afterwards.
func (a *API) stackDelete(c *gin.Context) {
	name := c.Param("name")
	ctx := c.Request.Context()
	delErr := a.cluster.DeleteStack(ctx, name)
	_, err := a.cluster.Stack(ctx, name)
	switch {
	case err == nil:
		reason := errors.New("stack was not removed")
		if delErr != nil {
			reason = delErr
		}
		apicommon.RespondWithError(c, http.StatusBadRequest, reason)
	case errors.Is(err, errdefs.ErrNotFound):
		c.Status(http.StatusOK)
	default:
		apicommon.RespondError(c, err)
	}
}
