package apicommon

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
)

// RespondWithError writes the error envelope with the given status code.
func RespondWithError(c *gin.Context, statusCode int, err error) {
	c.AbortWithStatusJSON(statusCode, APIError{Error: err.Error()})
}

// RespondError maps err onto the response status taxonomy and writes the
// envelope. Lookup misses map to 404, conflicts and validation failures to
// 400, authentication failures to 401. Remote collaborator failures carry
// the message embedded in the remote response body, as a 400.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errdefs.ErrNotFound):
		RespondWithError(c, http.StatusNotFound, err)
	case errors.Is(err, errdefs.ErrUnauthorized):
		RespondWithError(c, http.StatusUnauthorized, err)
	case errors.Is(err, errdefs.ErrForbidden):
		RespondWithError(c, http.StatusForbidden, err)
	case errdefs.IsConflict(err), errdefs.IsValidation(err), errdefs.IsUnsupportedType(err):
		RespondWithError(c, http.StatusBadRequest, err)
	case errors.Is(err, errdefs.ErrMissingRequestBody), errors.Is(err, errdefs.ErrUnmarshal), errors.Is(err, errdefs.ErrBadRequest):
		RespondWithError(c, http.StatusBadRequest, err)
	default:
		if remote, ok := errdefs.AsRemote(err); ok {
			if remote.StatusCode == http.StatusNotFound {
				RespondWithError(c, http.StatusNotFound, remote)
				return
			}
			RespondWithError(c, http.StatusBadRequest, remote)
			return
		}
		log.WithError(err).Error("unhandled error reached the response boundary")
		RespondWithError(c, http.StatusInternalServerError, errdefs.ErrInternal)
	}
}

// IdentityFromContext returns the authenticated caller stored by the auth
// middleware. The second return is false on unauthenticated routes.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ContextKeyIdentity)
	if !ok {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}

// MustIdentity returns the authenticated caller and panics if the route was
// wired without the auth middleware. That is a programming error, not a
// runtime condition.
func MustIdentity(c *gin.Context) Identity {
	identity, ok := IdentityFromContext(c)
	if !ok {
		panic("route is missing the auth middleware")
	}
	return identity
}
