package auth

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/api/apicommon"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/store"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of the given plain text password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// IssueSession creates a session token for the given user.
func IssueSession(st store.Store, userID string, ttl time.Duration) (string, error) {
	sess := &store.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl).UTC(),
	}
	if err := st.CreateSession(sess); err != nil {
		return "", err
	}
	return sess.Token, nil
}

// Middleware validates the bearer token and stores the caller identity on
// the gin context. Requests without a valid, unexpired session are rejected
// with 401 before any handler runs.
func Middleware(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			apicommon.RespondWithError(c, 401, errdefs.ErrUnauthorized)
			return
		}
		sess, err := st.Session(token)
		if err != nil {
			log.WithError(err).Error("failed to look up session")
			apicommon.RespondWithError(c, 401, errdefs.ErrUnauthorized)
			return
		}
		if sess == nil || time.Now().After(sess.ExpiresAt) {
			apicommon.RespondWithError(c, 401, errdefs.ErrUnauthorized)
			return
		}
		user, err := st.User(sess.UserID)
		if err != nil || user == nil {
			apicommon.RespondWithError(c, 401, errdefs.ErrUnauthorized)
			return
		}
		c.Set(apicommon.ContextKeyIdentity, apicommon.Identity{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		})
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
