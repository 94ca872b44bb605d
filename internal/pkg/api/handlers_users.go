package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/api/apicommon"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/auth"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/store"
)

// UserView is the user record as rendered to clients. The password hash
// never leaves the store layer.
type UserView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func userView(u store.User) UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Email    string `json:"email"`
}

type userUpdateRequest struct {
	Role  string `json:"role"`
	Email string `json:"email"`
}

type passwordChangeRequest struct {
	Password    string `json:"password"`
	NewPassword string `json:"newPassword"`
}

// login exchanges credentials for a session token. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (a *API) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := a.store.UserByUsername(req.Username)
	if err != nil {
		log.WithError(err).Error("failed to look up user on login")
		apicommon.RespondError(c, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.Password, req.Password) {
		apicommon.RespondWithError(c, http.StatusUnauthorized, errdefs.ErrUnauthorized)
		return
	}
	token, err := auth.IssueSession(a.store, user.ID, a.sessionTTL)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apicommon.TokenResponse{Token: token})
}

func (a *API) passwordChange(c *gin.Context) {
	var req passwordChangeRequest
	if !bindJSON(c, &req) {
		return
	}
	identity := apicommon.MustIdentity(c)
	user, err := a.store.User(identity.ID)
	if err != nil || user == nil {
		apicommon.RespondError(c, errdefs.ErrUnauthorized)
		return
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		apicommon.RespondWithError(c, http.StatusBadRequest, errdefs.Validation("Invalid old password"))
		return
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	user.Password = hash
	if err := a.store.UpdateUser(user); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (a *API) users(c *gin.Context) {
	users, err := a.store.Users()
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(users, func(u store.User, _ int) UserView {
		return userView(u)
	}))
}

func (a *API) user(c *gin.Context) {
	user, err := a.store.User(c.Param("id"))
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	if user == nil {
		apicommon.RespondError(c, errdefs.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, userView(*user))
}

func (a *API) userCreate(c *gin.Context) {
	identity := apicommon.MustIdentity(c)
	if !identity.IsAdmin() {
		apicommon.RespondError(c, errdefs.ErrForbidden)
		return
	}
	var req userCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		apicommon.RespondWithError(c, http.StatusBadRequest, errdefs.Validation("User invalid."))
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	role := req.Role
	if role == "" {
		role = apicommon.RoleUser
	}
	created, err := a.store.CreateUser(&store.User{
		Username: req.Username,
		Password: hash,
		Role:     role,
		Email:    req.Email,
	})
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	if created == nil {
		apicommon.RespondWithError(c, http.StatusBadRequest, errdefs.Conflict("User already exists."))
		return
	}
	c.JSON(http.StatusCreated, apicommon.CreatedResponse{ID: created.ID})
}

func (a *API) userUpdate(c *gin.Context) {
	var req userUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := a.store.User(c.Param("id"))
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	if user == nil {
		apicommon.RespondError(c, errdefs.ErrNotFound)
		return
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	user.Email = req.Email
	if err := a.store.UpdateUser(user); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// userDelete rejects self deletion before any lookup. Deleting a user also
// unlinks every registry account that user owns.
func (a *API) userDelete(c *gin.Context) {
	identity := apicommon.MustIdentity(c)
	id := c.Param("id")
	if id == identity.ID {
		apicommon.RespondWithError(c, http.StatusBadRequest, errdefs.Validation("Operation not allowed"))
		return
	}
	user, err := a.store.User(id)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	if user == nil {
		apicommon.RespondError(c, errdefs.ErrNotFound)
		return
	}
	registries, err := a.store.RegistriesByOwner(user.Username)
	if err != nil {
		apicommon.RespondError(c, err)
		return
	}
	for _, reg := range registries {
		if err := a.store.DeleteRegistry(reg.ID); err != nil {
			apicommon.RespondError(c, err)
			return
		}
	}
	if err := a.store.DeleteUser(id); err != nil {
		apicommon.RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
