package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/swarmdeck/swarmdeck-server/internal/pkg/api/apicommon"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, "jane", apicommon.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/login", "", loginRequest{Username: "jane", Password: "secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp apicommon.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}

	// The issued token must open protected routes.
	if rec := env.do(t, http.MethodGet, "/api/users", resp.Token, nil); rec.Code != http.StatusOK {
		t.Errorf("token did not authenticate, got %d", rec.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.loginAs(t, "jane", apicommon.RoleUser)

	for _, req := range []loginRequest{
		{Username: "jane", Password: "wrong"},
		{Username: "nobody", Password: "secret"},
	} {
		rec := env.do(t, http.MethodPost, "/api/login", "", req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("login %q/%q: expected 401, got %d", req.Username, req.Password, rec.Code)
		}
	}
}

func TestUserCreateRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.loginAs(t, "jane", apicommon.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/users", token, userCreateRequest{Username: "bob", Password: "pw"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestUserCreateDuplicate(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.loginAs(t, "admin", apicommon.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/users", token, userCreateRequest{Username: "bob", Password: "pw"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/users", token, userCreateRequest{Username: "bob", Password: "pw"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := errorMessage(t, rec); got != "User already exists." {
		t.Errorf("unexpected message %q", got)
	}
}

func TestUserDeleteSelfRejected(t *testing.T) {
	env := newTestEnv(t)
	token, id := env.loginAs(t, "admin", apicommon.RoleAdmin)

	rec := env.do(t, http.MethodDelete, "/api/users/"+id, token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := errorMessage(t, rec); got != "Operation not allowed" {
		t.Errorf("unexpected message %q", got)
	}
	// The record must survive the rejected call.
	user, err := env.store.User(id)
	if err != nil || user == nil {
		t.Fatalf("user disappeared after a rejected self delete: %v", err)
	}
}

func TestUserDeleteCascadesRegistries(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.loginAs(t, "admin", apicommon.RoleAdmin)
	userToken, userID := env.loginAs(t, "jane", apicommon.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/registries/v2", userToken, map[string]string{
		"name": "private", "url": "https://registry.example.com",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("registry create failed with %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodDelete, "/api/users/"+userID, admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	registries, err := env.store.RegistriesByOwner("jane")
	if err != nil {
		t.Fatalf("failed to list registries: %v", err)
	}
	if len(registries) != 0 {
		t.Errorf("expected the user's registries to be removed, found %d", len(registries))
	}
}

func TestUserDeleteUnknown(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.loginAs(t, "admin", apicommon.RoleAdmin)

	rec := env.do(t, http.MethodDelete, "/api/users/no-such-id", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPasswordChange(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.loginAs(t, "jane", apicommon.RoleUser)

	rec := env.do(t, http.MethodPost, "/api/password", token, passwordChangeRequest{Password: "wrong", NewPassword: "next"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong old password: expected 400, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/password", token, passwordChangeRequest{Password: "secret", NewPassword: "next"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body %s)", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodPost, "/api/login", "", loginRequest{Username: "jane", Password: "next"}); rec.Code != http.StatusOK {
		t.Errorf("login with the new password failed with %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPost, "/api/login", "", loginRequest{Username: "jane", Password: "secret"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("login with the old password must fail, got %d", rec.Code)
	}
}

func TestUsersViewHidesPassword(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.loginAs(t, "admin", apicommon.RoleAdmin)

	rec := env.do(t, http.MethodGet, "/api/users", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var raw []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("expected one user, got %d", len(raw))
	}
	if _, ok := raw[0]["password"]; ok {
		t.Error("password hash leaked into the response")
	}
}
