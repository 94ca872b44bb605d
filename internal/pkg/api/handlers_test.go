package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/api/apicommon"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/auth"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/cluster"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/registry"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/store"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/utils/logutils"
)

func init() {
	gin.SetMode(gin.TestMode)
	logutils.SetupTestLogging()
}

// stubCluster overrides the calls a test cares about; anything else
// panics through the embedded nil interface.
type stubCluster struct {
	cluster.Client

	services map[string]*cluster.Service
	stacks   map[string]*cluster.Stack

	deleteStackErr   error
	deleteStackCalls int
	createStackCalls int
	updateStackCalls int
	redeployCalls    int
	rollbackCalls    int
}

func (s *stubCluster) Service(_ context.Context, id string) (*cluster.Service, error) {
	if svc, ok := s.services[id]; ok {
		return svc, nil
	}
	return nil, fmt.Errorf("service %s: %w", id, errdefs.ErrNotFound)
}

func (s *stubCluster) RedeployService(_ context.Context, id string) error {
	if _, ok := s.services[id]; !ok {
		return fmt.Errorf("service %s: %w", id, errdefs.ErrNotFound)
	}
	s.redeployCalls++
	return nil
}

func (s *stubCluster) RollbackService(_ context.Context, id string) error {
	if _, ok := s.services[id]; !ok {
		return fmt.Errorf("service %s: %w", id, errdefs.ErrNotFound)
	}
	s.rollbackCalls++
	return nil
}

func (s *stubCluster) Stack(_ context.Context, name string) (*cluster.Stack, error) {
	if stack, ok := s.stacks[name]; ok {
		return stack, nil
	}
	return nil, fmt.Errorf("stack %s: %w", name, errdefs.ErrNotFound)
}

func (s *stubCluster) CreateStack(_ context.Context, spec cluster.StackSpec) error {
	s.createStackCalls++
	if s.stacks == nil {
		s.stacks = map[string]*cluster.Stack{}
	}
	s.stacks[spec.Name] = &cluster.Stack{Name: spec.Name}
	return nil
}

func (s *stubCluster) UpdateStack(_ context.Context, spec cluster.StackSpec) error {
	s.updateStackCalls++
	return nil
}

func (s *stubCluster) DeleteStack(_ context.Context, name string) error {
	s.deleteStackCalls++
	if s.deleteStackErr != nil {
		return s.deleteStackErr
	}
	delete(s.stacks, name)
	return nil
}

type stubBrowser struct {
	repositories []string
	tags         []string
	descriptor   v1.Descriptor
	err          error
}

func (b *stubBrowser) Repositories(_ context.Context, _ *store.Registry) ([]string, error) {
	return b.repositories, b.err
}

func (b *stubBrowser) Tags(_ context.Context, _ *store.Registry, _ string) ([]string, error) {
	return b.tags, b.err
}

func (b *stubBrowser) Descriptor(_ context.Context, _ *store.Registry, _, _ string) (v1.Descriptor, error) {
	return b.descriptor, b.err
}

type okPinger struct{}

func (okPinger) Ping(context.Context, string, string, string) error { return nil }

type testEnv struct {
	router  *gin.Engine
	store   store.Store
	clust   *stubCluster
	browser *stubBrowser
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "console.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	clust := &stubCluster{
		services: map[string]*cluster.Service{},
		stacks:   map[string]*cluster.Stack{},
	}
	browser := &stubBrowser{}
	r := gin.New()
	NewAPI(&Config{
		Cluster:    clust,
		Store:      st,
		Providers:  registry.NewProviders(st, okPinger{}, nil, nil),
		Browser:    browser,
		SessionTTL: time.Hour,
	}).Mount(r)
	return &testEnv{router: r, store: st, clust: clust, browser: browser}
}

// loginAs creates the user if needed and returns a bearer token plus the
// user id.
func (e *testEnv) loginAs(t *testing.T, username, role string) (token, userID string) {
	t.Helper()
	user, err := e.store.UserByUsername(username)
	if err != nil {
		t.Fatalf("failed to look up user: %v", err)
	}
	if user == nil {
		hash, err := auth.HashPassword("secret")
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		user, err = e.store.CreateUser(&store.User{Username: username, Password: hash, Role: role})
		if err != nil || user == nil {
			t.Fatalf("failed to create user %q: %v", username, err)
		}
	}
	token, err = auth.IssueSession(e.store, user.ID, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue session: %v", err)
	}
	return token, user.ID
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope apicommon.APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("response is not an error envelope: %v (body %q)", err, rec.Body.String())
	}
	return envelope.Error
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/api/services", "/api/stacks", "/api/users", "/api/registries"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestVersionIsPublic(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/version", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp apicommon.VersionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Version == "" {
		t.Error("expected a non-empty version")
	}
}

func TestServiceRedeployAccepted(t *testing.T) {
	env := newTestEnv(t)
	env.clust.services["svc-1"] = &cluster.Service{ID: "svc-1", Version: 3}
	token, _ := env.loginAs(t, "admin", apicommon.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/services/svc-1/redeploy", token, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if env.clust.redeployCalls != 1 {
		t.Errorf("expected one redeploy call, got %d", env.clust.redeployCalls)
	}

	rec = env.do(t, http.MethodPost, "/api/services/missing/redeploy", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("redeploy of unknown service: expected 404, got %d", rec.Code)
	}
}

func TestServiceRollbackAccepted(t *testing.T) {
	env := newTestEnv(t)
	env.clust.services["svc-1"] = &cluster.Service{ID: "svc-1", Version: 3}
	token, _ := env.loginAs(t, "admin", apicommon.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/services/svc-1/rollback", token, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if env.clust.rollbackCalls != 1 {
		t.Errorf("expected one rollback call, got %d", env.clust.rollbackCalls)
	}
}
