package registry

import (
	"context"
	"net/http"
	"testing"

	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/store"
)

type stubStore struct {
	store.Store

	duplicate   bool
	created     *store.Registry
	updated     *store.Registry
	createCalls int
	currentByID map[string]*store.Registry
}

func (s *stubStore) CreateRegistry(r *store.Registry) (*store.Registry, error) {
	s.createCalls++
	if s.duplicate && r.AccountKey != "" {
		return nil, nil
	}
	r.ID = "reg-1"
	s.created = r
	return r, nil
}

func (s *stubStore) UpdateRegistry(r *store.Registry) error {
	s.updated = r
	return nil
}

func (s *stubStore) Registry(id string) (*store.Registry, error) {
	return s.currentByID[id], nil
}

type stubPinger struct {
	err   error
	calls int
	urls  []string
}

func (p *stubPinger) Ping(_ context.Context, registryURL, _, _ string) error {
	p.calls++
	p.urls = append(p.urls, registryURL)
	return p.err
}

type stubHub struct {
	token      string
	loginErr   error
	namespaces []string
	loginCalls int
}

func (h *stubHub) Login(_ context.Context, _, _ string) (string, error) {
	h.loginCalls++
	if h.loginErr != nil {
		return "", h.loginErr
	}
	return h.token, nil
}

func (h *stubHub) Namespaces(_ context.Context, _ string) ([]string, error) {
	return h.namespaces, nil
}

type stubTokens struct {
	token Token
	err   error
	calls int
}

func (t *stubTokens) AuthorizationToken(_ context.Context, _, _, _ string) (Token, error) {
	t.calls++
	if t.err != nil {
		return Token{}, t.err
	}
	return t.token, nil
}

func TestParseKind(t *testing.T) {
	for _, tag := range []string{"v2", "dockerhub", "ecr", "acr", "gitlab"} {
		if _, err := ParseKind(tag); err != nil {
			t.Errorf("ParseKind(%q) unexpected error: %v", tag, err)
		}
	}
	_, err := ParseKind("quay")
	if err == nil {
		t.Fatal("expected error for unsupported tag")
	}
	if err.Error() != "Unknown registry type [quay]" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errdefs.IsUnsupportedType(err) {
		t.Fatal("expected UnsupportedTypeError")
	}
}

func TestV2Create_probesBeforePersist(t *testing.T) {
	st := &stubStore{}
	pinger := &stubPinger{}
	p := &v2Provider{store: st, pinger: pinger}
	created, err := p.Create(context.Background(), "ada", Form{Name: "local", URL: "https://registry.local", Username: "u", Password: "p"})
	if err != nil {
		t.Fatal(err)
	}
	if pinger.calls != 1 {
		t.Fatalf("expected one probe, got %d", pinger.calls)
	}
	if created.AccountKey != "" {
		t.Fatal("v2 records must not carry an account key")
	}
	if created.Owner != "ada" || created.Kind != "v2" {
		t.Fatalf("unexpected record: %+v", created)
	}
}

func TestV2Create_probeFailureSkipsStore(t *testing.T) {
	st := &stubStore{}
	pinger := &stubPinger{err: errdefs.Remote(http.StatusUnauthorized, "authentication required")}
	p := &v2Provider{store: st, pinger: pinger}
	_, err := p.Create(context.Background(), "ada", Form{URL: "https://registry.local"})
	remote, ok := errdefs.AsRemote(err)
	if !ok {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Message != "authentication required" {
		t.Fatalf("unexpected message %q", remote.Message)
	}
	if st.createCalls != 0 {
		t.Fatal("store must not be called after a failed probe")
	}
}

func TestCreate_conflictMessages(t *testing.T) {
	tests := []struct {
		kind Kind
		form Form
		want string
	}{
		{KindDockerhub, Form{Username: "u", Password: "p"}, "Dockerhub account already linked"},
		{KindECR, Form{Region: "eu-west-1", AccessKeyID: "AKIA", SecretAccessKey: "s"}, "AWS ECR account already linked"},
		{KindACR, Form{ServiceName: "deck", Username: "sp", Password: "s"}, "Azure ACR account with given service principals already linked"},
		{KindGitlab, Form{Username: "u", Token: "t"}, "Gitlab registry account already linked"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			st := &stubStore{duplicate: true}
			providers := NewProviders(st, &stubPinger{}, &stubHub{token: "tok"}, &stubTokens{token: Token{Username: "AWS", Password: "p", ProxyEndpoint: "https://1.dkr.ecr.eu-west-1.amazonaws.com"}})
			_, err := providers.For(tt.kind).Create(context.Background(), "ada", tt.form)
			if err == nil {
				t.Fatal("expected conflict error")
			}
			if !errdefs.IsConflict(err) {
				t.Fatalf("expected ConflictError, got %v", err)
			}
			if err.Error() != tt.want {
				t.Fatalf("got %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestDockerhubCreate_persistsNamespaces(t *testing.T) {
	st := &stubStore{}
	hub := &stubHub{token: "tok", namespaces: []string{"ada", "adaorg"}}
	p := &dockerhubProvider{store: st, hub: hub}
	created, err := p.Create(context.Background(), "ada", Form{Username: "adahub", Password: "p"})
	if err != nil {
		t.Fatal(err)
	}
	if len(created.Namespaces) != 2 {
		t.Fatalf("expected namespaces to be persisted, got %+v", created.Namespaces)
	}
	if created.AccountKey != "adahub" {
		t.Fatalf("unexpected account key %q", created.AccountKey)
	}
	if created.URL != DockerhubRegistryURL {
		t.Fatalf("unexpected url %q", created.URL)
	}
}

func TestDockerhubUpdate_reloginOnlyWithPassword(t *testing.T) {
	current := &store.Registry{ID: "reg-1", Kind: "dockerhub", Username: "adahub", Password: "old", AccountKey: "adahub"}

	st := &stubStore{}
	hub := &stubHub{token: "tok", namespaces: []string{"ada"}}
	p := &dockerhubProvider{store: st, hub: hub}

	if _, err := p.Update(context.Background(), current, Form{Name: "renamed"}); err != nil {
		t.Fatal(err)
	}
	if hub.loginCalls != 0 {
		t.Fatal("update without password must not re-login")
	}
	if st.updated.Name != "renamed" || st.updated.Password != "old" {
		t.Fatalf("unexpected delta: %+v", st.updated)
	}

	if _, err := p.Update(context.Background(), current, Form{Password: "new"}); err != nil {
		t.Fatal(err)
	}
	if hub.loginCalls != 1 {
		t.Fatal("update with password must re-login")
	}
	if st.updated.Password != "new" {
		t.Fatalf("expected new password to be persisted, got %q", st.updated.Password)
	}
}

func TestECRCreate_derivesURLFromProxyEndpoint(t *testing.T) {
	st := &stubStore{}
	tokens := &stubTokens{token: Token{Username: "AWS", Password: "tmp", ProxyEndpoint: "https://1.dkr.ecr.eu-west-1.amazonaws.com"}}
	p := &ecrProvider{store: st, tokens: tokens}
	created, err := p.Create(context.Background(), "ada", Form{Region: "eu-west-1", AccessKeyID: "AKIA", SecretAccessKey: "s"})
	if err != nil {
		t.Fatal(err)
	}
	if created.URL != "https://1.dkr.ecr.eu-west-1.amazonaws.com" {
		t.Fatalf("unexpected url %q", created.URL)
	}
	if created.AccountKey != "AKIA" {
		t.Fatalf("unexpected account key %q", created.AccountKey)
	}
}

func TestECRCreate_tokenFailureSkipsStore(t *testing.T) {
	st := &stubStore{}
	tokens := &stubTokens{err: errdefs.Remote(http.StatusBadRequest, "The security token included in the request is invalid.")}
	p := &ecrProvider{store: st, tokens: tokens}
	_, err := p.Create(context.Background(), "ada", Form{Region: "eu-west-1", AccessKeyID: "AKIA", SecretAccessKey: "s"})
	remote, ok := errdefs.AsRemote(err)
	if !ok {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Message != "The security token included in the request is invalid." {
		t.Fatalf("unexpected message %q", remote.Message)
	}
	if st.createCalls != 0 {
		t.Fatal("store must not be called after a failed token request")
	}
}

func TestACRCreate_derivesServiceURL(t *testing.T) {
	st := &stubStore{}
	pinger := &stubPinger{}
	p := &acrProvider{store: st, pinger: pinger}
	created, err := p.Create(context.Background(), "ada", Form{ServiceName: "deck", Username: "sp-id", Password: "sp-secret"})
	if err != nil {
		t.Fatal(err)
	}
	if created.URL != "https://deck.azurecr.io" {
		t.Fatalf("unexpected url %q", created.URL)
	}
	if len(pinger.urls) != 1 || pinger.urls[0] != "https://deck.azurecr.io" {
		t.Fatalf("probe must use the derived url, got %+v", pinger.urls)
	}
}

func TestGitlabCreate_defaultsRegistryURL(t *testing.T) {
	st := &stubStore{}
	pinger := &stubPinger{}
	p := &gitlabProvider{store: st, pinger: pinger}
	created, err := p.Create(context.Background(), "ada", Form{Username: "ada", Token: "glpat"})
	if err != nil {
		t.Fatal(err)
	}
	if created.URL != DefaultGitlabRegistryURL {
		t.Fatalf("unexpected url %q", created.URL)
	}
	if created.Password != "glpat" {
		t.Fatal("token must be persisted as the credential")
	}
}

func TestProviders_closedTable(t *testing.T) {
	providers := NewProviders(&stubStore{}, &stubPinger{}, &stubHub{}, &stubTokens{})
	for _, kind := range Kinds() {
		if providers.For(kind) == nil {
			t.Fatalf("no provider for %q", kind)
		}
	}
}
