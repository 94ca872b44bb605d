package cluster

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
)

func newTestEngine(t *testing.T, handler http.Handler) *EngineClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewEngineClient("tcp://"+strings.TrimPrefix(srv.URL, "http://"), "")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestServices_decodesWirePayload(t *testing.T) {
	c := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+DefaultAPIVersion+"/services" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{
				"ID": "svc1",
				"Version": {"Index": 7},
				"Spec": {
					"Name": "web",
					"Labels": {"com.swarmdeck.stack.namespace": "shop"},
					"TaskTemplate": {"ContainerSpec": {"Image": "nginx:1.27"}},
					"Mode": {"Replicated": {"Replicas": 3}},
					"EndpointSpec": {"Ports": [{"Protocol": "tcp", "TargetPort": 80, "PublishedPort": 8080}]}
				}
			}
		]`))
	}))
	services, err := c.Services(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(services) != 1 {
		t.Fatalf("expected 1 service, got %d", len(services))
	}
	s := services[0]
	if s.ID != "svc1" || s.Version != 7 || s.Spec.Name != "web" {
		t.Fatalf("unexpected service: %+v", s)
	}
	if s.Spec.Image != "nginx:1.27" || s.Spec.Replicas != 3 {
		t.Fatalf("unexpected spec: %+v", s.Spec)
	}
	if len(s.Spec.Ports) != 1 || s.Spec.Ports[0].PublishedPort != 8080 {
		t.Fatalf("unexpected ports: %+v", s.Spec.Ports)
	}
}

func TestService_notFound(t *testing.T) {
	c := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "service gone not found"}`))
	}))
	_, err := c.Service(context.Background(), "gone")
	if !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateService_remoteErrorCarriesMessage(t *testing.T) {
	c := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message": "name conflicts with an existing object"}`))
	}))
	_, err := c.CreateService(context.Background(), ServiceSpec{Name: "web"})
	remote, ok := errdefs.AsRemote(err)
	if !ok {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Message != "name conflicts with an existing object" {
		t.Fatalf("unexpected message %q", remote.Message)
	}
}

func TestUpdateService_sendsVersionAndWireSpec(t *testing.T) {
	var gotQuery string
	var gotBody engineServiceSpec
	c := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/services/svc1/update") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Error(err)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	err := c.UpdateService(context.Background(), "svc1", 12, ServiceSpec{Name: "web", Image: "nginx:1.27", Replicas: 2})
	if err != nil {
		t.Fatal(err)
	}
	if gotQuery != "version=12" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if gotBody.TaskTemplate.ContainerSpec.Image != "nginx:1.27" {
		t.Fatalf("unexpected body %+v", gotBody)
	}
	if gotBody.Mode.Replicated == nil || gotBody.Mode.Replicated.Replicas != 2 {
		t.Fatalf("unexpected mode %+v", gotBody.Mode)
	}
}

func TestRedeployService_bumpsForceUpdate(t *testing.T) {
	var updated engineServiceSpec
	c := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"ID": "svc1", "Version": {"Index": 4}, "Spec": {"Name": "web", "TaskTemplate": {"ContainerSpec": {"Image": "nginx"}, "ForceUpdate": 2}}}`))
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
			t.Error(err)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	if err := c.RedeployService(context.Background(), "svc1"); err != nil {
		t.Fatal(err)
	}
	if updated.TaskTemplate.ForceUpdate != 3 {
		t.Fatalf("expected force counter 3, got %d", updated.TaskTemplate.ForceUpdate)
	}
}

func TestStacks_groupsByLabel(t *testing.T) {
	c := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"ID": "a", "Spec": {"Name": "shop_web", "Labels": {"com.swarmdeck.stack.namespace": "shop"}, "TaskTemplate": {"ContainerSpec": {}}, "Mode": {}}},
			{"ID": "b", "Spec": {"Name": "shop_db", "Labels": {"com.swarmdeck.stack.namespace": "shop"}, "TaskTemplate": {"ContainerSpec": {}}, "Mode": {}}},
			{"ID": "c", "Spec": {"Name": "standalone", "TaskTemplate": {"ContainerSpec": {}}, "Mode": {}}}
		]`))
	}))
	stacks, err := c.Stacks(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(stacks) != 1 {
		t.Fatalf("expected 1 stack, got %d", len(stacks))
	}
	if stacks[0].Name != "shop" || len(stacks[0].Services) != 2 {
		t.Fatalf("unexpected stack: %+v", stacks[0])
	}
	_, err = c.Stack(context.Background(), "missing")
	if !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing stack, got %v", err)
	}
}

func TestStampStackService(t *testing.T) {
	svc := stampStackService("shop", ServiceSpec{Name: "web"})
	if svc.Name != "shop_web" {
		t.Fatalf("expected prefixed name, got %q", svc.Name)
	}
	if svc.Labels[StackLabel] != "shop" {
		t.Fatalf("expected stack label, got %+v", svc.Labels)
	}
	already := stampStackService("shop", ServiceSpec{Name: "shop_web"})
	if already.Name != "shop_web" {
		t.Fatalf("prefix must not be applied twice, got %q", already.Name)
	}
}
