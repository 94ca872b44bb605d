package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/utils/buildurl"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/utils/funcutils"
)

// DefaultAPIVersion is the engine API version the client speaks.
const DefaultAPIVersion = "v1.45"

// EngineClient implements Client against the Docker Engine REST API.
type EngineClient struct {
	http    *http.Client
	baseURL string
}

// NewEngineClient connects to the engine at host, which is either a
// unix socket ("unix:///var/run/docker.sock") or a TCP endpoint
// ("tcp://10.0.0.5:2375"). An empty apiVersion selects the default.
func NewEngineClient(host, apiVersion string) (*EngineClient, error) {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	switch {
	case strings.HasPrefix(host, "unix://"):
		socketPath := strings.TrimPrefix(host, "unix://")
		transport := &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socketPath)
			},
		}
		return &EngineClient{
			http:    &http.Client{Transport: transport},
			baseURL: "http://docker/" + apiVersion,
		}, nil
	case strings.HasPrefix(host, "tcp://"):
		return &EngineClient{
			http:    &http.Client{},
			baseURL: "http://" + strings.TrimPrefix(host, "tcp://") + "/" + apiVersion,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported engine host %q", host)
	}
}

// WaitForEngine blocks until the engine answers its ping endpoint, retrying
// with exponential backoff until ctx expires.
func (c *EngineClient) WaitForEngine(ctx context.Context) error {
	operation := func() error {
		return c.do(ctx, http.MethodGet, buildurl.New(
			buildurl.WithBasePath(c.baseURL),
			buildurl.WithPathElement("_ping"),
		), nil, nil)
	}
	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	return backoff.RetryNotify(operation, policy, func(err error, next time.Duration) {
		log.WithError(err).Warnf("engine not reachable, retrying in %s", next)
	})
}

func (c *EngineClient) do(ctx context.Context, method, url string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer funcutils.PanicOrLogOnErr(resp.Body.Close, false, "failed to close engine response body")
	if resp.StatusCode >= http.StatusBadRequest {
		return engineError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// engineError decodes the engine's {"message": ...} failure body. A 404
// wraps errdefs.ErrNotFound so lookups can map it onto the response
// taxonomy; everything else becomes a RemoteError with the embedded message.
func engineError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		msg = body.Message
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", msg, errdefs.ErrNotFound)
	}
	return errdefs.Remote(resp.StatusCode, msg)
}

func (c *EngineClient) resource(elements ...string) string {
	options := []buildurl.Option{buildurl.WithBasePath(c.baseURL)}
	for _, e := range elements {
		options = append(options, buildurl.WithPathElement(e))
	}
	return buildurl.New(options...)
}

func (c *EngineClient) Services(ctx context.Context) ([]Service, error) {
	var wire []engineService
	if err := c.do(ctx, http.MethodGet, c.resource("services"), nil, &wire); err != nil {
		return nil, err
	}
	services := make([]Service, 0, len(wire))
	for _, w := range wire {
		services = append(services, w.toService())
	}
	return services, nil
}

func (c *EngineClient) Service(ctx context.Context, id string) (*Service, error) {
	var wire engineService
	if err := c.do(ctx, http.MethodGet, c.resource("services", id), nil, &wire); err != nil {
		return nil, err
	}
	s := wire.toService()
	return &s, nil
}

func (c *EngineClient) CreateService(ctx context.Context, spec ServiceSpec) (string, error) {
	var out struct {
		ID string `json:"ID"`
	}
	err := c.do(ctx, http.MethodPost, c.resource("services", "create"), wireServiceSpec(spec), &out)
	if err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *EngineClient) UpdateService(ctx context.Context, id string, version uint64, spec ServiceSpec) error {
	url := buildurl.New(
		buildurl.WithBasePath(c.baseURL),
		buildurl.WithPathElement("services"),
		buildurl.WithPathElement(id),
		buildurl.WithPathElement("update"),
		buildurl.WithQueryParam("version", strconv.FormatUint(version, 10)),
	)
	return c.do(ctx, http.MethodPost, url, wireServiceSpec(spec), nil)
}

// RedeployService forces the scheduler to restart all tasks of the service
// by bumping the spec's force counter. The engine applies the change
// asynchronously.
func (c *EngineClient) RedeployService(ctx context.Context, id string) error {
	var wire engineService
	if err := c.do(ctx, http.MethodGet, c.resource("services", id), nil, &wire); err != nil {
		return err
	}
	wire.Spec.TaskTemplate.ForceUpdate++
	url := buildurl.New(
		buildurl.WithBasePath(c.baseURL),
		buildurl.WithPathElement("services"),
		buildurl.WithPathElement(id),
		buildurl.WithPathElement("update"),
		buildurl.WithQueryParam("version", strconv.FormatUint(wire.Version.Index, 10)),
	)
	return c.do(ctx, http.MethodPost, url, wire.Spec, nil)
}

// RollbackService reverts the service to its previous spec. The engine
// applies the change asynchronously.
func (c *EngineClient) RollbackService(ctx context.Context, id string) error {
	var wire engineService
	if err := c.do(ctx, http.MethodGet, c.resource("services", id), nil, &wire); err != nil {
		return err
	}
	url := buildurl.New(
		buildurl.WithBasePath(c.baseURL),
		buildurl.WithPathElement("services"),
		buildurl.WithPathElement(id),
		buildurl.WithPathElement("update"),
		buildurl.WithQueryParam("version", strconv.FormatUint(wire.Version.Index, 10)),
		buildurl.WithQueryParam("rollback", "previous"),
	)
	return c.do(ctx, http.MethodPost, url, wire.Spec, nil)
}

func (c *EngineClient) DeleteService(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.resource("services", id), nil, nil)
}

func (c *EngineClient) Nodes(ctx context.Context) ([]Node, error) {
	var wire []engineNode
	if err := c.do(ctx, http.MethodGet, c.resource("nodes"), nil, &wire); err != nil {
		return nil, err
	}
	nodes := make([]Node, 0, len(wire))
	for _, w := range wire {
		nodes = append(nodes, w.toNode())
	}
	return nodes, nil
}

func (c *EngineClient) Node(ctx context.Context, id string) (*Node, error) {
	var wire engineNode
	if err := c.do(ctx, http.MethodGet, c.resource("nodes", id), nil, &wire); err != nil {
		return nil, err
	}
	n := wire.toNode()
	return &n, nil
}

func (c *EngineClient) UpdateNode(ctx context.Context, id string, version uint64, spec NodeSpec) error {
	url := buildurl.New(
		buildurl.WithBasePath(c.baseURL),
		buildurl.WithPathElement("nodes"),
		buildurl.WithPathElement(id),
		buildurl.WithPathElement("update"),
		buildurl.WithQueryParam("version", strconv.FormatUint(version, 10)),
	)
	return c.do(ctx, http.MethodPost, url, wireNodeSpec(spec), nil)
}

func (c *EngineClient) Tasks(ctx context.Context) ([]Task, error) {
	var wire []engineTask
	if err := c.do(ctx, http.MethodGet, c.resource("tasks"), nil, &wire); err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(wire))
	for _, w := range wire {
		tasks = append(tasks, w.toTask())
	}
	return tasks, nil
}

func (c *EngineClient) Task(ctx context.Context, id string) (*Task, error) {
	var wire engineTask
	if err := c.do(ctx, http.MethodGet, c.resource("tasks", id), nil, &wire); err != nil {
		return nil, err
	}
	t := wire.toTask()
	return &t, nil
}

func (c *EngineClient) Networks(ctx context.Context) ([]Network, error) {
	var wire []engineNetwork
	if err := c.do(ctx, http.MethodGet, c.resource("networks"), nil, &wire); err != nil {
		return nil, err
	}
	networks := make([]Network, 0, len(wire))
	for _, w := range wire {
		networks = append(networks, w.toNetwork())
	}
	return networks, nil
}

func (c *EngineClient) Network(ctx context.Context, id string) (*Network, error) {
	var wire engineNetwork
	if err := c.do(ctx, http.MethodGet, c.resource("networks", id), nil, &wire); err != nil {
		return nil, err
	}
	n := wire.toNetwork()
	return &n, nil
}

func (c *EngineClient) CreateNetwork(ctx context.Context, spec NetworkSpec) (string, error) {
	body := map[string]any{"Name": spec.Name, "Driver": spec.Driver, "Labels": spec.Labels}
	var out struct {
		ID string `json:"Id"`
	}
	if err := c.do(ctx, http.MethodPost, c.resource("networks", "create"), body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *EngineClient) DeleteNetwork(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.resource("networks", id), nil, nil)
}

func (c *EngineClient) Volumes(ctx context.Context) ([]Volume, error) {
	var wire struct {
		Volumes []engineVolume `json:"Volumes"`
	}
	if err := c.do(ctx, http.MethodGet, c.resource("volumes"), nil, &wire); err != nil {
		return nil, err
	}
	volumes := make([]Volume, 0, len(wire.Volumes))
	for _, w := range wire.Volumes {
		volumes = append(volumes, w.toVolume())
	}
	return volumes, nil
}

func (c *EngineClient) Volume(ctx context.Context, name string) (*Volume, error) {
	var wire engineVolume
	if err := c.do(ctx, http.MethodGet, c.resource("volumes", name), nil, &wire); err != nil {
		return nil, err
	}
	v := wire.toVolume()
	return &v, nil
}

func (c *EngineClient) CreateVolume(ctx context.Context, spec VolumeSpec) (string, error) {
	body := map[string]any{"Name": spec.Name, "Driver": spec.Driver, "Labels": spec.Labels}
	var out engineVolume
	if err := c.do(ctx, http.MethodPost, c.resource("volumes", "create"), body, &out); err != nil {
		return "", err
	}
	return out.Name, nil
}

func (c *EngineClient) DeleteVolume(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, c.resource("volumes", name), nil, nil)
}

func (c *EngineClient) Secrets(ctx context.Context) ([]Secret, error) {
	var wire []engineSecret
	if err := c.do(ctx, http.MethodGet, c.resource("secrets"), nil, &wire); err != nil {
		return nil, err
	}
	secrets := make([]Secret, 0, len(wire))
	for _, w := range wire {
		secrets = append(secrets, w.toSecret())
	}
	return secrets, nil
}

func (c *EngineClient) Secret(ctx context.Context, id string) (*Secret, error) {
	var wire engineSecret
	if err := c.do(ctx, http.MethodGet, c.resource("secrets", id), nil, &wire); err != nil {
		return nil, err
	}
	s := wire.toSecret()
	return &s, nil
}

func (c *EngineClient) CreateSecret(ctx context.Context, spec SecretSpec) (string, error) {
	body := map[string]any{"Name": spec.Name, "Data": spec.Data, "Labels": spec.Labels}
	var out struct {
		ID string `json:"ID"`
	}
	if err := c.do(ctx, http.MethodPost, c.resource("secrets", "create"), body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *EngineClient) UpdateSecret(ctx context.Context, id string, version uint64, spec SecretSpec) error {
	url := buildurl.New(
		buildurl.WithBasePath(c.baseURL),
		buildurl.WithPathElement("secrets"),
		buildurl.WithPathElement(id),
		buildurl.WithPathElement("update"),
		buildurl.WithQueryParam("version", strconv.FormatUint(version, 10)),
	)
	body := map[string]any{"Name": spec.Name, "Labels": spec.Labels}
	return c.do(ctx, http.MethodPost, url, body, nil)
}

func (c *EngineClient) DeleteSecret(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.resource("secrets", id), nil, nil)
}

func (c *EngineClient) Configs(ctx context.Context) ([]Config, error) {
	var wire []engineConfig
	if err := c.do(ctx, http.MethodGet, c.resource("configs"), nil, &wire); err != nil {
		return nil, err
	}
	configs := make([]Config, 0, len(wire))
	for _, w := range wire {
		configs = append(configs, w.toConfig())
	}
	return configs, nil
}

func (c *EngineClient) Config(ctx context.Context, id string) (*Config, error) {
	var wire engineConfig
	if err := c.do(ctx, http.MethodGet, c.resource("configs", id), nil, &wire); err != nil {
		return nil, err
	}
	cfg := wire.toConfig()
	return &cfg, nil
}

func (c *EngineClient) CreateConfig(ctx context.Context, spec ConfigSpec) (string, error) {
	body := map[string]any{"Name": spec.Name, "Data": spec.Data, "Labels": spec.Labels}
	var out struct {
		ID string `json:"ID"`
	}
	if err := c.do(ctx, http.MethodPost, c.resource("configs", "create"), body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *EngineClient) DeleteConfig(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.resource("configs", id), nil, nil)
}
