package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/utils/funcutils"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/errcode"
)

// Pinger probes a distribution API endpoint with the given credentials.
// A failed probe surfaces the error message embedded in the remote
// response body.
type Pinger interface {
	Ping(ctx context.Context, registryURL, username, password string) error
}

// orasPinger implements Pinger on top of the oras remote registry client.
type orasPinger struct{}

// NewPinger returns the default distribution API prober.
func NewPinger() Pinger {
	return orasPinger{}
}

func (orasPinger) Ping(ctx context.Context, registryURL, username, password string) error {
	host, plainHTTP, err := splitRegistryURL(registryURL)
	if err != nil {
		return err
	}
	reg, err := remote.NewRegistry(host)
	if err != nil {
		return errdefs.Validation(err.Error())
	}
	reg.PlainHTTP = plainHTTP
	// a plain client on purpose: failed probes are reported, not retried
	reg.Client = &auth.Client{
		Credential: auth.StaticCredential(host, auth.Credential{
			Username: username,
			Password: password,
		}),
	}
	if err := reg.Ping(ctx); err != nil {
		return mapRemoteErr(err)
	}
	return nil
}

// splitRegistryURL turns a configured registry URL into the oras host
// reference plus the plain HTTP flag. A bare host is accepted and assumed
// to be HTTPS.
func splitRegistryURL(registryURL string) (host string, plainHTTP bool, err error) {
	if !strings.Contains(registryURL, "://") {
		return registryURL, false, nil
	}
	u, err := url.Parse(registryURL)
	if err != nil {
		return "", false, errdefs.Validation(fmt.Sprintf("invalid registry url %q", registryURL))
	}
	switch u.Scheme {
	case "https":
		return u.Host, false, nil
	case "http":
		return u.Host, true, nil
	default:
		return "", false, errdefs.Validation(fmt.Sprintf("unsupported registry url scheme %q", u.Scheme))
	}
}

// mapRemoteErr converts an oras error response into the RemoteError shape,
// surfacing the message embedded in the response body.
func mapRemoteErr(err error) error {
	var resp *errcode.ErrorResponse
	if errors.As(err, &resp) {
		msg := resp.Error()
		if len(resp.Errors) > 0 {
			msg = resp.Errors[0].Message
		}
		return errdefs.Remote(resp.StatusCode, msg)
	}
	return err
}

// HubClient speaks the Docker Hub account API.
type HubClient interface {
	// Login exchanges the account credentials for a session token.
	Login(ctx context.Context, username, password string) (string, error)
	// Namespaces lists the namespaces the session token may access.
	Namespaces(ctx context.Context, token string) ([]string, error)
}

// DefaultHubURL is the Docker Hub account API endpoint.
const DefaultHubURL = "https://hub.docker.com"

type hubClient struct {
	baseURL string
	http    *http.Client
}

// NewHubClient returns a Docker Hub account API client. An empty baseURL
// selects the public Hub endpoint.
func NewHubClient(baseURL string) HubClient {
	if baseURL == "" {
		baseURL = DefaultHubURL
	}
	return &hubClient{baseURL: baseURL, http: &http.Client{}}
}

func (h *hubClient) Login(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/v2/users/login/", strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.http.Do(req)
	if err != nil {
		return "", err
	}
	defer funcutils.PanicOrLogOnErr(resp.Body.Close, false, "failed to close hub response body")
	if resp.StatusCode >= http.StatusBadRequest {
		return "", hubError(resp)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (h *hubClient) Namespaces(ctx context.Context, token string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/v2/repositories/namespaces/", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "JWT "+token)
	resp, err := h.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer funcutils.PanicOrLogOnErr(resp.Body.Close, false, "failed to close hub response body")
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, hubError(resp)
	}
	var out struct {
		Namespaces []string `json:"namespaces"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Namespaces, nil
}

// hubError extracts the failure message embedded in a Hub response body.
func hubError(resp *http.Response) error {
	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		switch {
		case body.Detail != "":
			msg = body.Detail
		case body.Error != "":
			msg = body.Error
		}
	}
	return errdefs.Remote(resp.StatusCode, msg)
}
