package registry

import (
	"context"
	"fmt"

	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/store"
)

// DefaultGitlabRegistryURL is probed when a gitlab form omits the URL.
const DefaultGitlabRegistryURL = "https://registry.gitlab.com"

// DockerhubRegistryURL is the registry endpoint persisted for hub accounts.
const DockerhubRegistryURL = "https://registry-1.docker.io"

type v2Provider struct {
	store  store.Store
	pinger Pinger
}

func (p *v2Provider) Create(ctx context.Context, owner string, form Form) (*store.Registry, error) {
	if form.URL == "" {
		return nil, errdefs.Validation("registry url is required")
	}
	if err := p.pinger.Ping(ctx, form.URL, form.Username, form.Password); err != nil {
		return nil, err
	}
	// v2 create carries no account key: duplicates are allowed and only a
	// failed probe rejects the payload.
	return p.store.CreateRegistry(&store.Registry{
		Kind:     string(KindV2),
		Name:     form.Name,
		URL:      form.URL,
		Username: form.Username,
		Password: form.Password,
		Public:   form.Public,
		Owner:    owner,
	})
}

func (p *v2Provider) Update(ctx context.Context, current *store.Registry, form Form) (*store.Registry, error) {
	next := *current
	applyDelta(&next, form)
	if err := p.pinger.Ping(ctx, next.URL, next.Username, next.Password); err != nil {
		return nil, err
	}
	if err := p.store.UpdateRegistry(&next); err != nil {
		return nil, err
	}
	return &next, nil
}

type dockerhubProvider struct {
	store store.Store
	hub   HubClient
}

func (p *dockerhubProvider) Create(ctx context.Context, owner string, form Form) (*store.Registry, error) {
	if form.Username == "" || form.Password == "" {
		return nil, errdefs.Validation("dockerhub username and password are required")
	}
	token, err := p.hub.Login(ctx, form.Username, form.Password)
	if err != nil {
		return nil, err
	}
	namespaces, err := p.hub.Namespaces(ctx, token)
	if err != nil {
		return nil, err
	}
	created, err := p.store.CreateRegistry(&store.Registry{
		Kind:       string(KindDockerhub),
		Name:       form.Name,
		URL:        DockerhubRegistryURL,
		Username:   form.Username,
		Password:   form.Password,
		Public:     form.Public,
		Owner:      owner,
		Namespaces: namespaces,
		AccountKey: form.Username,
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, errdefs.Conflict("Dockerhub account already linked")
	}
	return created, nil
}

func (p *dockerhubProvider) Update(ctx context.Context, current *store.Registry, form Form) (*store.Registry, error) {
	next := *current
	applyDelta(&next, form)
	next.URL = DockerhubRegistryURL
	next.AccountKey = next.Username
	// re-login only when the caller supplied a new password
	if form.Password != "" {
		token, err := p.hub.Login(ctx, next.Username, next.Password)
		if err != nil {
			return nil, err
		}
		namespaces, err := p.hub.Namespaces(ctx, token)
		if err != nil {
			return nil, err
		}
		next.Namespaces = namespaces
	}
	if err := p.store.UpdateRegistry(&next); err != nil {
		return nil, err
	}
	return &next, nil
}

type ecrProvider struct {
	store  store.Store
	tokens TokenClient
}

func (p *ecrProvider) Create(ctx context.Context, owner string, form Form) (*store.Registry, error) {
	if form.Region == "" || form.AccessKeyID == "" || form.SecretAccessKey == "" {
		return nil, errdefs.Validation("ecr region, access key id and secret access key are required")
	}
	token, err := p.tokens.AuthorizationToken(ctx, form.Region, form.AccessKeyID, form.SecretAccessKey)
	if err != nil {
		return nil, err
	}
	created, err := p.store.CreateRegistry(&store.Registry{
		Kind:        string(KindECR),
		Name:        form.Name,
		URL:         token.ProxyEndpoint,
		Username:    token.Username,
		Password:    form.SecretAccessKey,
		Public:      form.Public,
		Owner:       owner,
		Region:      form.Region,
		AccessKeyID: form.AccessKeyID,
		AccountKey:  form.AccessKeyID,
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, errdefs.Conflict("AWS ECR account already linked")
	}
	return created, nil
}

func (p *ecrProvider) Update(ctx context.Context, current *store.Registry, form Form) (*store.Registry, error) {
	next := *current
	applyDelta(&next, form)
	if form.Region != "" {
		next.Region = form.Region
	}
	if form.AccessKeyID != "" {
		next.AccessKeyID = form.AccessKeyID
	}
	if form.SecretAccessKey != "" {
		next.Password = form.SecretAccessKey
	}
	// the same token derivation as create: a stale secret fails here
	token, err := p.tokens.AuthorizationToken(ctx, next.Region, next.AccessKeyID, next.Password)
	if err != nil {
		return nil, err
	}
	next.URL = token.ProxyEndpoint
	next.Username = token.Username
	next.AccountKey = next.AccessKeyID
	if err := p.store.UpdateRegistry(&next); err != nil {
		return nil, err
	}
	return &next, nil
}

type acrProvider struct {
	store  store.Store
	pinger Pinger
}

func acrServiceURL(serviceName string) string {
	return fmt.Sprintf("https://%s.azurecr.io", serviceName)
}

func (p *acrProvider) Create(ctx context.Context, owner string, form Form) (*store.Registry, error) {
	if form.ServiceName == "" || form.Username == "" || form.Password == "" {
		return nil, errdefs.Validation("acr service name and service principal credentials are required")
	}
	serviceURL := acrServiceURL(form.ServiceName)
	if err := p.pinger.Ping(ctx, serviceURL, form.Username, form.Password); err != nil {
		return nil, err
	}
	created, err := p.store.CreateRegistry(&store.Registry{
		Kind:        string(KindACR),
		Name:        form.Name,
		URL:         serviceURL,
		Username:    form.Username,
		Password:    form.Password,
		Public:      form.Public,
		Owner:       owner,
		ServiceName: form.ServiceName,
		AccountKey:  form.Username,
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, errdefs.Conflict("Azure ACR account with given service principals already linked")
	}
	return created, nil
}

func (p *acrProvider) Update(ctx context.Context, current *store.Registry, form Form) (*store.Registry, error) {
	next := *current
	applyDelta(&next, form)
	if form.ServiceName != "" {
		next.ServiceName = form.ServiceName
	}
	next.URL = acrServiceURL(next.ServiceName)
	next.AccountKey = next.Username
	if err := p.pinger.Ping(ctx, next.URL, next.Username, next.Password); err != nil {
		return nil, err
	}
	if err := p.store.UpdateRegistry(&next); err != nil {
		return nil, err
	}
	return &next, nil
}

type gitlabProvider struct {
	store  store.Store
	pinger Pinger
}

func (p *gitlabProvider) Create(ctx context.Context, owner string, form Form) (*store.Registry, error) {
	if form.Username == "" || form.Token == "" {
		return nil, errdefs.Validation("gitlab username and token are required")
	}
	registryURL := form.URL
	if registryURL == "" {
		registryURL = DefaultGitlabRegistryURL
	}
	if err := p.pinger.Ping(ctx, registryURL, form.Username, form.Token); err != nil {
		return nil, err
	}
	created, err := p.store.CreateRegistry(&store.Registry{
		Kind:       string(KindGitlab),
		Name:       form.Name,
		URL:        registryURL,
		Username:   form.Username,
		Password:   form.Token,
		Public:     form.Public,
		Owner:      owner,
		AccountKey: form.Username,
	})
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, errdefs.Conflict("Gitlab registry account already linked")
	}
	return created, nil
}

func (p *gitlabProvider) Update(ctx context.Context, current *store.Registry, form Form) (*store.Registry, error) {
	next := *current
	applyDelta(&next, form)
	if form.Token != "" {
		next.Password = form.Token
	}
	next.AccountKey = next.Username
	if err := p.pinger.Ping(ctx, next.URL, next.Username, next.Password); err != nil {
		return nil, err
	}
	if err := p.store.UpdateRegistry(&next); err != nil {
		return nil, err
	}
	return &next, nil
}

// applyDelta copies the generic mutable fields of the form onto the record.
// Empty credential fields keep the stored values.
func applyDelta(r *store.Registry, form Form) {
	if form.Name != "" {
		r.Name = form.Name
	}
	if form.URL != "" {
		r.URL = form.URL
	}
	if form.Username != "" {
		r.Username = form.Username
	}
	if form.Password != "" {
		r.Password = form.Password
	}
	r.Public = form.Public
}
