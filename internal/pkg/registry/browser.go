package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/opencontainers/go-digest"
	v1 "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/store"
	oraserrdef "oras.land/oras-go/v2/errdef"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
)

// Browser lists repositories and tags of a linked registry account using
// the distribution API. ECR credentials are short lived, so a fresh token
// is derived per call.
type Browser struct {
	tokens TokenClient
}

// NewBrowser returns a Browser deriving ECR tokens through tokens.
func NewBrowser(tokens TokenClient) *Browser {
	return &Browser{tokens: tokens}
}

func (b *Browser) credentials(ctx context.Context, reg *store.Registry) (username, password string, err error) {
	if Kind(reg.Kind) != KindECR {
		return reg.Username, reg.Password, nil
	}
	token, err := b.tokens.AuthorizationToken(ctx, reg.Region, reg.AccessKeyID, reg.Password)
	if err != nil {
		return "", "", err
	}
	return token.Username, token.Password, nil
}

func (b *Browser) remoteRegistry(ctx context.Context, reg *store.Registry) (*remote.Registry, error) {
	host, plainHTTP, err := splitRegistryURL(reg.URL)
	if err != nil {
		return nil, err
	}
	username, password, err := b.credentials(ctx, reg)
	if err != nil {
		return nil, err
	}
	r, err := remote.NewRegistry(host)
	if err != nil {
		return nil, errdefs.Validation(err.Error())
	}
	r.PlainHTTP = plainHTTP
	r.Client = &auth.Client{
		Credential: auth.StaticCredential(host, auth.Credential{
			Username: username,
			Password: password,
		}),
	}
	return r, nil
}

// Repositories lists the repositories of the linked registry.
func (b *Browser) Repositories(ctx context.Context, reg *store.Registry) ([]string, error) {
	r, err := b.remoteRegistry(ctx, reg)
	if err != nil {
		return nil, err
	}
	var repositories []string
	err = r.Repositories(ctx, "", func(repos []string) error {
		repositories = append(repositories, repos...)
		return nil
	})
	if err != nil {
		return nil, mapRemoteErr(err)
	}
	return repositories, nil
}

// Tags lists the tags of one repository of the linked registry.
func (b *Browser) Tags(ctx context.Context, reg *store.Registry, repository string) ([]string, error) {
	r, err := b.remoteRegistry(ctx, reg)
	if err != nil {
		return nil, err
	}
	repo, err := r.Repository(ctx, repository)
	if err != nil {
		return nil, mapRemoteErr(err)
	}
	var tags []string
	err = repo.Tags(ctx, "", func(page []string) error {
		tags = append(tags, page...)
		return nil
	})
	if err != nil {
		return nil, mapRemoteErr(err)
	}
	return tags, nil
}

// Descriptor resolves a repository tag to its manifest descriptor.
func (b *Browser) Descriptor(ctx context.Context, reg *store.Registry, repository, tag string) (v1.Descriptor, error) {
	r, err := b.remoteRegistry(ctx, reg)
	if err != nil {
		return v1.Descriptor{}, err
	}
	repo, err := r.Repository(ctx, repository)
	if err != nil {
		return v1.Descriptor{}, mapRemoteErr(err)
	}
	desc, err := repo.Resolve(ctx, tag)
	if err != nil {
		if errors.Is(err, oraserrdef.ErrNotFound) {
			return v1.Descriptor{}, fmt.Errorf("%s:%s: %w", repository, tag, errdefs.ErrNotFound)
		}
		return v1.Descriptor{}, mapRemoteErr(err)
	}
	return desc, nil
}

// Digest resolves a repository tag to its manifest digest.
func (b *Browser) Digest(ctx context.Context, reg *store.Registry, repository, tag string) (digest.Digest, error) {
	desc, err := b.Descriptor(ctx, reg, repository, tag)
	if err != nil {
		return "", err
	}
	return desc.Digest, nil
}
