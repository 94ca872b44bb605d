package registry

import (
	"context"
	"fmt"

	"github.com/swarmdeck/swarmdeck-server/internal/pkg/store"
)

// Provider links and maintains registry accounts of one kind. Create
// validates the payload against the remote registry, persists the record
// and returns it; Update re-validates and persists the delta onto the
// current record.
type Provider interface {
	Create(ctx context.Context, owner string, form Form) (*store.Registry, error)
	Update(ctx context.Context, current *store.Registry, form Form) (*store.Registry, error)
}

// Providers is the fixed table mapping the closed kind set to its
// implementations.
type Providers struct {
	table map[Kind]Provider
}

// NewProviders wires the provider table with its collaborators.
func NewProviders(st store.Store, pinger Pinger, hub HubClient, tokens TokenClient) Providers {
	return Providers{table: map[Kind]Provider{
		KindV2:        &v2Provider{store: st, pinger: pinger},
		KindDockerhub: &dockerhubProvider{store: st, hub: hub},
		KindECR:       &ecrProvider{store: st, tokens: tokens},
		KindACR:       &acrProvider{store: st, pinger: pinger},
		KindGitlab:    &gitlabProvider{store: st, pinger: pinger},
	}}
}

// For returns the provider for a parsed kind. Kinds come out of ParseKind,
// so a table miss is a programming error.
func (p Providers) For(kind Kind) Provider {
	provider, ok := p.table[kind]
	if !ok {
		panic(fmt.Sprintf("no provider wired for registry kind %q", kind))
	}
	return provider
}
