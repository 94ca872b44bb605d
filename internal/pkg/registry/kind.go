package registry

import (
	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
)

// Kind is the closed set of supported registry provider tags.
type Kind string

const (
	KindV2        Kind = "v2"
	KindDockerhub Kind = "dockerhub"
	KindECR       Kind = "ecr"
	KindACR       Kind = "acr"
	KindGitlab    Kind = "gitlab"
)

// Kinds returns the closed provider set in display order.
func Kinds() []Kind {
	return []Kind{KindV2, KindDockerhub, KindECR, KindACR, KindGitlab}
}

// ParseKind validates a provider tag from the request path. An unsupported
// tag yields an UnsupportedTypeError and must be rejected before any
// collaborator call is attempted.
func ParseKind(tag string) (Kind, error) {
	switch Kind(tag) {
	case KindV2, KindDockerhub, KindECR, KindACR, KindGitlab:
		return Kind(tag), nil
	default:
		return "", errdefs.UnsupportedType(tag)
	}
}
