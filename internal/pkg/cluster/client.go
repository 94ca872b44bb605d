package cluster

import "context"

// Client is the facade over the cluster control plane. Lookups wrap
// errdefs.ErrNotFound when the resource does not exist; other remote
// failures surface as errdefs.RemoteError carrying the engine's message.
type Client interface {
	Services(ctx context.Context) ([]Service, error)
	Service(ctx context.Context, id string) (*Service, error)
	CreateService(ctx context.Context, spec ServiceSpec) (string, error)
	UpdateService(ctx context.Context, id string, version uint64, spec ServiceSpec) error
	RedeployService(ctx context.Context, id string) error
	RollbackService(ctx context.Context, id string) error
	DeleteService(ctx context.Context, id string) error

	Nodes(ctx context.Context) ([]Node, error)
	Node(ctx context.Context, id string) (*Node, error)
	UpdateNode(ctx context.Context, id string, version uint64, spec NodeSpec) error

	Tasks(ctx context.Context) ([]Task, error)
	Task(ctx context.Context, id string) (*Task, error)

	Networks(ctx context.Context) ([]Network, error)
	Network(ctx context.Context, id string) (*Network, error)
	CreateNetwork(ctx context.Context, spec NetworkSpec) (string, error)
	DeleteNetwork(ctx context.Context, id string) error

	Volumes(ctx context.Context) ([]Volume, error)
	Volume(ctx context.Context, name string) (*Volume, error)
	CreateVolume(ctx context.Context, spec VolumeSpec) (string, error)
	DeleteVolume(ctx context.Context, name string) error

	Secrets(ctx context.Context) ([]Secret, error)
	Secret(ctx context.Context, id string) (*Secret, error)
	CreateSecret(ctx context.Context, spec SecretSpec) (string, error)
	UpdateSecret(ctx context.Context, id string, version uint64, spec SecretSpec) error
	DeleteSecret(ctx context.Context, id string) error

	Configs(ctx context.Context) ([]Config, error)
	Config(ctx context.Context, id string) (*Config, error)
	CreateConfig(ctx context.Context, spec ConfigSpec) (string, error)
	DeleteConfig(ctx context.Context, id string) error

	Stacks(ctx context.Context) ([]Stack, error)
	Stack(ctx context.Context, name string) (*Stack, error)
	CreateStack(ctx context.Context, spec StackSpec) error
	UpdateStack(ctx context.Context, spec StackSpec) error
	DeleteStack(ctx context.Context, name string) error
}
