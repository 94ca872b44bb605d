package cluster

import (
	"context"
	"fmt"
	"sort"

	"github.com/swarmdeck/swarmdeck-server/internal/pkg/errdefs"
)

// Stack operations are composed from service operations: a stack is the set
// of services labeled with the stack's namespace.

func (c *EngineClient) Stacks(ctx context.Context) ([]Stack, error) {
	services, err := c.Services(ctx)
	if err != nil {
		return nil, err
	}
	grouped := map[string][]Service{}
	for _, s := range services {
		name, ok := s.Spec.Labels[StackLabel]
		if !ok {
			continue
		}
		grouped[name] = append(grouped[name], s)
	}
	stacks := make([]Stack, 0, len(grouped))
	for name, members := range grouped {
		stacks = append(stacks, Stack{Name: name, Services: members})
	}
	sort.Slice(stacks, func(i, j int) bool { return stacks[i].Name < stacks[j].Name })
	return stacks, nil
}

func (c *EngineClient) Stack(ctx context.Context, name string) (*Stack, error) {
	stacks, err := c.Stacks(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range stacks {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("stack %q: %w", name, errdefs.ErrNotFound)
}

func (c *EngineClient) CreateStack(ctx context.Context, spec StackSpec) error {
	for _, svc := range spec.Services {
		stamped := stampStackService(spec.Name, svc)
		if _, err := c.CreateService(ctx, stamped); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStack reconciles the running stack against the desired spec:
// members present in both are updated in place, new members are created,
// members absent from the spec are removed.
func (c *EngineClient) UpdateStack(ctx context.Context, spec StackSpec) error {
	current, err := c.Stack(ctx, spec.Name)
	if err != nil {
		return err
	}
	running := map[string]Service{}
	for _, s := range current.Services {
		running[s.Spec.Name] = s
	}
	desired := map[string]bool{}
	for _, svc := range spec.Services {
		stamped := stampStackService(spec.Name, svc)
		desired[stamped.Name] = true
		if existing, ok := running[stamped.Name]; ok {
			if err := c.UpdateService(ctx, existing.ID, existing.Version, stamped); err != nil {
				return err
			}
			continue
		}
		if _, err := c.CreateService(ctx, stamped); err != nil {
			return err
		}
	}
	for name, existing := range running {
		if !desired[name] {
			if err := c.DeleteService(ctx, existing.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *EngineClient) DeleteStack(ctx context.Context, name string) error {
	stack, err := c.Stack(ctx, name)
	if err != nil {
		return err
	}
	for _, s := range stack.Services {
		if err := c.DeleteService(ctx, s.ID); err != nil {
			return err
		}
	}
	return nil
}

// stampStackService namespaces the service under the stack: the stack label
// is set and the service name is prefixed with "<stack>_" unless it already
// carries the prefix.
func stampStackService(stack string, svc ServiceSpec) ServiceSpec {
	labels := map[string]string{}
	for k, v := range svc.Labels {
		labels[k] = v
	}
	labels[StackLabel] = stack
	svc.Labels = labels
	prefix := stack + "_"
	if len(svc.Name) < len(prefix) || svc.Name[:len(prefix)] != prefix {
		svc.Name = prefix + svc.Name
	}
	return svc
}
