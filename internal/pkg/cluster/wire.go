package cluster

import "time"

// Wire representations of the engine API payloads, limited to the fields
// the console renders and mutates.

type engineVersion struct {
	Index uint64 `json:"Index"`
}

type engineContainerSpec struct {
	Image string   `json:"Image,omitempty"`
	Env   []string `json:"Env,omitempty"`
}

type engineTaskTemplate struct {
	ContainerSpec engineContainerSpec `json:"ContainerSpec"`
	ForceUpdate   uint64              `json:"ForceUpdate,omitempty"`
}

type engineReplicated struct {
	Replicas uint64 `json:"Replicas"`
}

type engineServiceMode struct {
	Replicated *engineReplicated `json:"Replicated,omitempty"`
}

type enginePortConfig struct {
	Protocol      string `json:"Protocol,omitempty"`
	TargetPort    uint32 `json:"TargetPort,omitempty"`
	PublishedPort uint32 `json:"PublishedPort,omitempty"`
}

type engineEndpointSpec struct {
	Ports []enginePortConfig `json:"Ports,omitempty"`
}

type engineServiceSpec struct {
	Name         string              `json:"Name"`
	Labels       map[string]string   `json:"Labels,omitempty"`
	TaskTemplate engineTaskTemplate  `json:"TaskTemplate"`
	Mode         engineServiceMode   `json:"Mode"`
	EndpointSpec *engineEndpointSpec `json:"EndpointSpec,omitempty"`
}

type engineService struct {
	ID        string            `json:"ID"`
	Version   engineVersion     `json:"Version"`
	Spec      engineServiceSpec `json:"Spec"`
	CreatedAt time.Time         `json:"CreatedAt"`
	UpdatedAt time.Time         `json:"UpdatedAt"`
}

func (w engineService) toService() Service {
	spec := ServiceSpec{
		Name:   w.Spec.Name,
		Image:  w.Spec.TaskTemplate.ContainerSpec.Image,
		Env:    w.Spec.TaskTemplate.ContainerSpec.Env,
		Labels: w.Spec.Labels,
	}
	if w.Spec.Mode.Replicated != nil {
		spec.Replicas = w.Spec.Mode.Replicated.Replicas
	}
	if w.Spec.EndpointSpec != nil {
		for _, p := range w.Spec.EndpointSpec.Ports {
			spec.Ports = append(spec.Ports, PortConfig{
				Protocol:      p.Protocol,
				TargetPort:    p.TargetPort,
				PublishedPort: p.PublishedPort,
			})
		}
	}
	return Service{
		ID:        w.ID,
		Version:   w.Version.Index,
		Spec:      spec,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func wireServiceSpec(spec ServiceSpec) engineServiceSpec {
	wire := engineServiceSpec{
		Name:   spec.Name,
		Labels: spec.Labels,
		TaskTemplate: engineTaskTemplate{
			ContainerSpec: engineContainerSpec{
				Image: spec.Image,
				Env:   spec.Env,
			},
		},
		Mode: engineServiceMode{
			Replicated: &engineReplicated{Replicas: spec.Replicas},
		},
	}
	if len(spec.Ports) > 0 {
		ports := make([]enginePortConfig, 0, len(spec.Ports))
		for _, p := range spec.Ports {
			ports = append(ports, enginePortConfig{
				Protocol:      p.Protocol,
				TargetPort:    p.TargetPort,
				PublishedPort: p.PublishedPort,
			})
		}
		wire.EndpointSpec = &engineEndpointSpec{Ports: ports}
	}
	return wire
}

type engineNodeSpec struct {
	Role         string            `json:"Role,omitempty"`
	Availability string            `json:"Availability,omitempty"`
	Labels       map[string]string `json:"Labels,omitempty"`
}

type engineNode struct {
	ID          string         `json:"ID"`
	Version     engineVersion  `json:"Version"`
	Spec        engineNodeSpec `json:"Spec"`
	Description struct {
		Hostname string `json:"Hostname"`
	} `json:"Description"`
	Status struct {
		State string `json:"State"`
		Addr  string `json:"Addr"`
	} `json:"Status"`
	ManagerStatus *struct {
		Leader bool `json:"Leader"`
	} `json:"ManagerStatus,omitempty"`
}

func (w engineNode) toNode() Node {
	n := Node{
		ID:           w.ID,
		Version:      w.Version.Index,
		Hostname:     w.Description.Hostname,
		Role:         w.Spec.Role,
		Availability: w.Spec.Availability,
		Labels:       w.Spec.Labels,
		State:        w.Status.State,
		Address:      w.Status.Addr,
	}
	if w.ManagerStatus != nil {
		n.Leader = w.ManagerStatus.Leader
	}
	return n
}

func wireNodeSpec(spec NodeSpec) engineNodeSpec {
	return engineNodeSpec{
		Role:         spec.Role,
		Availability: spec.Availability,
		Labels:       spec.Labels,
	}
}

type engineTask struct {
	ID           string    `json:"ID"`
	ServiceID    string    `json:"ServiceID"`
	NodeID       string    `json:"NodeID"`
	DesiredState string    `json:"DesiredState"`
	CreatedAt    time.Time `json:"CreatedAt"`
	Status       struct {
		State string `json:"State"`
		Err   string `json:"Err"`
	} `json:"Status"`
}

func (w engineTask) toTask() Task {
	return Task{
		ID:           w.ID,
		ServiceID:    w.ServiceID,
		NodeID:       w.NodeID,
		State:        w.Status.State,
		DesiredState: w.DesiredState,
		Error:        w.Status.Err,
		CreatedAt:    w.CreatedAt,
	}
}

type engineNetwork struct {
	ID      string            `json:"Id"`
	Name    string            `json:"Name"`
	Driver  string            `json:"Driver"`
	Scope   string            `json:"Scope"`
	Labels  map[string]string `json:"Labels,omitempty"`
	Created time.Time         `json:"Created"`
}

func (w engineNetwork) toNetwork() Network {
	return Network(w)
}

type engineVolume struct {
	Name       string            `json:"Name"`
	Driver     string            `json:"Driver"`
	Mountpoint string            `json:"Mountpoint"`
	Labels     map[string]string `json:"Labels,omitempty"`
}

func (w engineVolume) toVolume() Volume {
	return Volume(w)
}

type engineSecret struct {
	ID      string        `json:"ID"`
	Version engineVersion `json:"Version"`
	Spec    struct {
		Name string `json:"Name"`
	} `json:"Spec"`
	CreatedAt time.Time `json:"CreatedAt"`
	UpdatedAt time.Time `json:"UpdatedAt"`
}

func (w engineSecret) toSecret() Secret {
	return Secret{
		ID:        w.ID,
		Version:   w.Version.Index,
		Name:      w.Spec.Name,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

type engineConfig struct {
	ID   string `json:"ID"`
	Spec struct {
		Name string `json:"Name"`
		Data string `json:"Data"`
	} `json:"Spec"`
	CreatedAt time.Time `json:"CreatedAt"`
}

func (w engineConfig) toConfig() Config {
	return Config{
		ID:        w.ID,
		Name:      w.Spec.Name,
		Data:      w.Spec.Data,
		CreatedAt: w.CreatedAt,
	}
}
