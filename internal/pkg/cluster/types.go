package cluster

import "time"

// Service is a cluster service as rendered by the console.
type Service struct {
	ID        string      `json:"id"`
	Version   uint64      `json:"version"`
	Spec      ServiceSpec `json:"spec"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ServiceSpec is the desired state of a service.
type ServiceSpec struct {
	Name     string            `json:"name"`
	Image    string            `json:"image"`
	Replicas uint64            `json:"replicas"`
	Env      []string          `json:"env,omitempty"`
	Labels   map[string]string `json:"labels,omitempty"`
	Ports    []PortConfig      `json:"ports,omitempty"`
}

// PortConfig is a published service port.
type PortConfig struct {
	Protocol      string `json:"protocol,omitempty"`
	TargetPort    uint32 `json:"targetPort"`
	PublishedPort uint32 `json:"publishedPort"`
}

// Node is a cluster member.
type Node struct {
	ID           string            `json:"id"`
	Version      uint64            `json:"version"`
	Hostname     string            `json:"hostname"`
	Role         string            `json:"role"`
	Availability string            `json:"availability"`
	Labels       map[string]string `json:"labels,omitempty"`
	State        string            `json:"state"`
	Leader       bool              `json:"leader"`
	Address      string            `json:"address"`
}

// NodeSpec carries the mutable node attributes.
type NodeSpec struct {
	Role         string            `json:"role"`
	Availability string            `json:"availability"`
	Labels       map[string]string `json:"labels,omitempty"`
}

// Task is a single scheduled instance of a service.
type Task struct {
	ID           string    `json:"id"`
	ServiceID    string    `json:"serviceId"`
	NodeID       string    `json:"nodeId"`
	State        string    `json:"state"`
	DesiredState string    `json:"desiredState"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Network is a cluster network.
type Network struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Driver  string            `json:"driver"`
	Scope   string            `json:"scope"`
	Labels  map[string]string `json:"labels,omitempty"`
	Created time.Time         `json:"created"`
}

// NetworkSpec is the shape of a network create request.
type NetworkSpec struct {
	Name   string            `json:"name"`
	Driver string            `json:"driver,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// Volume is a named volume.
type Volume struct {
	Name       string            `json:"name"`
	Driver     string            `json:"driver"`
	Mountpoint string            `json:"mountpoint,omitempty"`
	Labels     map[string]string `json:"labels,omitempty"`
}

// VolumeSpec is the shape of a volume create request.
type VolumeSpec struct {
	Name   string            `json:"name"`
	Driver string            `json:"driver,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// Secret is cluster secret metadata. Values are write only.
type Secret struct {
	ID        string    `json:"id"`
	Version   uint64    `json:"version"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SecretSpec carries the secret name and its base64 encoded value.
type SecretSpec struct {
	Name   string            `json:"name"`
	Data   string            `json:"data,omitempty"`
	Labels map[string]string `json:"labels,omitempty"`
}

// Config is cluster config metadata.
type Config struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Data      string    `json:"data,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConfigSpec carries the config name and its base64 encoded value.
type ConfigSpec struct {
	Name   string            `json:"name"`
	Data   string            `json:"data"`
	Labels map[string]string `json:"labels,omitempty"`
}

// Stack is a named group of services deployed together.
type Stack struct {
	Name     string    `json:"name"`
	Services []Service `json:"services"`
}

// StackSpec is the desired state of a stack.
type StackSpec struct {
	Name     string        `json:"name"`
	Services []ServiceSpec `json:"services"`
}

// StackLabel marks a service as belonging to a stack.
const StackLabel = "com.swarmdeck.stack.namespace"
