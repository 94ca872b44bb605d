package store

import (
	"time"
)

// User is a console account. Password holds the bcrypt hash, never the
// plain text.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password,omitempty"`
	Role      string    `json:"role"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Registry is a typed connection record for an external image registry.
// A registry belongs to exactly one user, the creating identity.
//
// The credential fields are provider dependent: dockerhub and v2 use
// Username/Password, ecr uses AccessKeyID plus Password as the secret key,
// acr uses Username/Password as the service principal id and secret, gitlab
// uses Username plus Password as the personal access token.
type Registry struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Username    string    `json:"username,omitempty"`
	Password    string    `json:"password,omitempty"`
	Public      bool      `json:"public"`
	Owner       string    `json:"owner"`
	Region      string    `json:"region,omitempty"`
	AccessKeyID string    `json:"accessKeyId,omitempty"`
	ServiceName string    `json:"serviceName,omitempty"`
	Namespaces  []string  `json:"namespaces,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// AccountKey is the per-kind uniqueness key of the linked remote
	// account. An empty key disables the duplicate check on create.
	AccountKey string `json:"accountKey,omitempty"`
}

// Session is an issued login token.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store persists console owned records. Lookups return a nil record and a
// nil error when the record is absent; creates return a nil record and a
// nil error when the uniqueness constraint is violated.
type Store interface {
	CreateUser(u *User) (*User, error)
	User(id string) (*User, error)
	UserByUsername(username string) (*User, error)
	Users() ([]User, error)
	UpdateUser(u *User) error
	DeleteUser(id string) error

	CreateRegistry(r *Registry) (*Registry, error)
	Registry(id string) (*Registry, error)
	Registries() ([]Registry, error)
	RegistriesByOwner(owner string) ([]Registry, error)
	UpdateRegistry(r *Registry) error
	DeleteRegistry(id string) error

	CreateSession(s *Session) error
	Session(token string) (*Session, error)
	DeleteSession(token string) error

	Close() error
}
