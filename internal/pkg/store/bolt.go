package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketUsers            = []byte("users")
	bucketUsernames        = []byte("usernames")
	bucketRegistries       = []byte("registries")
	bucketRegistryAccounts = []byte("registryAccounts")
	bucketSessions         = []byte("sessions")
)

// BoltStore is the bbolt backed Store implementation.
type BoltStore struct {
	db *bolt.DB
}

// Open opens (and if needed initializes) the store at path.
func Open(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %q: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketUsers, bucketUsernames, bucketRegistries, bucketRegistryAccounts, bucketSessions} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func accountIndexKey(kind, owner, accountKey string) []byte {
	return []byte(kind + "/" + owner + "/" + accountKey)
}

func put(b *bolt.Bucket, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), data)
}

func get[T any](b *bolt.Bucket, key string) (*T, error) {
	data := b.Get([]byte(key))
	if data == nil {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func list[T any](b *bolt.Bucket) ([]T, error) {
	var out []T
	err := b.ForEach(func(_, data []byte) error {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

func (s *BoltStore) CreateUser(u *User) (*User, error) {
	var created *User
	err := s.db.Update(func(tx *bolt.Tx) error {
		names := tx.Bucket(bucketUsernames)
		if names.Get([]byte(u.Username)) != nil {
			return nil // duplicate username, created stays nil
		}
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		u.CreatedAt = time.Now().UTC()
		if err := put(tx.Bucket(bucketUsers), u.ID, u); err != nil {
			return err
		}
		if err := names.Put([]byte(u.Username), []byte(u.ID)); err != nil {
			return err
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *BoltStore) User(id string) (*User, error) {
	var u *User
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		u, err = get[User](tx.Bucket(bucketUsers), id)
		return err
	})
	return u, err
}

func (s *BoltStore) UserByUsername(username string) (*User, error) {
	var u *User
	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketUsernames).Get([]byte(username))
		if id == nil {
			return nil
		}
		var err error
		u, err = get[User](tx.Bucket(bucketUsers), string(id))
		return err
	})
	return u, err
}

func (s *BoltStore) Users() ([]User, error) {
	var users []User
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		users, err = list[User](tx.Bucket(bucketUsers))
		return err
	})
	return users, err
}

func (s *BoltStore) UpdateUser(u *User) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		current, err := get[User](tx.Bucket(bucketUsers), u.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("user %q does not exist", u.ID)
		}
		return put(tx.Bucket(bucketUsers), u.ID, u)
	})
}

func (s *BoltStore) DeleteUser(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		u, err := get[User](tx.Bucket(bucketUsers), id)
		if err != nil || u == nil {
			return err
		}
		if err := tx.Bucket(bucketUsernames).Delete([]byte(u.Username)); err != nil {
			return err
		}
		return tx.Bucket(bucketUsers).Delete([]byte(id))
	})
}

func (s *BoltStore) CreateRegistry(r *Registry) (*Registry, error) {
	var created *Registry
	err := s.db.Update(func(tx *bolt.Tx) error {
		accounts := tx.Bucket(bucketRegistryAccounts)
		if r.AccountKey != "" {
			if accounts.Get(accountIndexKey(r.Kind, r.Owner, r.AccountKey)) != nil {
				return nil // account already linked, created stays nil
			}
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		now := time.Now().UTC()
		r.CreatedAt = now
		r.UpdatedAt = now
		if err := put(tx.Bucket(bucketRegistries), r.ID, r); err != nil {
			return err
		}
		if r.AccountKey != "" {
			if err := accounts.Put(accountIndexKey(r.Kind, r.Owner, r.AccountKey), []byte(r.ID)); err != nil {
				return err
			}
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *BoltStore) Registry(id string) (*Registry, error) {
	var r *Registry
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		r, err = get[Registry](tx.Bucket(bucketRegistries), id)
		return err
	})
	return r, err
}

func (s *BoltStore) Registries() ([]Registry, error) {
	var registries []Registry
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		registries, err = list[Registry](tx.Bucket(bucketRegistries))
		return err
	})
	return registries, err
}

func (s *BoltStore) RegistriesByOwner(owner string) ([]Registry, error) {
	all, err := s.Registries()
	if err != nil {
		return nil, err
	}
	owned := make([]Registry, 0, len(all))
	for _, r := range all {
		if r.Owner == owner {
			owned = append(owned, r)
		}
	}
	return owned, nil
}

func (s *BoltStore) UpdateRegistry(r *Registry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		current, err := get[Registry](tx.Bucket(bucketRegistries), r.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("registry %q does not exist", r.ID)
		}
		accounts := tx.Bucket(bucketRegistryAccounts)
		if current.AccountKey != r.AccountKey {
			if current.AccountKey != "" {
				if err := accounts.Delete(accountIndexKey(current.Kind, current.Owner, current.AccountKey)); err != nil {
					return err
				}
			}
			if r.AccountKey != "" {
				if err := accounts.Put(accountIndexKey(r.Kind, r.Owner, r.AccountKey), []byte(r.ID)); err != nil {
					return err
				}
			}
		}
		r.CreatedAt = current.CreatedAt
		r.UpdatedAt = time.Now().UTC()
		return put(tx.Bucket(bucketRegistries), r.ID, r)
	})
}

func (s *BoltStore) DeleteRegistry(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		r, err := get[Registry](tx.Bucket(bucketRegistries), id)
		if err != nil || r == nil {
			return err
		}
		if r.AccountKey != "" {
			if err := tx.Bucket(bucketRegistryAccounts).Delete(accountIndexKey(r.Kind, r.Owner, r.AccountKey)); err != nil {
				return err
			}
		}
		return tx.Bucket(bucketRegistries).Delete([]byte(id))
	})
}

func (s *BoltStore) CreateSession(sess *Session) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return put(tx.Bucket(bucketSessions), sess.Token, sess)
	})
}

func (s *BoltStore) Session(token string) (*Session, error) {
	var sess *Session
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		sess, err = get[Session](tx.Bucket(bucketSessions), token)
		return err
	})
	return sess, err
}

func (s *BoltStore) DeleteSession(token string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSessions).Delete([]byte(token))
	})
}
