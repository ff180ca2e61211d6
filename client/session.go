// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

// Namespace identifies one of the two independent session scopes. Citizen
// and admin sessions live side by side in the same Store and never touch
// each other's keys.
type Namespace struct {
	name       string
	tokensKey  string
	profileKey string
}

var (
	// CitizenNamespace holds the resident-facing session.
	CitizenNamespace = Namespace{name: "citizen", tokensKey: "authTokens", profileKey: "currentUser"}
	// AdminNamespace holds the leader/admin session.
	AdminNamespace = Namespace{name: "admin", tokensKey: "adminAuthTokens", profileKey: "adminCurrentLeader"}
)

func (n Namespace) String() string { return n.name }

// TokenPair is the access/refresh pair persisted for a session.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Store persists session state per namespace. Tokens and Profile return
// nil (with a nil error) when nothing is stored. Clear removes both the
// token pair and the cached profile and is idempotent: clearing an empty
// namespace succeeds.
type Store interface {
	Tokens(ns Namespace) (*TokenPair, error)
	SetTokens(ns Namespace, pair TokenPair) error
	Profile(ns Namespace) ([]byte, error)
	SetProfile(ns Namespace, profile []byte) error
	Clear(ns Namespace) error
}

const sessionBucket = "sessions"

// BoltStore persists sessions in a bbolt file, suitable for CLI use where
// the session must survive process restarts.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore opens (or creates) the session database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init session store: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) Tokens(ns Namespace) (*TokenPair, error) {
	var raw []byte
	if err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(sessionBucket)).Get([]byte(ns.tokensKey)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	var pair TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return nil, fmt.Errorf("decode stored tokens: %w", err)
	}
	return &pair, nil
}

func (s *BoltStore) SetTokens(ns Namespace, pair TokenPair) error {
	raw, err := json.Marshal(pair)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Put([]byte(ns.tokensKey), raw)
	})
}

func (s *BoltStore) Profile(ns Namespace) ([]byte, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(sessionBucket)).Get([]byte(ns.profileKey)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	return raw, err
}

func (s *BoltStore) SetProfile(ns Namespace, profile []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Put([]byte(ns.profileKey), profile)
	})
}

// Clear removes the namespace's tokens and profile in one transaction.
func (s *BoltStore) Clear(ns Namespace) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(sessionBucket))
		if err := b.Delete([]byte(ns.tokensKey)); err != nil {
			return err
		}
		return b.Delete([]byte(ns.profileKey))
	})
}

// MemoryStore is an in-memory Store for tests and short-lived programs.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Tokens(ns Namespace) (*TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.data[ns.tokensKey]
	if !ok {
		return nil, nil
	}
	var pair TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil {
		return nil, fmt.Errorf("decode stored tokens: %w", err)
	}
	return &pair, nil
}

func (s *MemoryStore) SetTokens(ns Namespace, pair TokenPair) error {
	raw, err := json.Marshal(pair)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ns.tokensKey] = raw
	return nil
}

func (s *MemoryStore) Profile(ns Namespace) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[ns.profileKey]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStore) SetProfile(ns Namespace, profile []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ns.profileKey] = append([]byte(nil), profile...)
	return nil
}

func (s *MemoryStore) Clear(ns Namespace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, ns.tokensKey)
	delete(s.data, ns.profileKey)
	return nil
}
