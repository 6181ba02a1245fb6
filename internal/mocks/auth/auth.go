package auth

// Package auth contains simple hand-written test doubles for the auth and activity ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/target/residence-console/internal/domain/auth"
	"github.com/target/residence-console/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider            = (*MockAuthProvider)(nil)
	_ ports.CredentialAuthenticator = (*MockAuthenticator)(nil)
	_ ports.SessionStore            = (*MemorySessionStore)(nil)
	_ ports.RoleMapper              = (*StaticRoleMapper)(nil)
	_ ports.ActivityRecorder        = (*MemoryActivityRecorder)(nil)
)

// MockAuthProvider simulates an IdP for tests with deterministic state/nonce handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL     string
	DefaultUser domainauth.Identity

	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://mock-idp/auth",
		DefaultUser: domainauth.Identity{
			UserID:    "mock-user-1",
			FirstName: "Mock",
			LastName:  "User",
			Email:     "mock.user@example.com",
			Groups:    []string{"console-managers"},
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}
	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	return authURL, fmt.Sprintf("state-%d", m.callCount), fmt.Sprintf("nonce-%d", m.callCount), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	user := m.DefaultUser
	user.ExpiresAt = time.Now().Add(time.Hour)
	return user, nil
}

// MockAuthenticator accepts a fixed table of email -> identity; the password must equal Password.
type MockAuthenticator struct {
	Password   string
	Identities map[string]domainauth.Identity
	Calls      int
}

func (m *MockAuthenticator) Authenticate(_ context.Context, creds ports.Credentials) (domainauth.Identity, error) {
	m.Calls++
	id, ok := m.Identities[creds.Email]
	if !ok || creds.Password != m.Password {
		return domainauth.Identity{}, ports.ErrInvalidCredentials
	}
	return id, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if id == "" || !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ErrNotFound is returned by mocks when an entity is not present.
type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

var ErrNotFound error = notFoundError{}

// StaticRoleMapper maps groups by simple string membership rules.
type StaticRoleMapper struct {
	AdminGroup      string
	ManagerGroup    string
	SubmanagerGroup string
}

func (m StaticRoleMapper) Map(groups []string) domainauth.Role {
	has := func(want string) bool {
		for _, g := range groups {
			if want != "" && g == want {
				return true
			}
		}
		return false
	}
	switch {
	case has(m.AdminGroup):
		return domainauth.RoleAdmin
	case has(m.ManagerGroup):
		return domainauth.RoleManager
	case has(m.SubmanagerGroup):
		return domainauth.RoleSubmanager
	default:
		return domainauth.RoleGuest
	}
}

// MemoryActivityRecorder keeps activity entries in memory, newest first.
type MemoryActivityRecorder struct {
	mu      sync.Mutex
	entries []ports.ActivityEntry
	Err     error
}

func (m *MemoryActivityRecorder) Record(_ context.Context, entry ports.ActivityEntry) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]ports.ActivityEntry{entry}, m.entries...)
	return nil
}

func (m *MemoryActivityRecorder) List(_ context.Context, opts ports.ActivityListOptions) ([]ports.ActivityEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.ActivityEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if opts.Resource == "" || e.Resource == opts.Resource {
			out = append(out, e)
		}
	}
	if opts.Offset > len(out) {
		return nil, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

// Entries returns a snapshot of recorded entries.
func (m *MemoryActivityRecorder) Entries() []ports.ActivityEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.ActivityEntry(nil), m.entries...)
}
