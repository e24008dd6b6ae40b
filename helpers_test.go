package veriauth

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/veriauth/veriauth/password"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

type mockUserStore struct {
	mu      sync.Mutex
	byEmail map[string]User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{byEmail: map[string]User{}}
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byEmail[email]; ok {
		return u, nil
	}
	return User{}, ErrUserNotFound
}

func (m *mockUserStore) GetByID(_ context.Context, id string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			u.PasswordHash = ""
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *mockUserStore) Create(_ context.Context, in CreateUser) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[in.Email]; ok {
		return User{}, ErrAccountExists
	}
	u := User{ID: uuid.NewString(), Name: in.Name, Email: in.Email, PasswordHash: in.PasswordHash}
	m.byEmail[in.Email] = u
	return u, nil
}

// put seeds a record directly, bypassing the flow.
func (m *mockUserStore) put(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[u.Email] = u
}

// rename swaps the stored name in place, simulating an out-of-band
// mutation the cache knows nothing about.
func (m *mockUserStore) rename(email, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.byEmail[email]
	u.Name = name
	m.byEmail[email] = u
}

type capturedMail struct {
	To      string
	Subject string
	HTML    string
}

type captureMailer struct {
	mu   sync.Mutex
	sent []capturedMail
	fail error
}

func (m *captureMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, capturedMail{To: to, Subject: subject, HTML: html})
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *captureMailer) last(t *testing.T) capturedMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail captured")
	}
	return m.sent[len(m.sent)-1]
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.AccessSecret = []byte("test-access-secret")
	cfg.JWT.RefreshSecret = []byte("test-refresh-secret")
	cfg.Verification.LinkBase = "http://localhost/verify"
	return cfg
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *miniredis.Miniredis, *mockUserStore, *captureMailer) {
	t.Helper()

	mr, rdb := newTestRedis(t)
	t.Cleanup(mr.Close)

	users := newMockUserStore()
	mailer := &captureMailer{}

	// min bcrypt cost keeps the suite fast
	hasher, err := password.NewBcrypt(4)
	if err != nil {
		t.Fatalf("NewBcrypt: %v", err)
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(users).
		WithMailer(mailer).
		WithHasher(hasher).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	return engine, mr, users, mailer
}

// pendingToken scans the ephemeral store for the single live verification
// token and returns it.
func pendingToken(t *testing.T, mr *miniredis.Miniredis) string {
	t.Helper()
	var tokens []string
	for _, key := range mr.Keys() {
		if strings.HasPrefix(key, "verify:") {
			tokens = append(tokens, strings.TrimPrefix(key, "verify:"))
		}
	}
	if len(tokens) != 1 {
		t.Fatalf("expected exactly one pending registration, found %d", len(tokens))
	}
	return tokens[0]
}

func register(t *testing.T, engine *Engine, name, email, pass, client string) {
	t.Helper()
	if err := engine.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: pass}, client); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
}

func registerAndVerify(t *testing.T, engine *Engine, mr *miniredis.Miniredis, name, email, pass, client string) User {
	t.Helper()
	register(t, engine, name, email, pass, client)
	user, err := engine.VerifyEmail(context.Background(), pendingToken(t, mr))
	if err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}
	return user
}
