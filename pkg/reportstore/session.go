package reportstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

// Session tracks the authenticated identity for one client against the auth
// service and raises login transitions to registered handlers. It implements
// both Identity and IdentityEvents, so a Store bound to it refreshes itself
// when the user logs in.
type Session struct {
	authBase string
	http     *http.Client

	mu      sync.RWMutex
	user    *User
	token   string
	onLogin []func(ctx context.Context, u User)
}

var (
	_ Identity       = (*Session)(nil)
	_ IdentityEvents = (*Session)(nil)
)

func NewSession(authBase string) *Session {
	return &Session{
		authBase: strings.TrimRight(authBase, "/"),
		http:     &http.Client{},
	}
}

// Current returns the authenticated identity, or false when nobody is logged
// in.
func (s *Session) Current() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Token returns the current bearer token, or "" when logged out. Hand this to
// NewClient so API calls carry the identity.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// OnLogin registers a handler fired after the identity becomes present.
func (s *Session) OnLogin(fn func(ctx context.Context, u User)) {
	s.mu.Lock()
	s.onLogin = append(s.onLogin, fn)
	s.mu.Unlock()
}

// Login authenticates against the auth service, stores the identity and
// token, and fires the OnLogin handlers.
func (s *Session) Login(ctx context.Context, email, password string) error {
	payload, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authBase+"/api/auth/login", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	var data struct {
		ID    string `json:"id"`
		Token string `json:"token"`
		Email string `json:"email"`
	}
	if err := decodeEnvelope(resp, &data); err != nil {
		return err
	}

	user := User{ID: data.ID, Email: data.Email}

	s.mu.Lock()
	s.user = &user
	s.token = data.Token
	handlers := make([]func(ctx context.Context, u User), len(s.onLogin))
	copy(handlers, s.onLogin)
	s.mu.Unlock()

	for _, fn := range handlers {
		fn(ctx, user)
	}
	return nil
}

// Logout drops the identity. No transition handlers fire; the cache keeps its
// last contents until the next refresh.
func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
}
