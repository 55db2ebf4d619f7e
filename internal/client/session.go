package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/corvid89/taskhub/internal/domain/user"
)

// TokenStore persists the bearer token between runs. The zero value of
// Session (no store) keeps it in memory only.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

type Session struct {
	mu    sync.Mutex
	store TokenStore
	token string
	user  user.User
}

func NewSession(store TokenStore) *Session {
	s := &Session{store: store}

	if store != nil {
		if token, err := store.Load(); err == nil {
			s.token = token
		}
	}

	return s
}

func (s *Session) Establish(token string, u user.User) {
	s.mu.Lock()
	s.token = token
	s.user = u
	s.mu.Unlock()

	if s.store != nil {
		_ = s.store.Save(token)
	}
}

func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *Session) User() (user.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.token != ""
}

func (s *Session) Clear() {
	s.mu.Lock()
	s.token = ""
	s.user = user.User{}
	s.mu.Unlock()

	if s.store != nil {
		_ = s.store.Clear()
	}
}

// FileTokenStore keeps the token in a mode-0600 file, the CLI equivalent of
// the browser's localStorage.
type FileTokenStore struct {
	Path string
}

func DefaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "taskhub", "session.json")
}

type tokenFile struct {
	Token string `json:"token"`
}

func (f FileTokenStore) Load() (string, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}

	var tf tokenFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return "", err
	}

	return tf.Token, nil
}

func (f FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}

	raw, err := json.Marshal(tokenFile{Token: token})
	if err != nil {
		return err
	}

	return os.WriteFile(f.Path, raw, 0o600)
}

func (f FileTokenStore) Clear() error {
	err := os.Remove(f.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
