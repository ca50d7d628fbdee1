// Package client is the salesperson/admin front end logic: session handling,
// a typed REST client for the API and one controller per screen. Controllers
// are driven from a single UI goroutine and hold no locks.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ariefcatur/htx-sale/internal/auth"
	"github.com/ariefcatur/htx-sale/internal/sales"
)

// Session is the logged-in identity. The zero value means logged out.
type Session struct {
	Token    string     `json:"token"`
	Username string     `json:"username"`
	Role     sales.Role `json:"role"`
}

func FromAuth(s auth.Session) Session {
	return Session{Token: s.Token, Username: s.Username, Role: s.Role}
}

func (s Session) LoggedIn() bool { return s.Token != "" }
func (s Session) IsAdmin() bool  { return s.Role == sales.RoleAdmin }

// LoadSession reads a saved session. A missing file is a logged-out session.
func LoadSession(path string) (Session, error) {
	var s Session
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return Session{}, fmt.Errorf("session %s: %w", path, err)
	}
	return s, nil
}

func (s Session) Save(path string) error {
	return writeJSONFile(path, s)
}

// Clear removes the saved session; clearing twice is fine.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
