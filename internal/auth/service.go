// Package auth implements the static admin credential check. There is
// one credential pair, loaded from configuration; privilege granted by
// a successful check is connection-scoped and never persisted.
package auth

import "errors"

var ErrNoCredential = errors.New("admin credential not configured")

// Service verifies login attempts against the configured credential.
type Service struct {
	username     string
	passwordHash string
}

// NewService builds the service from a username and a plaintext
// password, hashing the password up front.
func NewService(username, password string) (*Service, error) {
	if username == "" || password == "" {
		return nil, ErrNoCredential
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &Service{username: username, passwordHash: hash}, nil
}

// NewServiceWithHash builds the service from a pre-hashed password.
func NewServiceWithHash(username, passwordHash string) (*Service, error) {
	if username == "" || passwordHash == "" {
		return nil, ErrNoCredential
	}
	return &Service{username: username, passwordHash: passwordHash}, nil
}

// Verify reports whether the pair matches the configured credential.
func (s *Service) Verify(username, password string) bool {
	if username != s.username {
		// Burn a compare anyway so the two failure modes take
		// comparable time.
		_ = ComparePassword(s.passwordHash, password)
		return false
	}
	return ComparePassword(s.passwordHash, password) == nil
}
