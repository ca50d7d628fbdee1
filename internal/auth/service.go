package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ariefcatur/htx-sale/internal/sales"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserFinder interface {
	FindUserByUsername(ctx context.Context, username string) (*sales.User, error)
	FindUserByQRToken(ctx context.Context, token string) (*sales.User, error)
}

// Session is what a successful login hands back to the client.
type Session struct {
	Token    string     `json:"token"`
	Role     sales.Role `json:"role"`
	Username string     `json:"username"`
}

type Service struct {
	users  UserFinder
	issuer *Issuer
}

func NewService(users UserFinder, issuer *Issuer) *Service {
	return &Service{users: users, issuer: issuer}
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}
	u, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		return Session{}, err
	}
	if u == nil || !CheckPassword(u.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(u)
}

func (s *Service) LoginQR(ctx context.Context, qrToken string) (Session, error) {
	qrToken = strings.TrimSpace(qrToken)
	if qrToken == "" {
		return Session{}, ErrInvalidCredentials
	}
	u, err := s.users.FindUserByQRToken(ctx, qrToken)
	if err != nil {
		return Session{}, err
	}
	if u == nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(u)
}

func (s *Service) session(u *sales.User) (Session, error) {
	tok, err := s.issuer.Issue(u.Username, u.Role)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: tok, Role: u.Role, Username: u.Username}, nil
}

func (s *Service) Verify(token string) (*Claims, error) {
	return s.issuer.Parse(token)
}
