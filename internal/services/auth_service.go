package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"libroteca/internal/domain"
	"libroteca/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

// AuthService owns the session-cookie lifecycle and the customer's own
// account data. Bad credentials always collapse to ErrBadCreds so the
// login form cannot be used to probe which emails exist.
type AuthService struct {
	Users *repos.UserRepo
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

// UpdateProfile saves the customer-editable fields. Email and role are
// not customer-editable and stay untouched.
func (s *AuthService) UpdateProfile(userID, name, phone, address string) error {
	if userID == "" {
		return &domain.ValidationError{Reason: "missing customer"}
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return &domain.ValidationError{Reason: "name must be 1 to 100 characters"}
	}
	phone = strings.TrimSpace(phone)
	if len(phone) > 30 {
		return &domain.ValidationError{Reason: "phone is too long"}
	}
	address = strings.TrimSpace(address)
	if len(address) > 200 {
		return &domain.ValidationError{Reason: "address is too long"}
	}
	return s.Users.UpdateProfile(userID, name, phone, address)
}
