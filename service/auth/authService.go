package authsvc

import (
	"crypto/subtle"
	"errors"

	jwtutil "pkgrental/util/jwt"
)

var ErrInvalidCreds = errors.New("invalid credentials")

// Credentials are the two operator accounts from config: admin (full
// management) and staff (scanning and package actions).
type Credentials struct {
	AdminUser string
	AdminPass string
	StaffUser string
	StaffPass string
}

type Service interface {
	Login(username, password string) (token string, role string, err error)
}

type service struct {
	creds  Credentials
	secret string
}

func New(creds Credentials, secret string) Service {
	return &service{creds: creds, secret: secret}
}

func (s *service) Login(username, password string) (string, string, error) {
	var role string
	switch {
	case match(username, password, s.creds.AdminUser, s.creds.AdminPass):
		role = "admin"
	case match(username, password, s.creds.StaffUser, s.creds.StaffPass):
		role = "staff"
	default:
		return "", "", ErrInvalidCreds
	}

	token, err := jwtutil.Issue(s.secret, username, role, 12)
	if err != nil {
		return "", "", err
	}
	return token, role, nil
}

func match(user, pass, wantUser, wantPass string) bool {
	if wantUser == "" || wantPass == "" {
		return false
	}
	u := subtle.ConstantTimeCompare([]byte(user), []byte(wantUser))
	p := subtle.ConstantTimeCompare([]byte(pass), []byte(wantPass))
	return u == 1 && p == 1
}
