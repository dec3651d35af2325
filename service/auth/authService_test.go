package authsvc

import (
	"testing"

	jwtutil "pkgrental/util/jwt"

	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{
	AdminUser: "admin",
	AdminPass: "admin-pass",
	StaffUser: "staff",
	StaffPass: "staff-pass",
}

func TestLogin_Admin(t *testing.T) {
	s := New(testCreds, "test-secret")

	token, role, err := s.Login("admin", "admin-pass")
	require.NoError(t, err)
	require.Equal(t, "admin", role)

	claims, err := jwtutil.ParseAuth("Bearer "+token, "test-secret")
	require.NoError(t, err)
	require.Equal(t, "admin", claims["sub"])
	require.Equal(t, "admin", claims["role"])
}

func TestLogin_Staff(t *testing.T) {
	s := New(testCreds, "test-secret")

	_, role, err := s.Login("staff", "staff-pass")
	require.NoError(t, err)
	require.Equal(t, "staff", role)
}

func TestLogin_Rejections(t *testing.T) {
	s := New(testCreds, "test-secret")

	for _, tc := range [][2]string{
		{"admin", "wrong"},
		{"nobody", "admin-pass"},
		{"", ""},
		{"staff", "admin-pass"},
	} {
		_, _, err := s.Login(tc[0], tc[1])
		require.ErrorIs(t, err, ErrInvalidCreds, "login %q/%q", tc[0], tc[1])
	}
}

// An unset staff account must never match an empty submitted password.
func TestLogin_UnconfiguredAccount(t *testing.T) {
	s := New(Credentials{AdminUser: "admin", AdminPass: "admin-pass"}, "test-secret")

	_, _, err := s.Login("", "")
	require.ErrorIs(t, err, ErrInvalidCreds)
}
