package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nimbusvault/nimbusvault/internal/model"
	"github.com/nimbusvault/nimbusvault/internal/repository"
	"github.com/nimbusvault/nimbusvault/internal/service"
	"github.com/nimbusvault/nimbusvault/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

// fakeUserRepo is an in-memory UserRepository with the same uniqueness
// semantics as the database-backed one.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return repository.ErrDuplicateUsername
	}
	u := *user
	r.users[user.Username] = &u
	return nil
}

func (r *fakeUserRepo) ByUsername(username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func newAuthService() *service.AuthService {
	return service.NewAuthService(newFakeUserRepo(), testSecret, time.Hour, false)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService()

	require.NoError(t, svc.Register("alice", "hunter22"))

	token, err := svc.Login("alice", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestRegisterStoresHashNotPlaintext(t *testing.T) {
	repo := newFakeUserRepo()
	svc := service.NewAuthService(repo, testSecret, time.Hour, false)

	require.NoError(t, svc.Register("alice", "hunter22"))

	user, err := repo.ByUsername("alice")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.NotContains(t, user.PasswordHash, "hunter22")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newAuthService()

	require.NoError(t, svc.Register("alice", "hunter22"))
	assert.ErrorIs(t, svc.Register("alice", "different"), service.ErrUsernameTaken)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc := newAuthService()

	assert.ErrorIs(t, svc.Register("", "hunter22"), validation.ErrUsernameRequired)
	assert.ErrorIs(t, svc.Register("alice/../bob", "hunter22"), validation.ErrUsernameInvalid)
	assert.ErrorIs(t, svc.Register("alice", ""), validation.ErrPasswordRequired)
}

func TestLoginEnumerationResistance(t *testing.T) {
	svc := newAuthService()
	require.NoError(t, svc.Register("alice", "hunter22"))

	_, wrongPassword := svc.Login("alice", "wrong")
	_, unknownUser := svc.Login("nobody", "hunter22")

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.ErrorIs(t, wrongPassword, service.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, service.ErrInvalidCredentials)
	// Identical error shape: a caller cannot tell which check failed
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestTokenCarriesExpiry(t *testing.T) {
	svc := newAuthService()

	tokenString, err := svc.IssueToken("alice")
	require.NoError(t, err)

	claims := parseClaims(t, tokenString)
	assert.Equal(t, "alice", claims["sub"])
	assert.Contains(t, claims, "exp")
	assert.Contains(t, claims, "iat")
}

func TestNeverExpireOmitsExpClaim(t *testing.T) {
	svc := service.NewAuthService(newFakeUserRepo(), testSecret, time.Hour, true)

	tokenString, err := svc.IssueToken("alice")
	require.NoError(t, err)

	claims := parseClaims(t, tokenString)
	assert.Equal(t, "alice", claims["sub"])
	assert.NotContains(t, claims, "exp")

	username, err := svc.VerifyToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := service.NewAuthService(newFakeUserRepo(), testSecret, -time.Hour, false)

	tokenString, err := svc.IssueToken("alice")
	require.NoError(t, err)

	_, err = svc.VerifyToken(tokenString)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestVerifyRejectsGarbageAndWrongSecret(t *testing.T) {
	svc := newAuthService()

	_, err := svc.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	other := service.NewAuthService(newFakeUserRepo(), "other-secret", time.Hour, false)
	tokenString, err := other.IssueToken("alice")
	require.NoError(t, err)

	_, err = svc.VerifyToken(tokenString)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func parseClaims(t *testing.T, tokenString string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}
