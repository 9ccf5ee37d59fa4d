package service_test

import (
	"testing"
	"time"

	"github.com/distrisur/pedidos-go/internal/domain"
	"github.com/distrisur/pedidos-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T, password string) *service.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return service.NewAuthService("admin", string(hash), "test-secret", time.Hour, zap.NewNop())
}

func TestLoginAndValidate(t *testing.T) {
	svc := newAuthService(t, "s3cret")

	token, err := svc.Login("admin", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newAuthService(t, "s3cret")

	_, err := svc.Login("admin", "wrong")
	var unauthorized *domain.ErrUnauthorized
	assert.ErrorAs(t, err, &unauthorized)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newAuthService(t, "s3cret")

	_, err := svc.Login("root", "s3cret")
	var unauthorized *domain.ErrUnauthorized
	assert.ErrorAs(t, err, &unauthorized)
}

func TestLogin_DisabledWithoutHash(t *testing.T) {
	svc := service.NewAuthService("admin", "", "test-secret", time.Hour, zap.NewNop())

	_, err := svc.Login("admin", "anything")
	var unauthorized *domain.ErrUnauthorized
	require.ErrorAs(t, err, &unauthorized)
	assert.Contains(t, err.Error(), "disabled")
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	svc := newAuthService(t, "s3cret")

	_, err := svc.ValidateAccessToken("not-a-jwt")
	assert.Error(t, err)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := service.NewAuthService("admin", string(hash), "test-secret", -time.Minute, zap.NewNop())

	token, err := svc.Login("admin", "s3cret")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	issuer := newAuthService(t, "s3cret")
	token, err := issuer.Login("admin", "s3cret")
	require.NoError(t, err)

	other := service.NewAuthService("admin", "x", "different-secret", time.Hour, zap.NewNop())
	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}
