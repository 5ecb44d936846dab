package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/auth"
	"github.com/jhoicas/tienda-api/internal/application/dto"
	"github.com/jhoicas/tienda-api/internal/domain"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-api/pkg/jwt"
)

func buildAuthUC() *auth.AuthUseCase {
	return auth.NewAuthUseCase(memory.NewUserRepository(), auth.JWTConfig{
		Secret:     "secret-de-tests",
		ExpMinutes: 60,
		Issuer:     "tienda-api-test",
	})
}

func TestRegisterUser_CreaConRolePorDefecto(t *testing.T) {
	uc := buildAuthUC()

	u, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{
		Email:    "ana@example.com",
		Password: "secreta123",
		Name:     "Ana",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, entity.RoleCustomer, u.Role, "sin role explícito se asigna customer")
	assert.Equal(t, "active", u.Status)
}

func TestRegisterUser_EmailDuplicado(t *testing.T) {
	uc := buildAuthUC()
	ctx := context.Background()

	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "secreta123"})
	require.NoError(t, err)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "otra456"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin_EmiteJWTConUserIDYRole(t *testing.T) {
	uc := buildAuthUC()
	ctx := context.Background()

	registered, err := uc.RegisterUser(ctx, dto.RegisterRequest{
		Email:    "ana@example.com",
		Password: "secreta123",
		Role:     entity.RoleAdmin,
	})
	require.NoError(t, err)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "secreta123"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Token)
	assert.Equal(t, registered.ID, out.User.ID)

	claims, err := jwt.Parse("secret-de-tests", out.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, entity.RoleAdmin, claims.Role, "el role viaja en el token para la política de rutas")
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc := buildAuthUC()
	ctx := context.Background()

	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ana@example.com", Password: "secreta123"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@example.com", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
