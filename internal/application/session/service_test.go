package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/application/session"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

func buildService(cfg config.SessionConfig) (*session.Service, *memory.GuestSessionRepo) {
	repo := memory.NewGuestSessionRepository()
	return session.NewService(repo, cfg, logger.Nop()), repo
}

func TestService_Create_TokenAleatorioYTTLFijo(t *testing.T) {
	svc, repo := buildService(config.SessionConfig{TTLHours: 24, TokenBytes: 32})
	ctx := context.Background()

	s1, err := svc.Create(ctx)
	require.NoError(t, err)
	s2, err := svc.Create(ctx)
	require.NoError(t, err)

	// 32 bytes aleatorios codificados en hex = 64 caracteres.
	assert.Len(t, s1.Token, 64)
	assert.NotEqual(t, s1.Token, s2.Token, "dos sesiones nunca comparten token")

	assert.WithinDuration(t, s1.CreatedAt.Add(24*time.Hour), s1.ExpiresAt, time.Second)
	assert.False(t, s1.IsMigrating())

	stored, err := repo.FindByToken(ctx, s1.Token)
	require.NoError(t, err)
	require.NotNil(t, stored, "la sesión debe quedar persistida")
}

func TestService_Defaults_ConConfigInvalida(t *testing.T) {
	svc, _ := buildService(config.SessionConfig{TTLHours: 0, TokenBytes: 4})

	s, err := svc.Create(context.Background())
	require.NoError(t, err)

	// TokenBytes < 16 sube al mínimo seguro de 32 bytes.
	assert.Len(t, s.Token, 64)
	// TTL <= 0 cae al default de 24 horas.
	assert.WithinDuration(t, s.CreatedAt.Add(24*time.Hour), s.ExpiresAt, time.Second)
}

func TestService_Touch_NoExtiendeExpiracion(t *testing.T) {
	svc, repo := buildService(config.SessionConfig{TTLHours: 24, TokenBytes: 32})
	ctx := context.Background()

	s, err := svc.Create(ctx)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.Touch(ctx, s.Token))

	after, err := repo.FindByToken(ctx, s.Token)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.True(t, after.LastSeenAt.After(s.LastSeenAt))
	assert.True(t, after.ExpiresAt.Equal(s.ExpiresAt), "Touch no debe mover ExpiresAt")
}

func TestService_MarkAndClearMigrating(t *testing.T) {
	svc, repo := buildService(config.SessionConfig{TTLHours: 24, TokenBytes: 32})
	ctx := context.Background()

	s, err := svc.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.MarkMigrating(ctx, s.Token))
	marked, err := repo.FindByToken(ctx, s.Token)
	require.NoError(t, err)
	assert.True(t, marked.IsMigrating(), "la marca migrating debe quedar fijada")

	require.NoError(t, svc.ClearMigrating(ctx, s.Token))
	cleared, err := repo.FindByToken(ctx, s.Token)
	require.NoError(t, err)
	assert.False(t, cleared.IsMigrating(), "la marca migrating debe quedar limpia")
}

func TestService_FindByToken_Desconocido(t *testing.T) {
	svc, _ := buildService(config.SessionConfig{TTLHours: 24, TokenBytes: 32})

	s, err := svc.FindByToken(context.Background(), "token-jamas-emitido")
	require.NoError(t, err, "un token desconocido no es un error")
	assert.Nil(t, s)
}

func TestService_IsExpired(t *testing.T) {
	svc, _ := buildService(config.SessionConfig{TTLHours: 24, TokenBytes: 32})

	now := time.Now()
	vigente := &entity.GuestSession{Token: "a", ExpiresAt: now.Add(time.Hour)}
	vencida := &entity.GuestSession{Token: "b", ExpiresAt: now.Add(-time.Hour)}

	assert.False(t, svc.IsExpired(vigente))
	assert.True(t, svc.IsExpired(vencida))
}
