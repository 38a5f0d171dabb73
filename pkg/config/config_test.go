package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "dev without secret", cfg: Config{Env: EnvDev}},
		{name: "prod with secret", cfg: Config{Env: EnvProd, Auth: AuthConfig{JWTSecret: "s3cret"}}},
		{name: "prod without secret", cfg: Config{Env: EnvProd}, wantErr: true},
		{name: "prod with blank secret", cfg: Config{Env: EnvProd, Auth: AuthConfig{JWTSecret: "  "}}, wantErr: true},
		{name: "other env without secret", cfg: Config{Env: "staging"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNew_ProdRequiresJWTSecret(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_CONFIG_FILE", "")
	t.Setenv("APP_CONFIG_NAME", "")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("APP_AUTH_JWT_SECRET", "")

	_, err := New()
	require.ErrorContains(t, err, "auth.jwt_secret")

	t.Setenv("APP_AUTH_JWT_SECRET", "s3cret")
	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, EnvProd, cfg.Env)
	require.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	require.Len(t, cfg.Plans, 3)
}

func TestNew_DevDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_CONFIG_FILE", "")
	t.Setenv("APP_CONFIG_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("APP_AUTH_JWT_SECRET", "")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, EnvDev, cfg.Env)
	require.Empty(t, cfg.Auth.JWTSecret)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
