package config

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestLoadDefaults(t *testing.T) {
	is := is.New(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("WORKER_CONCURRENCY", "not-a-number")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("EXECUTOR_TIMEOUT_SECONDS", "5")

	cfg := Load()

	is.Equal(cfg.APIPort, "9090")
	is.Equal(cfg.WorkerConcurrency, 2)
	is.True(cfg.DBAutoMigrate)
	is.Equal(cfg.ExecutorTimeout, 5*time.Second)
	is.True(AppConfig == cfg)
}

func TestLoadConnString(t *testing.T) {
	is := is.New(t)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "judge")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "lc")
	t.Setenv("DB_SSLMODE", "require")

	cfg := Load()
	is.Equal(cfg.DBConnStr, "host=db port=6543 user=judge password=pw dbname=lc sslmode=require")
}

func TestGetEnvAsList(t *testing.T) {
	tests := []struct {
		name string
		val  string
		want []string
	}{
		{name: "unset", val: "", want: []string{"*"}},
		{name: "trims entries", val: " https://a.dev , https://b.dev", want: []string{"https://a.dev", "https://b.dev"}},
		{name: "only separators", val: " , ,", want: []string{"*"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			t.Setenv("CORS_ALLOWED_ORIGINS", tt.val)
			is.Equal(getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}), tt.want)
		})
	}
}
