package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort            string
	JWTKey             []byte // Supabase JWT secret; empty disables token verification
	CORSAllowedOrigins []string

	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSslMode     string
	DBConnStr     string
	DBAutoMigrate bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ExecutionQueueName      string
	ExecutionLockPrefix     string
	ExecutionLockTTLSeconds int
	ExecutionJobTTLSeconds  int
	WorkerConcurrency       int

	Judge0APIURL      string
	Judge0APIKey      string
	Judge0APIHost     string
	OneCompilerAPIURL  string
	OneCompilerAPIKey  string
	OneCompilerAPIHost string
	ExecutorTimeout    time.Duration
	DefaultProvider    string

	LogLevel  string
	LogFormat string
	LogFile   string
}

var AppConfig *Config

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:            getEnv("API_PORT", "8080"),
		JWTKey:             []byte(getEnv("SUPABASE_JWT_SECRET", "")),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "postgres"),
		DBSslMode:     getEnv("DB_SSLMODE", "disable"),
		DBAutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		ExecutionQueueName:      getEnv("EXECUTION_QUEUE_NAME", "judge_jobs_queue"),
		ExecutionLockPrefix:     getEnv("EXECUTION_LOCK_PREFIX", "judge_lock"),
		ExecutionLockTTLSeconds: getEnvAsInt("EXECUTION_LOCK_TTL_SECONDS", 300),
		ExecutionJobTTLSeconds:  getEnvAsInt("EXECUTION_JOB_TTL_SECONDS", 3600),
		WorkerConcurrency:       getEnvAsInt("WORKER_CONCURRENCY", 2),

		Judge0APIURL:       getEnv("JUDGE0_API_URL", "https://judge0-ce.p.rapidapi.com"),
		Judge0APIKey:       getEnv("JUDGE0_API_KEY", ""),
		Judge0APIHost:      getEnv("JUDGE0_API_HOST", "judge0-ce.p.rapidapi.com"),
		OneCompilerAPIURL:  getEnv("ONECOMPILER_API_URL", "https://onecompiler-apis.p.rapidapi.com"),
		OneCompilerAPIKey:  getEnv("ONECOMPILER_API_KEY", ""),
		OneCompilerAPIHost: getEnv("ONECOMPILER_API_HOST", "onecompiler-apis.p.rapidapi.com"),
		ExecutorTimeout:    time.Duration(getEnvAsInt("EXECUTOR_TIMEOUT_SECONDS", 30)) * time.Second,
		DefaultProvider:    getEnv("DEFAULT_EXECUTION_PROVIDER", "judge0"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogFile:   getEnv("LOG_FILE", ""),
	}

	AppConfig.DBConnStr = "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=" + AppConfig.DBSslMode

	return AppConfig
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
