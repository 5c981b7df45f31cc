package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/HKazz/project-3-back-end/policy"
)

// ProjectDeletePolicy decides what happens to a project's tasks when the project is deleted.
type ProjectDeletePolicy string

const (
	OrphanTasks  ProjectDeletePolicy = "orphan"
	CascadeTasks ProjectDeletePolicy = "cascade"
)

type Config struct {
	ServerPort string

	MongoURI     string
	MongoDBName  string
	StoreTimeout time.Duration

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	ProjectDeletePolicy ProjectDeletePolicy
	TaskDeletePolicy    policy.TaskDeleteMode

	CassandraHosts    string
	CassandraKeyspace string

	LogFile    string
	LogLevel   string
	CORSOrigin string
}

// Load reads the optional .env file (ENV_FILE overrides the name) and then the environment.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading %s: %w", envFile, err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults and validating values.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		ServerPort:        get("SERVER_PORT", "8080"),
		MongoURI:          get("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0"),
		MongoDBName:       get("MONGO_DB_NAME", "project_manager"),
		JWTSecret:         getenv("JWT_SECRET"),
		CassandraHosts:    getenv("CASS_DB"),
		CassandraKeyspace: get("CASS_KEYSPACE", "notifications"),
		LogFile:           getenv("LOG_FILE"),
		LogLevel:          get("LOG_LEVEL", "info"),
		CORSOrigin:        get("CORS_ORIGIN", "*"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(get("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.StoreTimeout, err = time.ParseDuration(get("STORE_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEOUT: %w", err)
	}

	cost, err := strconv.Atoi(get("BCRYPT_COST", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	cfg.BcryptCost = cost

	switch p := ProjectDeletePolicy(get("PROJECT_DELETE_POLICY", string(OrphanTasks))); p {
	case OrphanTasks, CascadeTasks:
		cfg.ProjectDeletePolicy = p
	default:
		return nil, fmt.Errorf("unknown PROJECT_DELETE_POLICY %q", p)
	}

	if cfg.TaskDeletePolicy, err = policy.ParseTaskDeleteMode(getenv("TASK_DELETE_POLICY")); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
