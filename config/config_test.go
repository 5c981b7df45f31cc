package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HKazz/project-3-back-end/policy"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{"JWT_SECRET": "s3cret"}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "project_manager", cfg.MongoDBName)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, OrphanTasks, cfg.ProjectDeletePolicy)
	assert.Equal(t, policy.DeleteByManager, cfg.TaskDeletePolicy)
	assert.Equal(t, "", cfg.CassandraHosts)
	assert.Equal(t, "notifications", cfg.CassandraKeyspace)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"JWT_SECRET":            "s3cret",
		"SERVER_PORT":           "9000",
		"TOKEN_TTL":             "30m",
		"BCRYPT_COST":           "10",
		"PROJECT_DELETE_POLICY": "cascade",
		"TASK_DELETE_POLICY":    "manager-or-assignee",
		"CASS_DB":               "cassandra",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, CascadeTasks, cfg.ProjectDeletePolicy)
	assert.Equal(t, policy.DeleteByManagerOrAssignee, cfg.TaskDeletePolicy)
	assert.Equal(t, "cassandra", cfg.CassandraHosts)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":   {},
		"bad ttl":          {"JWT_SECRET": "x", "TOKEN_TTL": "forever"},
		"bad cost":         {"JWT_SECRET": "x", "BCRYPT_COST": "99"},
		"bad delete":       {"JWT_SECRET": "x", "PROJECT_DELETE_POLICY": "shred"},
		"bad task delete":  {"JWT_SECRET": "x", "TASK_DELETE_POLICY": "anyone"},
		"bad storetimeout": {"JWT_SECRET": "x", "STORE_TIMEOUT": "soon"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envOf(env))
			assert.Error(t, err)
		})
	}
}
