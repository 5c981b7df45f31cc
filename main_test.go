package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())
	flag := serve.Flags().Lookup("store")
	require.NotNil(t, flag)
	assert.Equal(t, storeMongo, flag.DefValue)

	indexes, _, err := root.Find([]string{"ensure-indexes"})
	require.NoError(t, err)
	assert.Equal(t, "ensure-indexes", indexes.Name())
}

func TestRootCommandFailsWithoutSecret(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("JWT_SECRET", "")

	root := newRootCmd()
	root.SetArgs([]string{"ensure-indexes"})
	root.SilenceErrors = true
	err := root.Execute()
	assert.ErrorContains(t, err, "JWT_SECRET")
}
