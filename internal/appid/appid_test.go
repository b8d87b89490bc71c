package appid

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Defaults(t *testing.T) {
	t.Setenv(EnvBinaryName, "")

	identity, err := Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, identity)

	assert.Equal(t, "claimlens", identity.BinaryName)
	assert.Equal(t, "claimlens", identity.ConfigName)
	assert.Equal(t, "CLAIMLENS_", identity.EnvPrefix)
	assert.NotEmpty(t, identity.Vendor)
	assert.NotEmpty(t, identity.Description)
}

func TestGet_BinaryNameOverride(t *testing.T) {
	t.Setenv(EnvBinaryName, "fact-lens")

	identity, err := Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "fact-lens", identity.BinaryName)
	assert.Equal(t, "fact-lens", identity.ConfigName)
	assert.Equal(t, "FACT_LENS_", identity.EnvPrefix)
	assert.Equal(t, "fact_lens", identity.TelemetryNamespace)
	assert.True(t, strings.HasSuffix(identity.EnvPrefix, "_"))
}

func TestGet_ReturnsCopy(t *testing.T) {
	t.Setenv(EnvBinaryName, "")

	first, err := Get(context.Background())
	require.NoError(t, err)
	first.BinaryName = "mutated"

	second, err := Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "claimlens", second.BinaryName)
}
