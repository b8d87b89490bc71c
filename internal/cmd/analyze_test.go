package cmd

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimFromArgsJoinsWords(t *testing.T) {
	claim, err := claimFromArgs([]string{"The", "moon", "is", "cheese"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "The moon is cheese", claim)
}

func TestClaimFromArgsReadsStdin(t *testing.T) {
	claim, err := claimFromArgs([]string{"-"}, strings.NewReader("Water boils at 100C\n"))
	require.NoError(t, err)
	assert.Equal(t, "Water boils at 100C\n", claim)
}

func TestClaimFromArgsDashAmongWords(t *testing.T) {
	claim, err := claimFromArgs([]string{"a", "-", "b"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "a - b", claim)
}

func TestWithOptionalTimeout(t *testing.T) {
	ctx, cancel := withOptionalTimeout(context.Background(), 0)
	defer cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok)

	ctx, cancel = withOptionalTimeout(context.Background(), time.Minute)
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
