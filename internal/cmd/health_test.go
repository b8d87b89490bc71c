package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeHealth(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Path == "/health/startup" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer ts.Close()

	status, err := probeHealth(context.Background(), ts.Client(), ts.URL+"/", "ready", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "healthy", status)
	assert.Equal(t, "/health/ready", gotPath)

	_, err = probeHealth(context.Background(), ts.Client(), ts.URL, "all", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "/health", gotPath)

	_, err = probeHealth(context.Background(), ts.Client(), ts.URL, "startup", time.Second)
	assert.Error(t, err)

	_, err = probeHealth(context.Background(), ts.Client(), ts.URL, "bogus", time.Second)
	assert.Error(t, err)
}
