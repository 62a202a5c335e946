package framework

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statusDoc = `{
	"versions": [
		{"component": "pulpcore", "version": "3.0.0"},
		{"component": "pulp_file", "version": "0.1.0"}
	],
	"database_connection": {"connected": true}
}`

func TestHarnessTimesOutWhenServiceIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := NewTestHarness(server.URL, "/pulp/api/v3/status/", time.Millisecond*300, nil, bytes.NewBuffer(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestHarnessParsesStatusDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pulp/api/v3/status/", r.URL.Path)
		_, _ = w.Write([]byte(statusDoc))
	}))
	defer server.Close()

	harness, err := NewTestHarness(server.URL, "/pulp/api/v3/status/", time.Second, nil, bytes.NewBuffer(nil))
	require.NoError(t, err)
	assert.Equal(t, server.URL, harness.BaseURL())

	info := harness.ServiceInfo()
	require.Len(t, info.Versions, 2)
	assert.Equal(t, "pulpcore", info.Versions[0].Component)
	assert.True(t, info.DatabaseConnection.Connected)

	var out bytes.Buffer
	harness.PrintServiceDescription(&out)
	assert.Equal(t, "Service components: pulpcore 3.0.0, pulp_file 0.1.0\n", out.String())
}

func TestHarnessRejectsNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer server.Close()

	_, err := NewTestHarness(server.URL, "/pulp/api/v3/status/", time.Second, nil, bytes.NewBuffer(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}
