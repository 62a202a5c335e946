package mockpulp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pulp/repo-api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doJSON(t *testing.T, server *httptest.Server, method, path string, body interface{}) (int, map[string]interface{}) {
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&parsed)
	return resp.StatusCode, parsed
}

func createRepo(t *testing.T, server *httptest.Server, name string) map[string]interface{} {
	status, repo := doJSON(t, server, "POST", servicedef.RepositoryPath, map[string]string{"name": name})
	require.Equal(t, 201, status)
	return repo
}

func TestRepositoryListEnvelope(t *testing.T) {
	server := httptest.NewServer(New().Handler())
	defer server.Close()

	createRepo(t, server, "alpha")
	createRepo(t, server, "beta")

	status, page := doJSON(t, server, "GET", servicedef.RepositoryPath, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, float64(2), page["count"])
	assert.Nil(t, page["next"])
	assert.Len(t, page["results"], 2)
}

func TestPatchWithBlankNameIsRejected(t *testing.T) {
	server := httptest.NewServer(New().Handler())
	defer server.Close()

	repo := createRepo(t, server, "alpha")
	href := repo["pulp_href"].(string)

	status, body := doJSON(t, server, "PATCH", href, map[string]string{"name": ""})
	assert.Equal(t, 400, status)
	require.Contains(t, body, "name")
}

func TestSyncLifecycle(t *testing.T) {
	server := httptest.NewServer(New().Handler())
	defer server.Close()

	repo := createRepo(t, server, "alpha")
	href := repo["pulp_href"].(string)
	assert.Nil(t, repo["latest_version_href"])

	status, _ := doJSON(t, server, "POST", href+"sync/", nil)
	assert.Equal(t, 400, status, "sync must fail while no remote is attached")

	status, remote := doJSON(t, server, "POST", servicedef.RemotePath,
		map[string]string{"name": "source", "url": "https://example.org/PULP_MANIFEST"})
	require.Equal(t, 201, status)

	status, _ = doJSON(t, server, "PATCH", href, map[string]string{"remote": remote["pulp_href"].(string)})
	require.Equal(t, 200, status)

	status, accepted := doJSON(t, server, "POST", href+"sync/", nil)
	require.Equal(t, 202, status)
	taskHref := accepted["task"].(string)

	status, task := doJSON(t, server, "GET", taskHref, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "completed", task["state"])

	status, repo = doJSON(t, server, "GET", href, nil)
	require.Equal(t, 200, status)
	assert.Equal(t, href+"versions/1/", repo["latest_version_href"])
}

func TestRemoteRequiresURL(t *testing.T) {
	server := httptest.NewServer(New().Handler())
	defer server.Close()

	status, body := doJSON(t, server, "POST", servicedef.RemotePath, map[string]string{"name": "source"})
	assert.Equal(t, 400, status)
	assert.Contains(t, body, "url")
}

func TestUnknownPathIs404(t *testing.T) {
	server := httptest.NewServer(New().Handler())
	defer server.Close()

	status, body := doJSON(t, server, "GET", "/pulp/api/v3/nonsense/", nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, "Not found.", body["detail"])
}
