package apiclient

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func jsonHandler(status int, body string) http.Handler {
	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	return httphelpers.HandlerWithResponse(status, headers, []byte(body))
}

func TestGetSendsQueryParams(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(jsonHandler(200, `{"name": "x"}`))
	server := httptest.NewServer(handler)
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	result, err := client.Get("/pulp/api/v3/repositories/file/file/", url.Values{"name": {"my-repo"}})
	require.NoError(t, err)
	assert.Equal(t, "x", result.GetByKey("name").StringValue())

	request := <-requestsCh
	assert.Equal(t, "GET", request.Request.Method)
	assert.Equal(t, "/pulp/api/v3/repositories/file/file/", request.Request.URL.Path)
	assert.Equal(t, "my-repo", request.Request.URL.Query().Get("name"))
}

func TestPostSendsJSONBody(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(jsonHandler(201, `{"pulp_href": "/x/"}`))
	server := httptest.NewServer(handler)
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	body := ldvalue.ObjectBuild().Set("name", ldvalue.String("my-repo")).Build()
	result, err := client.Post("/collection/", body)
	require.NoError(t, err)
	assert.Equal(t, "/x/", result.GetByKey("pulp_href").StringValue())

	request := <-requestsCh
	assert.Equal(t, "POST", request.Request.Method)
	assert.Equal(t, "application/json", request.Request.Header.Get("Content-Type"))
	assert.True(t, body.Equal(ldvalue.Parse(request.Body)), "request body was %s", string(request.Body))
}

func TestPostWithNullBodySendsNoBody(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(jsonHandler(200, `{}`))
	server := httptest.NewServer(handler)
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	_, err := client.Post("/action/", ldvalue.Null())
	require.NoError(t, err)

	request := <-requestsCh
	assert.Empty(t, request.Body)
	assert.Empty(t, request.Request.Header.Get("Content-Type"))
}

func TestNonSuccessStatusBecomesStatusError(t *testing.T) {
	server := httptest.NewServer(jsonHandler(400, `{"name": ["This field must be unique."]}`))
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	_, err := client.Post("/collection/", ldvalue.ObjectBuild().Build())
	require.Error(t, err)

	assert.True(t, IsStatus(err, 400))
	assert.False(t, IsStatus(err, 404))

	se, ok := err.(*StatusError)
	require.True(t, ok)
	assert.Equal(t, "POST", se.Method)
	assert.Equal(t, "This field must be unique.", se.Body.GetByKey("name").GetByIndex(0).StringValue())
}

func TestDeleteReturnsNoErrorOn204(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(204))
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	require.NoError(t, client.Delete("/resource/"))
}

func TestAcceptedResponseWithTaskIsPolledToCompletion(t *testing.T) {
	var lock sync.Mutex
	polls := 0
	mux := http.NewServeMux()
	mux.Handle("/repo/sync/", jsonHandler(202, `{"task": "/pulp/api/v3/tasks/1/"}`))
	mux.HandleFunc("/pulp/api/v3/tasks/1/", func(w http.ResponseWriter, r *http.Request) {
		lock.Lock()
		polls++
		state := "completed"
		if polls == 1 {
			state = "running"
		}
		lock.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"state": "` + state + `"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New(server.URL, time.Second*5, nil)
	task, err := client.Post("/repo/sync/", ldvalue.Null())
	require.NoError(t, err)
	assert.Equal(t, "completed", task.GetByKey("state").StringValue())

	lock.Lock()
	defer lock.Unlock()
	assert.Equal(t, 2, polls, "expected the client to poll until the task completed")
}

func TestFailedTaskIsReportedAsError(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/repo/sync/", jsonHandler(202, `{"task": "/pulp/api/v3/tasks/2/"}`))
	mux.Handle("/pulp/api/v3/tasks/2/",
		jsonHandler(200, `{"state": "failed", "error": {"description": "no such manifest"}}`))
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	_, err := client.Post("/repo/sync/", ldvalue.Null())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed")
	assert.Contains(t, err.Error(), "no such manifest")
}

func TestAbsoluteURLsAreNotResolvedAgainstBaseURL(t *testing.T) {
	server := httptest.NewServer(jsonHandler(200, `{"ok": true}`))
	defer server.Close()

	client := New("http://unreachable.invalid", time.Second, nil)
	result, err := client.Get(server.URL+"/thing/", nil)
	require.NoError(t, err)
	assert.True(t, result.GetByKey("ok").BoolValue())
}
