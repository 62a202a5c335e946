package apiclient

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pulp/repo-api-contract-tests/framework"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const taskPollInterval = time.Millisecond * 500

// Client is a JSON REST client for the repository-management service. Response and
// request bodies are handled as ldvalue.Value rather than typed structs, because the
// tests need to inspect and compare arbitrary key sets.
//
// Requests that the service answers with 202 and a task reference are followed up by
// polling the task resource until it reaches a terminal state, so callers can treat
// asynchronous operations as synchronous.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	taskTimeout time.Duration
	logger      framework.Logger
}

// New creates a Client for a service at the given base URL ("http://host:port"). The
// timeout bounds each individual HTTP request and also the total wait for any
// asynchronous task to finish.
func New(baseURL string, timeout time.Duration, logger framework.Logger) *Client {
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		taskTimeout: timeout,
		logger:      logger,
	}
}

// WithLogger returns a copy of the client that writes its debug output to the given
// logger. Each test uses this to capture the HTTP exchanges it caused.
func (c *Client) WithLogger(logger framework.Logger) *Client {
	if logger == nil {
		return c
	}
	c1 := *c
	c1.logger = logger
	return &c1
}

// Get requests a resource or collection. Query parameters may be nil.
func (c *Client) Get(path string, params url.Values) (ldvalue.Value, error) {
	return c.do("GET", path, params, ldvalue.Null())
}

// Post creates a resource or invokes an action. Pass ldvalue.Null() for no body.
func (c *Client) Post(path string, body ldvalue.Value) (ldvalue.Value, error) {
	return c.do("POST", path, nil, body)
}

// Put replaces a resource.
func (c *Client) Put(path string, body ldvalue.Value) (ldvalue.Value, error) {
	return c.do("PUT", path, nil, body)
}

// Patch partially updates a resource.
func (c *Client) Patch(path string, body ldvalue.Value) (ldvalue.Value, error) {
	return c.do("PATCH", path, nil, body)
}

// Delete removes a resource.
func (c *Client) Delete(path string) error {
	_, err := c.do("DELETE", path, nil, ldvalue.Null())
	return err
}

func (c *Client) do(method, path string, params url.Values, body ldvalue.Value) (ldvalue.Value, error) {
	requestURL := c.resolve(path)
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	var reader *bytes.Buffer
	var req *http.Request
	var err error
	if body.IsNull() {
		req, err = http.NewRequest(method, requestURL, nil)
		c.logger.Printf("%s %s", method, requestURL)
	} else {
		data := []byte(body.JSONString())
		reader = bytes.NewBuffer(data)
		req, err = http.NewRequest(method, requestURL, reader)
		c.logger.Printf("%s %s: %s", method, requestURL, string(data))
	}
	if err != nil {
		return ldvalue.Null(), err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ldvalue.Null(), err
	}
	respData, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return ldvalue.Null(), err
	}
	c.logger.Printf("got %d: %s", resp.StatusCode, string(respData))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ldvalue.Null(), &StatusError{
			Method:     method,
			URL:        requestURL,
			StatusCode: resp.StatusCode,
			Body:       ldvalue.Parse(respData),
		}
	}

	parsed := ldvalue.Parse(respData)

	// 202 with a task reference means the operation is still running server-side.
	if resp.StatusCode == http.StatusAccepted {
		if taskHref := parsed.GetByKey("task"); !taskHref.IsNull() {
			return c.AwaitTask(taskHref.StringValue())
		}
	}

	return parsed, nil
}

// AwaitTask polls a task resource until it reaches a terminal state. A task that ends
// in any state other than "completed" is reported as an error carrying the task's own
// error description.
func (c *Client) AwaitTask(taskHref string) (ldvalue.Value, error) {
	c.logger.Printf("waiting for task %s", taskHref)
	deadline := time.Now().Add(c.taskTimeout)
	for {
		task, err := c.Get(taskHref, nil)
		if err != nil {
			return ldvalue.Null(), err
		}
		switch state := task.GetByKey("state").StringValue(); state {
		case "completed":
			return task, nil
		case "failed", "canceled":
			return ldvalue.Null(), fmt.Errorf("task %s ended in state %q: %s",
				taskHref, state, task.GetByKey("error").JSONString())
		}
		if !time.Now().Before(deadline) {
			return ldvalue.Null(), fmt.Errorf("timed out waiting for task %s", taskHref)
		}
		time.Sleep(taskPollInterval)
	}
}

// resolve turns an href into an absolute URL. The service returns hrefs as absolute
// paths on its own host.
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http:") || strings.HasPrefix(path, "https:") {
		return path
	}
	return c.baseURL + path
}
