package crudtests

import (
	"errors"

	"github.com/pulp/repo-api-contract-tests/apiclient"
	"github.com/pulp/repo-api-contract-tests/framework"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// environment is the state shared by every scenario in one suite run.
type environment struct {
	client    *apiclient.Client
	remoteURL string
	fixture   fixture
}

// fixture is the suite's last-known view of the resources it has created. repo is
// Null until the create scenario has succeeded; update scenarios overwrite it and
// later scenarios read it.
type fixture struct {
	repo       ldvalue.Value
	remoteHref string
}

// T represents a test or subtest in the CRUD suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment
// that is outside of the Go test runner, with extra features such as per-test debug
// capture. Those features are provided by the lower-level framework package.
//
// To make test assertions, use the assert and require packages, passing the *T as if
// it were a *testing.T.
type T struct {
	context *framework.Context
	env     *environment
	client  *apiclient.Client
}

// Run runs a subtest, giving it a client whose debug output is captured under the
// subtest's own identifier.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		t1 := &T{
			context: c,
			env:     t.env,
			client:  t.env.client.WithLogger(c.DebugLogger()),
		}
		action(t1)
	})
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The
// methods in the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Debug logs debug output for the test, shown by the console logger on failure.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Client returns the API client scoped to this test's debug logger.
func (t *T) Client() *apiclient.Client {
	return t.client
}

// RemoteURL returns the content source URL the sync tests should point their Remote at.
func (t *T) RemoteURL() string {
	return t.env.remoteURL
}

// Repo returns the last-known representation of the repository under test, or Null
// if it has not been created.
func (t *T) Repo() ldvalue.Value {
	return t.env.fixture.repo
}

// SetRepo records a new last-known representation on the shared fixture.
func (t *T) SetRepo(repo ldvalue.Value) {
	t.env.fixture.repo = repo
}

// ClearRepo empties the fixture after the repository has been deleted.
func (t *T) ClearRepo() {
	t.env.fixture.repo = ldvalue.Null()
}

// RepoHref returns the canonical href of the repository under test.
func (t *T) RepoHref() string {
	return t.Repo().GetByKey("pulp_href").StringValue()
}

// RequireRepository skips the current test if no repository was created earlier in
// this run, whether because creation failed or because it was filtered out. Every
// scenario that depends on the shared repository starts with this guard.
func (t *T) RequireRepository() {
	if t.env.fixture.repo.IsNull() {
		t.context.SkipWithReason("no repository was created in this run")
	}
}

// requireStatusError asserts that err is a service response with the given status
// code, and returns it so the caller can inspect the error body.
func requireStatusError(t *T, err error, statusCode int) *apiclient.StatusError {
	require.Error(t, err)
	var se *apiclient.StatusError
	require.True(t, errors.As(err, &se), "expected an HTTP status error, got: %v", err)
	require.Equal(t, statusCode, se.StatusCode, "unexpected status code, body was: %s", se.Body.JSONString())
	return se
}
