package crudtests

import (
	"github.com/pulp/repo-api-contract-tests/apiclient"
	"github.com/pulp/repo-api-contract-tests/framework"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// RunTestSuite runs the CRUD scenario battery. Group order is the contract: later
// groups read state that earlier groups wrote to the shared fixture.
func RunTestSuite(
	client *apiclient.Client,
	remoteURL string,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	env := &environment{
		client:    client,
		remoteURL: remoteURL,
		fixture:   fixture{repo: ldvalue.Null()},
	}
	results := framework.Run(filter, testLogger, func(c *framework.Context) {
		t := &T{context: c, env: env, client: client}

		t.Run("create", DoCreateTests)
		t.Run("read", DoReadTests)
		t.Run("update", DoUpdateTests)
		t.Run("sync", DoSyncTests)
		t.Run("delete", DoDeleteTests)
	})

	// The remote is not the subject of any assertion after the sync group, so it is
	// cleaned up outside of the test contexts, best-effort.
	if env.fixture.remoteHref != "" {
		_ = client.Delete(env.fixture.remoteHref)
	}

	return results
}
