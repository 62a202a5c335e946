package crudtests

import (
	"errors"

	"github.com/pulp/repo-api-contract-tests/apiclient"
	"github.com/pulp/repo-api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoSyncTests(t *T) {
	t.Run("sync before a remote is attached fails", func(t *T) {
		t.RequireRepository()

		_, err := t.Client().Post(t.RepoHref()+"sync/", ldvalue.Null())
		require.Error(t, err, "sync succeeded even though no remote is attached")
		var se *apiclient.StatusError
		require.True(t, errors.As(err, &se), "expected an HTTP status error, got: %v", err)
		assert.True(t, se.StatusCode >= 400 && se.StatusCode < 500,
			"expected a 4xx response, got %d", se.StatusCode)
	})

	t.Run("attach remote and sync", func(t *T) {
		t.RequireRepository()

		remote, err := t.Client().Post(servicedef.RemotePath, servicedef.GenRemote(t.RemoteURL()))
		require.NoError(t, err)
		remoteHref := remote.GetByKey("pulp_href").StringValue()
		require.NotEmpty(t, remoteHref, "created remote has no pulp_href")
		t.env.fixture.remoteHref = remoteHref

		_, err = t.Client().Patch(t.RepoHref(),
			ldvalue.ObjectBuild().Set("remote", ldvalue.String(remoteHref)).Build())
		require.NoError(t, err)

		_, err = t.Client().Post(t.RepoHref()+"sync/", ldvalue.Null())
		require.NoError(t, err)

		repo, err := t.Client().Get(t.RepoHref(), nil)
		require.NoError(t, err)
		assert.Equal(t, t.RepoHref()+"versions/1/", repo.GetByKey("latest_version_href").StringValue())
		t.SetRepo(repo)
	})
}
