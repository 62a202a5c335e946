package crudtests

import (
	"github.com/pulp/repo-api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoCreateTests(t *T) {
	t.Run("create repository", func(t *T) {
		body := servicedef.GenRepository()
		repo, err := t.Client().Post(servicedef.RepositoryPath, body)
		require.NoError(t, err)

		for _, field := range []string{"pulp_href", "pulp_created", "versions_href", "latest_version_href"} {
			_, found := repo.TryGetByKey(field)
			assert.True(t, found, "server did not assign field %q", field)
		}
		assert.Equal(t, body.GetByKey("name").StringValue(), repo.GetByKey("name").StringValue())
		assert.Equal(t, body.GetByKey("description").StringValue(), repo.GetByKey("description").StringValue())

		t.SetRepo(repo)
	})

	t.Run("duplicate name is rejected", func(t *T) {
		t.RequireRepository()
		name := t.Repo().GetByKey("name").StringValue()

		_, err := t.Client().Post(servicedef.RepositoryPath,
			servicedef.GenRepository(servicedef.WithName(name)))

		se := requireStatusError(t, err, 400)
		messages := se.Body.GetByKey("name")
		require.True(t, messages.Count() > 0, "error body had no messages for \"name\": %s", se.Body.JSONString())
		assert.Contains(t, messages.GetByIndex(0).StringValue(), "unique")
	})

	t.Run("unknown field is rejected", func(t *T) {
		_, err := t.Client().Post(servicedef.RepositoryPath,
			servicedef.GenRepository(servicedef.WithField("foo", ldvalue.String("bar"))))

		se := requireStatusError(t, err, 400)
		messages := se.Body.GetByKey("foo")
		require.Equal(t, 1, messages.Count(), "error body did not single out \"foo\": %s", se.Body.JSONString())
		assert.Equal(t, "Unexpected field", messages.GetByIndex(0).StringValue())
	})
}
