package crudtests

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pulp/repo-api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoReadTests(t *T) {
	t.Run("read by href", func(t *T) {
		t.RequireRepository()
		repo, err := t.Client().Get(t.RepoHref(), nil)
		require.NoError(t, err)
		requireSameFields(t, t.Repo(), repo)
	})

	t.Run("read with field projection", func(t *T) {
		t.RequireRepository()
		// Every ordered pair, so that the order of names in the selector is shown
		// not to matter.
		for _, first := range servicedef.RepositoryFields {
			for _, second := range servicedef.RepositoryFields {
				if first == second {
					continue
				}
				selector := first + "," + second
				repo, err := t.Client().Get(t.RepoHref(), url.Values{"fields": {selector}})
				require.NoError(t, err, "fields=%s", selector)
				assert.ElementsMatch(t, []string{first, second}, repo.Keys(),
					"wrong key set for fields=%s", selector)
			}
		}
	})

	t.Run("read with field exclusion", func(t *T) {
		t.RequireRepository()
		repo, err := t.Client().Get(t.RepoHref(), url.Values{"exclude_fields": {"created,name"}})
		require.NoError(t, err)
		for _, excluded := range []string{"created", "name"} {
			_, found := repo.TryGetByKey(excluded)
			assert.False(t, found, "excluded field %q was present in the response", excluded)
		}
	})

	t.Run("filter collection by name", func(t *T) {
		t.RequireRepository()
		name := t.Repo().GetByKey("name").StringValue()
		page, err := t.Client().Get(servicedef.RepositoryPath, url.Values{"name": {name}})
		require.NoError(t, err)

		results := page.GetByKey("results")
		require.Equal(t, 1, results.Count(), "expected exactly one match for name=%s", name)
		requireSameFields(t, t.Repo(), results.GetByIndex(0))
	})

	t.Run("list shows a name for every repository", func(t *T) {
		t.RequireRepository()
		page, err := t.Client().Get(servicedef.RepositoryPath, nil)
		require.NoError(t, err)

		results := page.GetByKey("results")
		for i := 0; i < results.Count(); i++ {
			item := results.GetByIndex(i)
			assert.False(t, item.GetByKey("name").IsNull(),
				"repository %s has a null name", item.GetByKey("pulp_href").StringValue())
		}
	})
}

// requireSameFields asserts that actual carries every field of expected with an
// equal value. Extra fields in actual are not an error.
func requireSameFields(t *T, expected, actual ldvalue.Value) {
	var mismatches []string
	for _, key := range expected.Keys() {
		want := expected.GetByKey(key)
		got := actual.GetByKey(key)
		if !want.Equal(got) {
			mismatches = append(mismatches,
				fmt.Sprintf("%s: expected %s, got %s", key, want.JSONString(), got.JSONString()))
		}
	}
	require.Empty(t, mismatches, "representation mismatch:\n%s", strings.Join(mismatches, "\n"))
}
