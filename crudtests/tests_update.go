package crudtests

import (
	"github.com/pulp/repo-api-contract-tests/servicedef"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func DoUpdateTests(t *T) {
	t.Run("full update of name", func(t *T) { fullyUpdateAttr(t, "name") })
	t.Run("full update of description", func(t *T) { fullyUpdateAttr(t, "description") })
	t.Run("partial update of name", func(t *T) { partiallyUpdateAttr(t, "name") })
	t.Run("partial update of description", func(t *T) { partiallyUpdateAttr(t, "description") })
}

// fullyUpdateAttr changes one attribute with replace semantics: GET the current
// representation, mutate the attribute, PUT the whole body back, then verify with
// another GET.
func fullyUpdateAttr(t *T, attr string) {
	t.RequireRepository()

	repo, err := t.Client().Get(t.RepoHref(), nil)
	require.NoError(t, err)

	value := servicedef.RandomValue()
	_, err = t.Client().Put(t.RepoHref(), withField(repo, attr, ldvalue.String(value)))
	require.NoError(t, err)

	verifyAttrChanged(t, attr, value)
}

// partiallyUpdateAttr changes one attribute by sending only that attribute in a PATCH.
func partiallyUpdateAttr(t *T, attr string) {
	t.RequireRepository()

	value := servicedef.RandomValue()
	_, err := t.Client().Patch(t.RepoHref(),
		ldvalue.ObjectBuild().Set(attr, ldvalue.String(value)).Build())
	require.NoError(t, err)

	verifyAttrChanged(t, attr, value)
}

func verifyAttrChanged(t *T, attr, value string) {
	repo, err := t.Client().Get(t.RepoHref(), nil)
	require.NoError(t, err)
	assert.Equal(t, value, repo.GetByKey(attr).StringValue())
	t.SetRepo(repo)
}

// withField rebuilds an object value with one field replaced.
func withField(v ldvalue.Value, key string, value ldvalue.Value) ldvalue.Value {
	b := ldvalue.ObjectBuild()
	for _, k := range v.Keys() {
		if k != key {
			b.Set(k, v.GetByKey(k))
		}
	}
	b.Set(key, value)
	return b.Build()
}
