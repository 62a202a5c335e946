package crudtests

import (
	"github.com/stretchr/testify/require"
)

func DoDeleteTests(t *T) {
	t.Run("delete repository", func(t *T) {
		t.RequireRepository()

		err := t.Client().Delete(t.RepoHref())
		require.NoError(t, err)

		_, err = t.Client().Get(t.RepoHref(), nil)
		requireStatusError(t, err, 404)

		t.ClearRepo()
	})
}
