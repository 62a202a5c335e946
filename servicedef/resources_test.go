package servicedef

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func TestGenRepositoryProducesUniqueNames(t *testing.T) {
	first := GenRepository()
	second := GenRepository()

	name := first.GetByKey("name").StringValue()
	assert.True(t, strings.HasPrefix(name, "test-repo-"), "unexpected name %q", name)
	assert.NotEqual(t, name, second.GetByKey("name").StringValue())
	assert.NotEmpty(t, first.GetByKey("description").StringValue())
	assert.ElementsMatch(t, []string{"name", "description"}, first.Keys())
}

func TestGenRepositoryOptions(t *testing.T) {
	pinned := GenRepository(WithName("my-repo"))
	assert.Equal(t, "my-repo", pinned.GetByKey("name").StringValue())

	extra := GenRepository(WithField("foo", ldvalue.String("bar")))
	value, found := extra.TryGetByKey("foo")
	require.True(t, found)
	assert.Equal(t, "bar", value.StringValue())
}

func TestGenRemote(t *testing.T) {
	remote := GenRemote("https://example.org/file/PULP_MANIFEST")
	assert.True(t, strings.HasPrefix(remote.GetByKey("name").StringValue(), "test-remote-"))
	assert.Equal(t, "https://example.org/file/PULP_MANIFEST", remote.GetByKey("url").StringValue())
	assert.Equal(t, "immediate", remote.GetByKey("policy").StringValue())
}

func TestRandomValueIsFreshEachTime(t *testing.T) {
	assert.NotEqual(t, RandomValue(), RandomValue())
}
