package servicedef

import (
	"fmt"
	"strings"

	"github.com/Pallinder/go-randomdata"
	uuid "github.com/satori/go.uuid"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	StatusPath     = "/pulp/api/v3/status/"
	RepositoryPath = "/pulp/api/v3/repositories/file/file/"
	RemotePath     = "/pulp/api/v3/remotes/file/file/"
)

// DefaultRemoteURL is the content source used for the Remote created by the sync
// tests, unless overridden on the command line.
const DefaultRemoteURL = "https://fixtures.pulpproject.org/file/PULP_MANIFEST"

// RepositoryFields is the attribute set the field-projection tests draw pairs from.
var RepositoryFields = []string{
	"pulp_href",
	"pulp_created",
	"versions_href",
	"latest_version_href",
	"name",
	"description",
}

// GenOption modifies a generated payload before it is built.
type GenOption func(map[string]ldvalue.Value)

// WithName pins the payload's name instead of generating a random one.
func WithName(name string) GenOption {
	return func(m map[string]ldvalue.Value) {
		m["name"] = ldvalue.String(name)
	}
}

// WithField sets an arbitrary field, which may be one the service does not declare.
func WithField(key string, value ldvalue.Value) GenOption {
	return func(m map[string]ldvalue.Value) {
		m[key] = value
	}
}

// GenRepository returns a repository create/update body with a random unique name.
func GenRepository(opts ...GenOption) ldvalue.Value {
	m := map[string]ldvalue.Value{
		"name":        ldvalue.String(RandomName("test-repo")),
		"description": ldvalue.String(RandomValue()),
	}
	return buildObject(m, opts)
}

// GenRemote returns a remote create body pointing at the given content source URL.
func GenRemote(url string, opts ...GenOption) ldvalue.Value {
	m := map[string]ldvalue.Value{
		"name":   ldvalue.String(RandomName("test-remote")),
		"url":    ldvalue.String(url),
		"policy": ldvalue.String("immediate"),
	}
	return buildObject(m, opts)
}

func buildObject(m map[string]ldvalue.Value, opts []GenOption) ldvalue.Value {
	for _, opt := range opts {
		opt(m)
	}
	b := ldvalue.ObjectBuild()
	for k, v := range m {
		b.Set(k, v)
	}
	return b.Build()
}

// RandomName generates a resource name that is readable in server logs but still
// unique across runs.
func RandomName(prefix string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, strings.ToLower(randomdata.SillyName()), uuid.NewV4().String())
}

// RandomValue generates a fresh opaque string for update tests.
func RandomValue() string {
	return uuid.NewV4().String()
}
