package main

import (
	"testing"

	"github.com/pulp/repo-api-contract-tests/framework"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRequiresServiceURL(t *testing.T) {
	var params commandParams
	assert.False(t, params.Read([]string{"prog"}))

	params = commandParams{}
	require.True(t, params.Read([]string{"prog", "-url", "http://localhost:24817"}))
	assert.Equal(t, "http://localhost:24817", params.serviceURL)
	assert.Equal(t, defaultRequestTimeout, params.requestTimeout)
}

func TestRerunCommandQuotesAndAnchorsFailedTestIDs(t *testing.T) {
	var params commandParams
	require.True(t, params.Read([]string{"prog", "-url", "http://localhost:24817"}))

	results := framework.Results{
		Failures: []framework.TestResult{
			{TestID: framework.TestID{Path: []string{"create", "create repository"}}},
			{TestID: framework.TestID{Path: []string{"delete", "delete repository"}}},
		},
	}
	command := params.rerunCommand("./contract-tests", results)
	assert.Equal(t,
		`./contract-tests -url http://localhost:24817 -run '^create/create repository$|^delete/delete repository$'`,
		command)
}
