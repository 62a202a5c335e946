package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pulp/repo-api-contract-tests/apiclient"
	"github.com/pulp/repo-api-contract-tests/crudtests"
	"github.com/pulp/repo-api-contract-tests/framework"
	"github.com/pulp/repo-api-contract-tests/servicedef"
)

const statusQueryTimeout = time.Second * 10

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	harness, err := framework.NewTestHarness(
		params.serviceURL,
		servicedef.StatusPath,
		statusQueryTimeout,
		mainDebugLogger,
		os.Stdout,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service error: %s\n", err)
		os.Exit(1)
	}
	harness.PrintServiceDescription(os.Stdout)

	fmt.Println()
	framework.PrintFilterDescription(params.filters)

	fmt.Println("Running test suite")

	client := apiclient.New(harness.BaseURL(), params.requestTimeout, mainDebugLogger)
	testLogger := framework.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := crudtests.RunTestSuite(client, params.remoteURL, params.filters.AsFilter, &testLogger)

	fmt.Println()
	framework.PrintResults(results)
	if !results.OK() {
		fmt.Println()
		fmt.Println("To rerun only the failed tests:")
		fmt.Printf("  %s\n", params.rerunCommand(os.Args[0], results))
		os.Exit(1)
	}
}
