package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/pulp/repo-api-contract-tests/framework"
	"github.com/pulp/repo-api-contract-tests/servicedef"

	"github.com/alessio/shellescape"
)

const defaultRequestTimeout = time.Second * 30

type commandParams struct {
	serviceURL     string
	remoteURL      string
	requestTimeout time.Duration
	filters        framework.RegexFilters
	debug          bool
	debugAll       bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.serviceURL, "url", "", "base URL of the repository service under test")
	fs.StringVar(&c.remoteURL, "remote-url", servicedef.DefaultRemoteURL,
		"content source URL for the remote created by the sync tests")
	fs.DurationVar(&c.requestTimeout, "timeout", defaultRequestTimeout,
		"timeout for each request, and for waiting on asynchronous tasks")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if c.serviceURL == "" {
		fmt.Fprintln(os.Stderr, "-url is required")
		fs.Usage()
		return false
	}
	return true
}

// rerunCommand builds a command line that runs only the tests that failed.
func (c *commandParams) rerunCommand(program string, results framework.Results) string {
	var b commandBuilder
	b.add(program, "-url", c.serviceURL)
	if c.remoteURL != servicedef.DefaultRemoteURL {
		b.add("-remote-url", c.remoteURL)
	}
	if c.debug {
		b.add("-debug")
	}
	var patterns []string
	for _, id := range results.FailureIDs() {
		patterns = append(patterns, "^"+regexp.QuoteMeta(id.String())+"$")
	}
	b.add("-run", strings.Join(patterns, "|"))
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
