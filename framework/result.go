package framework

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID     TestID
	Errors     []error
	Skipped    bool
	SkipReason string
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// FailureIDs returns the identifiers of every failed test, in the order they ran.
func (r Results) FailureIDs() []TestID {
	var ret []TestID
	for _, f := range r.Failures {
		ret = append(ret, f.TestID)
	}
	return ret
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

// PrintResults writes a summary of the test run to standard output. Group and root
// contexts are included in Results.Tests but are not counted as tests here.
func PrintResults(results Results) {
	var executed, skipped int
	for _, r := range results.Tests {
		if len(r.TestID.Path) == 0 {
			continue
		}
		if r.Skipped {
			skipped++
		} else {
			executed++
		}
	}

	if results.OK() {
		fmt.Println(color.GreenString("All tests passed (%d executed, %d skipped)", executed, skipped))
		return
	}

	fmt.Println(color.RedString("FAILED TESTS (%d):", len(results.Failures)))
	for _, f := range results.Failures {
		fmt.Printf("  * %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Printf("      %s\n", line)
			}
		}
	}
	fmt.Println()
	fmt.Println(color.RedString("%d of %d tests failed (%d skipped)", len(results.Failures), executed, skipped))
}
