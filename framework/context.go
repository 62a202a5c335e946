package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
}

// Run executes a top-level test action and returns the accumulated results. The action
// normally calls Context.Run any number of times to define individual tests or groups.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	if c.failed || len(c.errors) > 0 {
		c.recordResult(TestResult{TestID: c.id, Errors: c.errors})
	}
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			if c.skipped {
				return
			}
			c.failed = true
			var addError error
			if _, ok := r.(*Context); ok {
				if len(c.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				c.errors = append(c.errors, addError)
				c.env.testLogger.TestError(c.id, addError)
			}
		}
	}()

	action(c)
}

func (c *Context) ID() TestID {
	return c.id
}

// Run runs a subtest within this context. This is the equivalent of the Run method of
// testing.T; results are recorded under a slash-delimited path of subtest names.
func (c *Context) Run(name string, action func(*Context)) {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.recordResult(TestResult{TestID: id, Skipped: true, SkipReason: "excluded by filter parameters"})
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	result := TestResult{TestID: id, Errors: c1.errors, Skipped: c1.skipped, SkipReason: c1.skipReason}
	c.recordResult(result)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

func (c *Context) recordResult(result TestResult) {
	c.env.results.Tests = append(c.env.results.Tests, result)
	if len(result.Errors) > 0 {
		c.env.results.Failures = append(c.env.results.Failures, result)
	}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, reformatError(err))
}

// FailNow aborts the current test immediately. The methods in the require package call it.
func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

// reformatError strips the blank padding lines that testify puts into assertion
// messages, so the console output stays compact.
func reformatError(err error) error {
	var lines []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return errors.New(strings.Join(lines, "\n"))
}
