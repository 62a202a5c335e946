// Package framework contains the low-level implementation of test harness infrastructure
// that can be reused for different kinds of black-box API tests.
//
// The general model is:
//
// 1. The test harness communicates with a service under test, which exposes a status
// resource that the harness queries before running anything, both to wait until the
// service is ready and to report what it is talking to.
//
// 2. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure/skip results.
//
// The domain-specific code that knows what is being tested is responsible for providing
// the API client that talks to the service, the payloads it sends, and a domain-specific
// test API on top of the test context.
package framework
