// Package crudtests contains the CRUD contract test suite for the repository API.
//
// The scenarios are deliberately not independent: the repository created by the
// first scenario is the subject of every later one, and updates accumulate on it in
// order. The shared fixture that threads this state through the run lives on the
// suite environment; execution is strictly sequential, so no locking is needed.
package crudtests
