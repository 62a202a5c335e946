// Package servicedef defines the wire-level surface of the repository-management
// service: the API paths the tests talk to and generators for the JSON payloads
// they send.
package servicedef
