// Package integration holds end-to-end tests that run a sync against an
// httptest release feed and a temporary package repository.
package integration
