// Package integration provides integration tests that read prompt rows from
// PostgreSQL and MongoDB backends. These tests use real databases via
// testcontainers.
//
// Run with: go test -tags=integration ./tests/integration/...
package integration
