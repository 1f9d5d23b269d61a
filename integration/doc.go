// Package integration contains integration tests that exercise the
// certificate workflows against a real IPFS (Kubo) node in a container.
//
// Run with:
//
//	go test -tags integration ./integration/
//
// Docker is required. Set SKIP_DOCKER_TESTS=1 to skip.
package integration
