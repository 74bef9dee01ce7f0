// Package version reports build information for the shellwrap binary.
//
// Version, commit, branch and build time can be injected at link time:
//
//	go build -ldflags "-X github.com/kbukum/shellwrap/version.Version=1.0.0" ./cmd/shellwrap
//
// Anything not injected is read from the module and VCS stamp embedded by
// the Go toolchain.
package version
