// Package buildinfo reports the version of the running binary.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/omriasta/core/internal/infra/buildinfo.Version=v1.0.0 \
//	    -X github.com/omriasta/core/internal/infra/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// Without ldflags the commit and build time fall back to the VCS stamp the
// Go toolchain embeds.
package buildinfo
