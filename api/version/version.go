package version

import (
	"github.com/coreos/go-semver/semver"
)

// Version of the form server, overridden at build time with
//
//	-ldflags "-X github.com/fnproject/formserver/api/version.Version=x.y.z"
var Version = "0.1.0"

// Parsed returns Version as a semantic version, or an error if a build
// stamped something that is not one.
func Parsed() (*semver.Version, error) {
	return semver.NewVersion(Version)
}
