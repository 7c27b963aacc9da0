// Package version holds the version of nbsvg.
package version

import "github.com/rmorshead/nbsvg/internal/version"

// GitTag is the last released version. Builds can override it with
// `-ldflags "-X 'github.com/rmorshead/nbsvg/version.GitTag=v0.2.0'"`.
var GitTag = "v0.1.0"

// AppVersion contains version and Git commit information.
//
// The placeholders are replaced on `git archive` using the `export-subst` attribute.
var AppVersion = version.AppVersion(GitTag, "$Format:%(describe)$", "$Format:%H$")
