// Package version resolves the version of the nbsvg binary from the sources available:
// `git archive` substitutions, build information and a hardcoded release.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
)

type VersionInfo struct {
	Version     string
	Commit      string
	CommitLink  string
	ReleaseLink string
}

const (
	BaseVersionControlURL string = "https://github.com/rmorshead/nbsvg"

	// hashLen is the length of the abbreviated commit hash.
	hashLen = 7
)

// AppVersion determines version and commit information, in order of preference, from:
//   - `git archive` substitutions, passed in gitVersion and gitHash;
//   - commit information added to the binary by `go build`, combined with version;
//   - the hardcoded version alone.
//
// It's supposed to be called like this, with the `export-subst` attribute set for the
// file in .gitattributes:
//
//	var AppVersion = version.AppVersion("v1.0.0", "$Format:%(describe)$", "$Format:%H$")
func AppVersion(version, gitVersion, gitHash string) *VersionInfo {
	if !strings.HasPrefix(gitVersion, "$") && !strings.HasPrefix(gitHash, "$") {
		return newVersionInfo(gitVersion, gitVersion, gitHash)
	}

	releaseVersion := version
	var commit string
	if info, ok := debug.ReadBuildInfo(); ok {
		var modified bool
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				commit = setting.Value
			case "vcs.modified":
				modified, _ = strconv.ParseBool(setting.Value)
			}
		}
		if modified && len(commit) >= hashLen {
			version += "-dirty"
			commit += " (modified)"
		}
	}
	return newVersionInfo(version, releaseVersion, commit)
}

func newVersionInfo(version, releaseVersion, commit string) *VersionInfo {
	v := &VersionInfo{
		Version:     version,
		Commit:      commit,
		ReleaseLink: fmt.Sprintf("%s/releases/tag/%s", BaseVersionControlURL, releaseVersion),
	}
	if commit != "" {
		v.CommitLink = fmt.Sprintf("%s/tree/%s", BaseVersionControlURL, strings.TrimSuffix(commit, " (modified)"))
	}
	return v
}

// Short returns the abbreviated commit hash, or "" if not known.
func (v *VersionInfo) Short() string {
	if len(v.Commit) < hashLen {
		return v.Commit
	}
	return v.Commit[:hashLen]
}

// String returns the version.
func (v *VersionInfo) String() string {
	return v.Version
}

// Fprint writes the verbose version information to w.
func (v *VersionInfo) Fprint(w io.Writer) {
	_, _ = fmt.Fprintf(w, "nbsvg version: %s\n\n", v.Version)
	if v.CommitLink != "" {
		_, _ = fmt.Fprintln(w, "Version control info:")
		_, _ = fmt.Fprintf(w, "  Commit: %s\n", v.CommitLink)
		_, _ = fmt.Fprintf(w, "  Release: %s\n\n", v.ReleaseLink)
	}
	_, _ = fmt.Fprintln(w, "Build info:")
	_, _ = fmt.Fprintf(w, "  Go version: %s (OS: %s, arch: %s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
