package version

// Set via ldflags during release builds
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GetFullVersion returns the version string shown by --version
func GetFullVersion() string {
	if Version == "dev" || GitCommit == "unknown" {
		return Version
	}
	return Version + " (" + GitCommit + ", " + BuildDate + ")"
}
