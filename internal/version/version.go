package version

// Version is the suitedb version, overridden at build time with
// -ldflags "-X github.com/hashicorp-forge/suitedb/internal/version.Version=...".
var Version = "0.1.0-dev"
