// -- cmd/version.go --
package cmd

// Version is the application version, overridable at build time via
// -ldflags "-X github.com/probeworks/extflow/cmd.Version=...".
var Version = "1.1.0"
