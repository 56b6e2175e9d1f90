// Package pulsemonmcp carries the module version.
package pulsemonmcp

// Version is the pulsemon-mcp release version.
const Version = "0.1.0"

// GetVersion returns the release version string.
func GetVersion() string {
	return Version
}
