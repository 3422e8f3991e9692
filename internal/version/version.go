// Package version records the release version reported by --version.
package version

// Version is the sidegen release version.
const Version = "0.3.0"
