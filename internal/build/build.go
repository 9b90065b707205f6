// Package build holds build-time metadata.
package build

// Version is the application version reported by /health.
// Override at build time with -ldflags "-X .../internal/build.Version=x.y.z".
var Version = "1.1.0"
