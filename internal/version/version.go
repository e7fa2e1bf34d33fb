package version

// Version is the current version of the blockwarp binary.
// This value can be overridden at build time using:
//   go build -ldflags="-X 'blockwarp/internal/version.Version=v1.0.0'"
var Version = "dev"
