package version

// Version is overridden at build time with -ldflags "-X photodup/version.Version=...".
var Version = "dev"
