package app

// Version is the binary version, set at link time with
// -ldflags "-X github.com/footprint-tools/cmdtree/internal/app.Version=...".
var Version = "dev"
