package version

// Version is the current version of gcbench.
// Can be overridden at build time with -ldflags "-X ...version.Version=..."
var Version = "1.2.0"

// Name is the application name.
const Name = "gcbench"

// Description is a short description of the application.
const Description = "GC pause log comparison and ranking tool"
