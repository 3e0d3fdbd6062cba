package common

// PackageName is used as the metrics namespace and default service tag.
const PackageName = "keymanager_provisioning"

// Version is set at build time via -ldflags.
var Version = "dev"
