// Package types defines the core types and interfaces used throughout pkgman.
// This includes the FS interface used by every file reader, as well as
// data structures like PackageGroup, PackageGroupSet and IgnoreSpec.
package types
