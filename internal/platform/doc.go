// Package platform maps the running host to the normalized (os, arch) pair
// used in published asset names.
//
// Resolve is a pure function of the kernel name and machine architecture
// string; Detect feeds it live host introspection. A platform with an
// unknown field must stop the pipeline before any network access.
package platform
