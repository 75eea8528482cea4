// Package installer orchestrates the install pipeline: privilege gate,
// platform resolution, version resolution, asset download, install
// transition, service registration and verification.
//
// The pipeline is strictly sequential and assumes exclusive ownership of
// the install directory for the duration of a run; concurrent invocations
// are unsupported.
package installer
