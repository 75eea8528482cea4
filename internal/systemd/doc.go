// Package systemd registers the installed binary as a service unit.
//
// Registration is optional and idempotent: hosts without systemd are
// skipped, and an existing unit file is never modified.
package systemd
