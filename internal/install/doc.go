// Package install performs the install transition: back up the existing
// binary, move the downloaded one into place, set the executable mode.
//
// The backup policy deliberately keeps a single generation — each install
// overwrites the previous backup.
package install
