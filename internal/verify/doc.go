// Package verify performs the post-install sanity check: the installed
// binary resolves on PATH and reports its own version. A miss is a warning
// for the pipeline, never a failure.
package verify
