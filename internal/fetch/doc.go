// Package fetch downloads release assets without ever exposing partial
// state: bodies land in a temporary sibling file and are renamed into place
// only once the transfer has completed.
//
// The temporary download directory itself is owned by the pipeline runner,
// which releases it via deferred cleanup on every exit path.
package fetch
