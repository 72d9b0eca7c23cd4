// Package cli implements the interactive ByteChef client: a small REPL over
// the synchronized repositories. Reads are served from the local cache, so
// list and show keep working when the backend is unreachable; writes need
// the backend and report failure otherwise.
package cli
