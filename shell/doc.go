// Package shell holds the boundary between the pure core and the outside
// world: the repository ports the engines consume, the collaborator
// contracts (clock, logger), and the retry helper for stock contention.
//
// Ports return absent rows as (zero value, false, nil), never as errors;
// the engines translate absence into the typed not-found failures at the
// point of use.
package shell
