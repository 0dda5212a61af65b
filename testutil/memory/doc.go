// Package memory provides in-memory implementations of all repository
// ports, backed by mutex-guarded maps. They carry the same semantics as
// the Postgres store, including the all-or-none stock ledger, and exist so
// the engines can be tested deterministically without a database.
package memory
