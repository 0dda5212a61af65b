// Package adapters provides database adapter implementations for the
// PostgreSQL store.
//
// This package implements the adapter pattern to support multiple
// PostgreSQL database libraries: pgx.Pool, sql.DB, and sqlx.DB. All
// adapters provide equivalent functionality through a common DBAdapter
// interface, allowing the store to work seamlessly with any supported
// database connection type.
//
// Transactions are part of the interface because the stock ledger and the
// aggregate writes need multi-statement atomicity.
package adapters
