// Package reservation implements the reservation engine: creating a
// reservation against available stock, extending an item once, returning
// items, and administrative deletion.
//
// The engine is a thin orchestrator. It loads data through the ports, runs
// the pure validators from core in a fixed order, short-circuits on the
// first failure, and only then mutates the stock ledger and persists the
// aggregate. A rejected request never leaves partial state behind.
package reservation
