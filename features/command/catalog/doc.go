// Package catalog holds the thin persistence wrappers around authors,
// publishers, books and users. There is no rule engine here beyond
// duplicate checks and the stock-removal bound on book updates; the
// interesting circulation logic lives in the reservation and schedule
// packages.
package catalog
