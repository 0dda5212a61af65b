// Package postgres implements every repository port on PostgreSQL.
//
// SQL is built with goqu and executed through an internal adapter layer,
// so the store works with a pgxpool.Pool, a sql.DB, or a sqlx.DB
// connection, chosen by constructor. Creating a reservation and returning
// an item each commit their rows together with the matching stock movement
// in a single transaction; the conditional copy updates keep the
// 0 <= available <= total invariant under concurrent reservation attempts.
package postgres
