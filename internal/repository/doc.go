// Package repository defines the data access interfaces for doodledash.
//
// The only persisted entity is the operator secret: credentials stored with
// `doodledash secrets put` and resolved by component factories at load time.
// The implementation is in the sqlite subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation stores each secret as one row whose data column
// is sealed with XChaCha20-Poly1305. The key is derived with Argon2id from a
// passphrase and a per-database salt kept in the metadata table, so a copied
// database file is useless without the passphrase.
//
// # Schema Migration
//
// The schema is created on open with CREATE TABLE IF NOT EXISTS.
package repository
