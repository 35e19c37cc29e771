// Package repository provides repository interfaces and GORM
// implementations for the quorum schema.
//
// # Error Handling
//
// Repositories return sentinel errors (ErrRuleNotFound, ErrDuplicateKey,
// etc.) instead of leaking GORM errors. Driver failures that the caller
// cannot act on are wrapped by Wrap into ErrStorageUnavailable, the only
// error a caller should retry.
//
// # Transactions
//
// Store bundles one instance of every repository over a single *gorm.DB.
// Store.Atomically runs a function against a Store bound to a transaction
// and re-runs it with exponential backoff when the database reports a
// transient conflict (SQLite busy/locked, MySQL deadlock or lock wait
// timeout). Errors returned by the function itself are never retried
// unless they are such a conflict.
//
// SQLite connections are opened with _txlock=immediate, so a transaction
// holds the write lock from its first statement and concurrent writers
// queue behind it. On MySQL, the ForUpdate lookups take row locks.
//
// # Required Schema Constraints
//
// Race safety for ballots, rounds, reviews and manual discrepancy flags
// relies on the unique indexes declared in package entities.
package repository
