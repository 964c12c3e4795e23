// Package store is the SQLite backend the SQL view executes against.
//
// A Store wraps one database handle configured for single-writer use.
// Queries compiled by package querysql run through QueryRows, which scans
// any result shape into a generic Rows value suitable for printing,
// JSON output and scenario assertions.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// OpenReadOnly applies only busy_timeout and query_only=ON, for databases
// the CLI queries but does not own.
//
// The store never creates application tables itself. Demo and test
// databases are populated with Seed.
package store
