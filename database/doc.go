// Package database holds the read-only inputs of a Gibbs energy model: phase
// definitions, parameter records and named symbols, together with the
// predicate queries used to select records.
//
// A Memory database is filled once (by hand, from a YAML snapshot, or from
// the sqlite package) and then only read, so concurrent Search calls are
// safe.
package database
