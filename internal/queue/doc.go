// Package queue computes the live order of waiting entries.
//
// Order is fully determined by (priority desc, created_at asc). Entries with the
// same key keep their input order, so callers pass entries in insertion order.
// Every estimate is derived from one service duration supplied by the caller.
package queue
