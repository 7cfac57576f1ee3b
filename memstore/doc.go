// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package memstore is an in-memory poll registry and ballot store with the
// same semantics as the SQL store. It backs tests and single-process runs
// with DATABASE_TYPE=memory.
package memstore
