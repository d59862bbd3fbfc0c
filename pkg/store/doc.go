// Package store implements the rotating-slot persistent record store.
//
// A [Store] binds a fixed-size logical record to a region of a
// non-volatile device. The region holds a configurable number of slots,
// each sized for one header plus one payload. Every successful commit
// writes a new generation into the slot after the current newest one,
// rotating through the region for wear leveling; the valid record with
// the highest sequence number is authoritative.
//
// # Crash atomicity
//
// Commits write the payload first and the header second. A crash
// between the two leaves a slot whose header does not describe the new
// generation, so the scan ignores it and the previous generation (in a
// different slot) stays authoritative. A torn payload can therefore
// never be observed as valid.
//
// # Deferred writes
//
// [Store.StoreDeferred] updates only an in-memory cache and marks it
// dirty; [Store.Flush] commits the cached value once. This lets callers
// batch frequent logical updates and pay the device write cost per
// flush interval instead of per update.
//
// # Concurrency
//
// A Store performs no internal locking and assumes one caller at a
// time. Callers sharing an instance across goroutines must serialize
// Load, StoreImmediate, StoreDeferred and Flush externally.
package store
