// Package device abstracts the non-volatile byte-range store that
// framstore persists records into.
//
// The [Device] interface is the narrow contract the slot store consumes:
// synchronous, bounds-checked reads and writes of arbitrary byte ranges.
// Anything that can honor it can back a store: the real SPI FRAM driver
// in package mb85rs, or one of the emulation backends provided here.
//
// Implementations:
//   - [MemDevice]: volatile in-memory image, the default for tests and demos
//   - [FileDevice]: image persisted in a regular file
//   - [PebbleDevice]: image paged into a pebble keyspace
//   - [FaultDevice]: wrapper that injects scripted I/O failures for tests
//
// All implementations reject ranges that fall outside the device with
// [ErrOutOfRange]; a single Read or Write call is never partially applied
// against an out-of-range argument.
package device
