// Package mb85rs drives MB85RSxx SPI FRAM parts.
//
// The package splits into three pieces:
//
//   - the command encoder: functions that build the raw SPI frames for
//     the MB85RS opcode set (READ, WRITE, WREN, WRDI, RDSR, RDID)
//   - [FRAM]: a driver over a [Bus] that implements the device.Device
//     byte-range contract, including the write-enable sequencing the
//     parts require before every write
//   - [SimBus]: an in-memory bus that emulates a part's opcode
//     semantics, including the write-enable latch, for tests and demos
//
// Wiring, clocking and chip-select are the [Bus] implementor's concern;
// this package only deals in complete frames. Addresses are 16-bit, so
// parts up to 64 KiB are supported.
package mb85rs
