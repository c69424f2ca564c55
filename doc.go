// Package mbus implements the master side of the M-Bus (Meter-Bus,
// EN 13757) wire protocol for reading utility meters over RS-232/RS-485.
//
// The package is layered from pure to physical: Frame and Assemble handle
// the byte-exact frame formats with no I/O, Transport drives one serial
// line through the assembler with a bounded timeout budget, and Client
// implements the request/response exchanges on top, including the vendor
// baud-switch readout where the request goes out at one rate and the
// answer comes back at another.
//
// Everything is single-threaded by design: the line is half-duplex, so
// one Client owns one device and runs one exchange at a time. Multiple
// independent devices can be driven from separate Clients without
// coordination.
package mbus
