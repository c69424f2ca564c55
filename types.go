package mbus

// Frame delimiter bytes defined by EN 13757-2.
const (
	FrameAckStart   byte = 0xE5 // single-byte acknowledge, no body
	FrameShortStart byte = 0x10 // fixed five-byte frame
	FrameLongStart  byte = 0x68 // variable-length frame, start byte repeated at offset 3
	FrameStop       byte = 0x16
)

// Frame geometry. A long frame carries its length redundantly in bytes 1
// and 2; the length field counts control, address, CI and payload, so the
// wire size is length+6 (two starts, two length bytes, checksum, stop).
const (
	ShortFrameSize    = 5
	LongFrameOverhead = 6
	LongFrameMinSize  = 9   // length field 3, no payload
	MaxPayloadSize    = 252 // length field is one byte, minus C, A and CI
	MaxFrameSize      = 255 + LongFrameOverhead
)

// Link-layer control field values (calling direction).
const (
	ControlSndNke byte = 0x40 // link reset / ping
	ControlSndUD  byte = 0x53 // send user data to slave
	ControlReqUD2 byte = 0x5B // request user data class 2, FCV=0
	ControlReqUD1 byte = 0x5A
	ControlRspUD  byte = 0x08 // response from slave, ACD/DFC cleared

	// FCB variants of the request commands.
	ControlReqUD2FCB byte = 0x7B
	ControlReqUD1FCB byte = 0x7A
)

// Reserved primary addresses.
const (
	AddressUnconfigured     byte = 0x00
	AddressNetworkLayer     byte = 0xFD
	AddressBroadcastReply   byte = 0xFE
	AddressBroadcastNoReply byte = 0xFF
)

// Control information codes announcing a baud rate switch (EN 13757-3).
// Some meters take these on the request itself and answer at the new rate.
const (
	CIBaudrate300  byte = 0xB8
	CIBaudrate600  byte = 0xB9
	CIBaudrate1200 byte = 0xBA
	CIBaudrate2400 byte = 0xBB
	CIBaudrate4800 byte = 0xBC
	CIBaudrate9600 byte = 0xBD

	// CIApplicationReset restarts the slave's application layer.
	CIApplicationReset byte = 0x50
)

// DefaultBaudRate is the rate a link opens with; most meters listen at
// 2400 Bd out of the box.
const DefaultBaudRate = 2400
