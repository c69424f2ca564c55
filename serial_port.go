package mbus

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	serial "github.com/hootrhino/goserial"
)

// Port is the transport's view of the serial line. A Read that times out
// with no data must return (0, nil), mirroring a VMIN=0/VTIME termios read;
// the transport counts those empty reads against its timeout budget.
type Port interface {
	io.ReadWriteCloser
}

// Drainer is implemented by ports that can block until all queued output
// has been physically transmitted. The transport drains after every frame
// write when available, since the next step is usually "wait for reply"
// and buffered-but-untransmitted bytes would skew the timing window.
type Drainer interface {
	Drain() error
}

// ReplyTimeout returns the read timeout used at the given baud rate, or
// ErrUnsupportedBaudRate.
//
// EN 60870-5-1 places the slave's answer between 11 bit times and
// (330 bit times + 50 ms) after the request, so the timeout scales
// inversely with the rate. The values follow the classic VTIME table:
// deciseconds 12/4/2/1 for 300/1200/2400/9600 Bd.
func ReplyTimeout(baud int) (time.Duration, error) {
	switch baud {
	case 300:
		return 1200 * time.Millisecond, nil
	case 1200:
		return 400 * time.Millisecond, nil
	case 2400:
		return 200 * time.Millisecond, nil
	case 9600:
		return 100 * time.Millisecond, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedBaudRate, baud)
}

// serialPort adapts a goserial port to the Port contract: reads that hit
// the configured timeout come back as empty reads instead of errors.
type serialPort struct {
	port io.ReadWriteCloser
}

func (p *serialPort) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if err != nil && isTimeoutErr(err) {
		return n, nil
	}
	return n, err
}

func (p *serialPort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *serialPort) Close() error {
	return p.port.Close()
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, serial.ErrTimeout) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// OpenSerialPort opens and configures the serial device for M-Bus: 8 data
// bits, even parity, 1 stop bit, no flow control, with the read timeout
// matching the baud rate's reply window. The returned Port is exclusively
// owned by its transport; opening the same device twice is undefined.
func OpenSerialPort(device string, baud int) (Port, error) {
	timeout, err := ReplyTimeout(baud)
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(&serial.Config{
		Address:  device,
		BaudRate: baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "E",
		Timeout:  timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenFailed, device, err)
	}
	return &serialPort{port: port}, nil
}
