// Copyright (C) 2026  sraeck
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License along
// with this program; if not, see <https://www.gnu.org/licenses/>.

package mbus

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DataRequester is the client surface the poller drives.
type DataRequester interface {
	RequestData(address byte) (*Frame, error)
}

// Readout is one polled reply together with the address it came from.
type Readout struct {
	Address byte
	Frame   *Frame
}

// OnDataFunc is a callback type for delivering polled readouts.
type OnDataFunc func(Readout)

// OnErrorFunc is a callback type for error reporting.
type OnErrorFunc func(error)

// ReadoutScheduler walks a list of primary addresses on one link. Reads
// are strictly sequential: the line is half-duplex, so polling addresses
// concurrently would interleave frames.
type ReadoutScheduler struct {
	client    DataRequester
	addresses []byte
	mu        sync.Mutex
}

// NewReadoutScheduler creates a scheduler for a client.
func NewReadoutScheduler(client DataRequester) *ReadoutScheduler {
	return &ReadoutScheduler{client: client}
}

// Load validates and stores the address list for polling.
func (rs *ReadoutScheduler) Load(addresses []byte) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	seen := make(map[byte]bool)
	for _, a := range addresses {
		if seen[a] {
			return fmt.Errorf("mbus: duplicate address: %d", a)
		}
		seen[a] = true
	}
	rs.addresses = addresses
	return nil
}

// ReadAll requests data from every loaded address in order. Failed
// addresses are collected as errors; the walk continues past them.
func (rs *ReadoutScheduler) ReadAll() ([]Readout, []error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	var readouts []Readout
	var errs []error
	for _, a := range rs.addresses {
		frame, err := rs.client.RequestData(a)
		if err != nil {
			errs = append(errs, fmt.Errorf("mbus: address %d: %w", a, err))
			continue
		}
		readouts = append(readouts, Readout{Address: a, Frame: frame})
	}
	return readouts, errs
}

// ReadoutStream handles asynchronous delivery of readouts to callbacks.
type ReadoutStream struct {
	dataCh  chan Readout
	stopCh  chan struct{}
	onData  atomic.Value // OnDataFunc
	onError atomic.Value // OnErrorFunc
}

// NewReadoutStream creates a ReadoutStream with the given buffer size.
func NewReadoutStream(bufferSize int) *ReadoutStream {
	return &ReadoutStream{
		dataCh: make(chan Readout, bufferSize),
		stopCh: make(chan struct{}),
	}
}

// SetOnData sets the callback for delivered readouts.
func (rs *ReadoutStream) SetOnData(fn OnDataFunc) {
	rs.onData.Store(fn)
}

// SetOnError sets the callback for poll errors.
func (rs *ReadoutStream) SetOnError(fn OnErrorFunc) {
	rs.onError.Store(fn)
}

// Start launches the goroutine dispatching readouts to the OnData callback.
func (rs *ReadoutStream) Start() {
	go func() {
		for {
			select {
			case <-rs.stopCh:
				return
			case r, ok := <-rs.dataCh:
				if !ok {
					return
				}
				if cb := rs.onData.Load(); cb != nil {
					cb.(OnDataFunc)(r)
				}
			}
		}
	}()
}

// Push queues a readout for delivery, unless the stream is stopped.
func (rs *ReadoutStream) Push(r Readout) {
	select {
	case rs.dataCh <- r:
	case <-rs.stopCh:
	}
}

// PushError reports a poll error through the OnError callback.
func (rs *ReadoutStream) PushError(err error) {
	if cb := rs.onError.Load(); cb != nil {
		cb.(OnErrorFunc)(err)
	}
}

// Stop signals the stream to stop processing.
func (rs *ReadoutStream) Stop() {
	close(rs.stopCh)
}

// Poller reads a set of meters at a fixed interval and feeds the results
// into a stream. One Poller per link.
type Poller struct {
	Scheduler *ReadoutScheduler
	Stream    *ReadoutStream
	interval  time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewPoller creates a poller for a client with the given readout interval
// and stream buffer size.
func NewPoller(client DataRequester, interval time.Duration, bufferSize int) *Poller {
	return &Poller{
		Scheduler: NewReadoutScheduler(client),
		Stream:    NewReadoutStream(bufferSize),
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Load sets the address list to poll.
func (p *Poller) Load(addresses []byte) error {
	return p.Scheduler.Load(addresses)
}

// SetOnData sets the data callback.
func (p *Poller) SetOnData(fn OnDataFunc) {
	p.Stream.SetOnData(fn)
}

// SetOnError sets the error callback.
func (p *Poller) SetOnError(fn OnErrorFunc) {
	p.Stream.SetOnError(fn)
}

// Start launches the polling loop.
func (p *Poller) Start() {
	p.Stream.Start()
	p.wg.Add(1)
	go p.poll()
}

func (p *Poller) poll() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.readAndStream()
		}
	}
}

func (p *Poller) readAndStream() {
	readouts, errs := p.Scheduler.ReadAll()
	for _, r := range readouts {
		p.Stream.Push(r)
	}
	for _, err := range errs {
		p.Stream.PushError(err)
	}
}

// Stop ends the polling loop and the stream.
func (p *Poller) Stop() {
	close(p.stopCh)
	p.wg.Wait()
	p.Stream.Stop()
}
