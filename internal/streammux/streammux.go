// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package streammux

import (
	"context"
	"io"
	"sync"

	"github.com/matt-FFFFFF/tedrun/internal/ctxlog"
	"github.com/matt-FFFFFF/tedrun/internal/linereader"
)

// Source provides the two output streams of a process.
type Source interface {
	Stdout() io.Reader
	Stderr() io.Reader
}

// Sink receives lines as they are read. OnLine is called from the reader
// goroutines and must be safe for concurrent use.
type Sink interface {
	OnLine(line Line)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(line Line)

// OnLine implements Sink.
func (f SinkFunc) OnLine(line Line) {
	f(line)
}

// Drain is an in-progress drain of one Source.
type Drain struct {
	mu         sync.Mutex
	transcript Transcript
	activity   chan struct{}
	done       chan struct{}
	wg         sync.WaitGroup
}

// Start begins reading both streams of src on their own goroutines.
// sink may be nil.
func Start(ctx context.Context, src Source, sink Sink) *Drain {
	d := &Drain{
		activity: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	logger := ctxlog.Logger(ctx).With("component", "streammux")

	streams := []struct {
		r      io.Reader
		origin Origin
	}{
		{src.Stdout(), OriginPrimary},
		{src.Stderr(), OriginDiagnostic},
	}

	for _, s := range streams {
		if s.r == nil {
			continue
		}

		d.wg.Add(1)

		go func() {
			defer d.wg.Done()

			lr := linereader.New(s.r)

			err := lr.Each(func(text string) {
				line := Line{Origin: s.origin, Text: text, Seq: lr.Lines() - 1}

				if sink != nil {
					sink.OnLine(line)
				}

				d.append(line)
				d.notify()
			})
			if err != nil {
				logger.Debug("stream closed with error", "stream", s.origin.String(), "lines", lr.Lines(), "error", err)
				return
			}

			logger.Debug("stream closed", "stream", s.origin.String(), "lines", lr.Lines())
		}()
	}

	go func() {
		d.wg.Wait()
		close(d.done)
	}()

	return d
}

// Run drains src until both streams are exhausted and returns the transcript.
func Run(ctx context.Context, src Source, sink Sink) Transcript {
	return Start(ctx, src, sink).Wait()
}

// Activity is signalled after lines are appended. Signals coalesce.
func (d *Drain) Activity() <-chan struct{} {
	return d.activity
}

// Done is closed once both streams have ended.
func (d *Drain) Done() <-chan struct{} {
	return d.done
}

// Wait blocks until both streams have ended and returns the transcript.
func (d *Drain) Wait() Transcript {
	<-d.done
	return d.Snapshot()
}

// Snapshot returns a copy of the lines read so far.
func (d *Drain) Snapshot() Transcript {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.transcript.Clone()
}

func (d *Drain) append(line Line) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.transcript.Lines = append(d.transcript.Lines, line)

	if IsMarked(line) {
		d.transcript.SawMarker = true
	}
}

func (d *Drain) notify() {
	select {
	case d.activity <- struct{}{}:
	default:
	}
}
