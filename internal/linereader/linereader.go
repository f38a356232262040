// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package linereader

import (
	"bytes"
	"errors"
	"io"
)

const defaultChunkSize = 32 * 1024

// Reader emits complete lines from an underlying reader.
type Reader struct {
	reader  io.Reader
	chunk   []byte
	partial bytes.Buffer
	lines   int
}

// New returns a Reader over r.
func New(r io.Reader) *Reader {
	return &Reader{
		reader: r,
		chunk:  make([]byte, defaultChunkSize),
	}
}

// Each calls fn for every line until r is exhausted. Line terminators ("\n"
// or "\r\n") are stripped. A final unterminated line is emitted at end of
// stream or when a read fails. Each returns nil at io.EOF, otherwise the read error.
func (lr *Reader) Each(fn func(line string)) error {
	for {
		n, err := lr.reader.Read(lr.chunk)
		if n > 0 {
			lr.processNewData(lr.chunk[:n], fn)
		}

		if err == nil {
			continue
		}

		lr.flush(fn)

		if errors.Is(err, io.EOF) {
			return nil
		}

		return err //nolint:wrapcheck
	}
}

// Lines returns how many lines have been emitted.
func (lr *Reader) Lines() int {
	return lr.lines
}

// Each is shorthand for New(r).Each(fn).
func Each(r io.Reader, fn func(line string)) error {
	return New(r).Each(fn)
}

func (lr *Reader) processNewData(data []byte, fn func(string)) {
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lr.partial.Write(data)
			return
		}

		lr.partial.Write(data[:i])
		lr.emit(fn)

		data = data[i+1:]
	}
}

func (lr *Reader) flush(fn func(string)) {
	if lr.partial.Len() > 0 {
		lr.emit(fn)
	}
}

func (lr *Reader) emit(fn func(string)) {
	line := bytes.TrimSuffix(lr.partial.Bytes(), []byte{'\r'})
	lr.lines++

	fn(string(line))
	lr.partial.Reset()
}
