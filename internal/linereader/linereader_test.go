// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package linereader

import (
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, lr *Reader) ([]string, error) {
	t.Helper()

	var lines []string

	err := lr.Each(func(line string) {
		lines = append(lines, line)
	})

	return lines, err
}

func TestEach(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single line with newline", input: "hello world\n", want: []string{"hello world"}},
		{name: "single line without newline", input: "hello world", want: []string{"hello world"}},
		{name: "empty string", input: "", want: nil},
		{name: "just newline", input: "\n", want: []string{""}},
		{name: "two lines without final newline", input: "line1\nline2", want: []string{"line1", "line2"}},
		{name: "multiple empty lines", input: "line1\n\n\nline4\n", want: []string{"line1", "", "", "line4"}},
		{name: "crlf", input: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "bare carriage return kept", input: "50%\r100%\n", want: []string{"50%\r100%"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := New(strings.NewReader(tt.input))

			lines, err := collect(t, lr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, lines)
			assert.Equal(t, len(tt.want), lr.Lines())
		})
	}
}

func TestEach_OneByteReads(t *testing.T) {
	input := "first line\nsecond line\nthird line\nfourth line"

	lines, err := collect(t, New(iotest.OneByteReader(strings.NewReader(input))))
	require.NoError(t, err)
	assert.Equal(t, []string{"first line", "second line", "third line", "fourth line"}, lines)
}

func TestEach_LongLine(t *testing.T) {
	long := strings.Repeat("x", 3*defaultChunkSize+17)

	lines, err := collect(t, New(strings.NewReader(long+"\nshort\n")))
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, long, lines[0])
	assert.Equal(t, "short", lines[1])
}

func TestEach_ErrorFlushesPartial(t *testing.T) {
	r := iotest.TimeoutReader(strings.NewReader("done\npartial"))

	lines, err := collect(t, New(r))

	require.ErrorIs(t, err, iotest.ErrTimeout)
	assert.Equal(t, []string{"done", "partial"}, lines)
}

func TestEach_DataWithError(t *testing.T) {
	lines, err := collect(t, New(iotest.DataErrReader(strings.NewReader("a\nb"))))

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)
}
