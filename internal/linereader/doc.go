// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package linereader splits a byte stream into lines as the data arrives.
// Unlike bufio.Scanner it has no maximum line length: a partial line is kept
// until its terminator or end of stream is read.
package linereader
