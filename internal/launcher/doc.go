// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package launcher starts a child process with captured standard output and
// standard error, without going through a shell.
//
// The argument string is split into words using POSIX shell quoting rules.
// Variable references are expanded from the parent environment; globbing and
// command substitution are not supported.
//
// The returned Handle never blocks: the caller polls TryWait and may call
// Terminate at any time. Reading the two streams is the caller's job.
package launcher
