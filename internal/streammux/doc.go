// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package streammux drains the standard output and standard error of a child
// process concurrently. Every line is forwarded to a Sink as soon as it is
// read and appended to a shared Transcript.
//
// Lines of one stream keep their order. There is no ordering guarantee
// between the two streams.
package streammux
