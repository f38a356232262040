// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker relays termination signals to a running batch.
// By default it listens for os.Interrupt, syscall.SIGTERM and syscall.SIGQUIT.
//
// Watch asks the active run to stop on the first signal of a kind and cancels
// the root context when the same signal arrives again.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/tedrun/internal/ctxlog"
)

var termSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// New registers a buffered channel for the given signals, or for the
// termination signals when none are given.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "creating signal broker", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop unregisters ch. Watch returns once ch is closed.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
	close(ch)
}
