// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/tedrun/internal/ctxlog"
)

// Watch consumes sigCh until it is closed or ctx is done.
// onFirst runs for the first signal of each kind and may be nil.
// A repeated signal of the same kind calls cancel and returns.
func Watch(ctx context.Context, sigCh <-chan os.Signal, onFirst func(os.Signal), cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Info(ctx, "watchdog", "detail", "received second signal of type, forcefully terminating", "signal", sig.String())
				cancel()

				return
			}

			seen[sig] = struct{}{}

			ctxlog.Info(ctx, "watchdog", "detail", "received first signal of type, stopping run", "signal", sig.String())

			if onFirst != nil {
				onFirst(sig)
			}
		}
	}
}
