// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default logger writes through PrettyHandler, a console handler that
// prints a timestamp, a coloured level and the attributes as indented JSON.
// The level is shared by all loggers through LevelVar and is initialised from
// the TEDRUN_LOG_LEVEL environment variable.
package ctxlog
