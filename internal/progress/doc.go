// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries real-time run events from the supervisor to an
// observer. Output lines are delivered as EventProgressLine (stdout) and
// EventErrorLine (stderr) events; item and run lifecycle events frame them.
package progress
