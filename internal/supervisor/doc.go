// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package supervisor runs tedana once per work item of a batch.
//
// A Supervisor allows one run at a time. Items run in order and the first
// failure or cancellation stops the batch. Output lines are forwarded to a
// progress.Reporter as they are read, and the Report returned by Start holds
// the transcript of every item that was started, including the one that failed.
//
// Cancel stops the current item by killing its process and prevents the
// remaining items from being launched.
package supervisor
