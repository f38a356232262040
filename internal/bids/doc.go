// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package bids inspects a BIDS dataset for multi-echo functional runs.
//
// Validate checks the layout that tedrun relies on: sub-* directories,
// optional ses-* directories and a func directory holding BOLD sidecars and
// images. Scan lists the subjects and sessions with their echo images and
// reads the acquisition metadata of the first session.
package bids
