// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads tedrun run files.
//
// A run file describes one batch: the Python interpreter of the tedana
// environment, the BIDS dataset, the tedana options and optionally an explicit
// list of subjects. Files ending in .hcl are parsed as HCL, anything else as
// YAML. HCL files can read environment variables through env.NAME; SUBJECT
// and SESSION evaluate to the literal ${SUBJECT} and ${SESSION} placeholders.
package config
