// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import "github.com/spf13/afero"

// FsFactory returns the filesystem that run files and BIDS datasets are read
// from. Tests replace it with an in-memory filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}
