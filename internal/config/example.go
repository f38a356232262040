// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

// ExampleYAML is a complete YAML run file.
const ExampleYAML = `name: rest-denoise
description: Multi-echo denoising of the resting state runs
python: /opt/venvs/tedana/bin/python
bids_dir: /data/bids
strict_stderr: true
tedana:
  data_files:
    - /data/bids/sub-${SUBJECT}/ses-${SESSION}/func/sub-${SUBJECT}_ses-${SESSION}_task-rest_echo-1_bold.nii.gz
    - /data/bids/sub-${SUBJECT}/ses-${SESSION}/func/sub-${SUBJECT}_ses-${SESSION}_task-rest_echo-2_bold.nii.gz
    - /data/bids/sub-${SUBJECT}/ses-${SESSION}/func/sub-${SUBJECT}_ses-${SESSION}_task-rest_echo-3_bold.nii.gz
  echo_times: [14.5, 38.5, 62.5]
  out_dir: /data/derivatives/tedana/sub-${SUBJECT}/ses-${SESSION}
  tedpca: aic
  tree: tedana_orig
  seed: 42
  verbose: true
# Leave subjects out to run every subject found in bids_dir.
subjects:
  - key: "01"
    sessions: ["A", "B"]
  - key: "02"
`

// ExampleHCL is ExampleYAML written as HCL.
const ExampleHCL = `name          = "rest-denoise"
description   = "Multi-echo denoising of the resting state runs"
python        = "${env.HOME}/venvs/tedana/bin/python"
bids_dir      = "/data/bids"
strict_stderr = true

tedana {
  data_files = [
    "/data/bids/sub-${SUBJECT}/ses-${SESSION}/func/sub-${SUBJECT}_ses-${SESSION}_task-rest_echo-1_bold.nii.gz",
    "/data/bids/sub-${SUBJECT}/ses-${SESSION}/func/sub-${SUBJECT}_ses-${SESSION}_task-rest_echo-2_bold.nii.gz",
    "/data/bids/sub-${SUBJECT}/ses-${SESSION}/func/sub-${SUBJECT}_ses-${SESSION}_task-rest_echo-3_bold.nii.gz",
  ]
  echo_times = [14.5, 38.5, 62.5]
  out_dir    = "/data/derivatives/tedana/sub-${SUBJECT}/ses-${SESSION}"
  tedpca     = "aic"
  tree       = "tedana_orig"
  seed       = 42
  verbose    = true
}

subject "01" {
  sessions = ["A", "B"]
}

subject "02" {}
`
