// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bioz holds code for bio-impedance acquisitions with an
// AD5940 analog front-end.
//
// The ad5940 package drives the chip registers and records sequencer
// programs, the bia package implements the measurement application
// on top of it and the commands under cmd/ run it.
package bioz // import "github.com/go-lpc/bioz"

import (
	"runtime/debug"
)

const modPath = "github.com/go-lpc/bioz"

// Version returns the module version the running binary was built from,
// and its checksum.
// Binaries built from a checkout of the module report "(devel)".
func Version() (version, sum string) {
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	return versionOf(b)
}

func versionOf(b *debug.BuildInfo) (version, sum string) {
	if b == nil {
		return "", ""
	}

	mod := &b.Main
	if mod.Path != modPath {
		mod = nil
		for _, m := range b.Deps {
			if m.Path == modPath {
				mod = m
				break
			}
		}
	}
	if mod == nil {
		return "", ""
	}

	if r := mod.Replace; r != nil {
		if r.Version == "" {
			return mod.Version + "*", ""
		}
		return r.Version, r.Sum
	}
	return mod.Version, mod.Sum
}
