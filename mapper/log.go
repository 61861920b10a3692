// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package mapper

import "github.com/echa/log"

// logger is a logger initialized with no output filters - the package
// stays silent until a caller opts in via UseLogger, matching
// rpc/log.go's DisableLog-by-default convention.
var logger log.Logger = log.Log

func init() {
	DisableLog()
}

// DisableLog disables all package log output.
func DisableLog() {
	logger = log.Disabled
}

// UseLogger directs package logging to l.
func UseLogger(l log.Logger) {
	logger = l
}
