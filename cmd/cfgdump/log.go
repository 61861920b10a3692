// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc, abdul@blockwatch.cc

package main

import (
	logpkg "github.com/echa/log"

	"github.com/tigritik/Butylene/mapper"
)

var (
	log      = logpkg.NewLogger("MAIN")
	codecLog = logpkg.NewLogger("CODE")
	mapLog   = logpkg.NewLogger("MAP ")
)

// loggers maps each subsystem identifier to its associated logger.
var loggers = map[string]logpkg.Logger{
	"MAIN": log,
	"CODE": codecLog,
	"MAP":  mapLog,
}

func initLogging() {
	mapper.UseLogger(mapLog)

	var lvl logpkg.Level
	switch {
	case verboseFlag:
		lvl = logpkg.LevelDebug
	default:
		lvl = logpkg.LevelWarn
	}
	setLogLevels(lvl)
}

func setLogLevels(level logpkg.Level) {
	for id := range loggers {
		loggers[id].SetLevel(level)
	}
}
