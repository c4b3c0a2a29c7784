package main

import (
	"os"

	"surfex/internal/slogutil"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger := slogutil.New(os.Stderr, slogutil.FormatHuman, slogutil.LevelFromString("error"))
		logger.Error("command execution failed", "error", err.Error())
		os.Exit(1)
	}
}
