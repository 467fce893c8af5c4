package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// setupLog discards logging by default and routes it to the file named by
// ANIMALESE_LOGFILE when set. Returns a closer for the log file.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	if lf := os.Getenv("ANIMALESE_LOGFILE"); lf != "" {
		f, err := os.OpenFile(lf, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("error setting up logging: %w", err)
		}
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
		return f.Close, nil
	}

	return func() error { return nil }, nil
}
