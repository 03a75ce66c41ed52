package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-gfmrender/internal/config"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration, and the enhancer pool factory.
type Environment struct {
	Now     func() time.Time
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config // Set once options are resolved, read by hints
	NewPool PoolFactory
}

// DefaultEnv returns the production environment: real streams and
// browser-backed enhancers.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  config.DefaultConfig(),
		NewPool: newEnhancerPool,
	}
}
