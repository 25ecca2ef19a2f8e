package main

import (
	"io"
	"os"

	pooppdf "github.com/alnah/go-pooppdf"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout    io.Writer
	Stderr    io.Writer
	NewEngine func(name string, cfg pooppdf.EngineConfig) (pooppdf.Engine, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		NewEngine: pooppdf.NewEngine,
	}
}
