package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"

	gfmrender "github.com/alnah/go-gfmrender"
	"github.com/alnah/go-gfmrender/internal/assets"
	"github.com/alnah/go-gfmrender/internal/config"
	"github.com/alnah/go-gfmrender/internal/hints"
)

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, env *Environment) string {
	switch {
	case errors.Is(err, gfmrender.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, gfmrender.ErrCommandNotFound):
		command := gfmrender.DefaultDiagramCommand
		if env.Config != nil && env.Config.Diagram.Command != "" {
			command = env.Config.Diagram.Command
		}
		return hints.ForDiagramCommand(command)
	case errors.Is(err, gfmrender.ErrUnknownTheme):
		return hints.ForThemeNotFound(gfmrender.ThemeNames())
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.StyleNames())
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(userConfigPaths())
	case errors.Is(err, syscall.EADDRINUSE):
		return hints.ForAddrInUse()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, ErrWriteOutput) && errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}

// userConfigPaths lists where a default config would be looked up.
func userConfigPaths() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, "go-gfmrender", "default.yaml")}
}
