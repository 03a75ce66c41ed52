package main

import (
	"fmt"
	"strings"

	gfmrender "github.com/alnah/go-gfmrender"
)

// runCSS prints the highlight stylesheet for the configured theme, or the
// theme names with --list.
func runCSS(args []string, env *Environment) error {
	flags, _, err := parseCommandFlags("css", args, groupRenderer|groupList, printCSSUsage, env.Stderr)
	if err != nil {
		return err
	}

	if flags.list {
		fmt.Fprintln(env.Stdout, strings.Join(gfmrender.ThemeNames(), "\n"))
		return nil
	}

	cfg, err := resolveConfig(flags, env)
	if err != nil {
		return err
	}

	css, err := themeCSS(cfg.Theme)
	if err != nil {
		return err
	}
	fmt.Fprint(env.Stdout, css)
	return nil
}
