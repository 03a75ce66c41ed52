package main

import (
	"fmt"

	"github.com/alnah/go-gfmrender/internal/yamlutil"
)

// configHeader heads the dumped configuration.
const configHeader = `Effective go-gfmrender configuration.
Precedence: flags > config file > GFMRENDER_* env > defaults.
Save as ~/.config/go-gfmrender/<name>.yaml and select with --config <name>.`

// runConfig prints the effective configuration as YAML, after the config
// file, environment and flags are applied. The output loads back with
// --config.
func runConfig(args []string, env *Environment) error {
	flags, _, err := parseCommandFlags("config", args, groupRenderer|groupPage|groupServe, printConfigUsage, env.Stderr)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(flags, env)
	if err != nil {
		return err
	}

	out, err := yamlutil.MarshalWithHeader(cfg, configHeader)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(out)
	return err
}
