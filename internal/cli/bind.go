package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// bindEnvOverrides ties each global flag to a STRIDE_-prefixed environment
// variable through viper, completing the cobra+viper pairing the teacher's
// go.mod declared but never wired up: STRIDE_CWD, STRIDE_DRY_RUN, etc. take
// effect whenever the corresponding flag is left at its pflag default.
func bindEnvOverrides(flags *pflag.FlagSet) {
	cliViper.SetEnvPrefix("STRIDE")
	cliViper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	cliViper.AutomaticEnv()

	for _, name := range []string{"file", "cwd", "list", "dry-run", "env-file", "format"} {
		_ = cliViper.BindPFlag(name, flags.Lookup(name))
	}
}

// applyEnvOverrides copies viper-resolved values into the bound flag
// variables wherever the user did not pass the flag explicitly, so
// STRIDE_CWD etc. behave as defaults the flag can still override.
func applyEnvOverrides(flags *pflag.FlagSet) {
	if !flags.Changed("file") {
		flagFile = cliViper.GetString("file")
	}
	if !flags.Changed("cwd") {
		flagCwd = cliViper.GetString("cwd")
	}
	if !flags.Changed("list") {
		flagList = cliViper.GetBool("list")
	}
	if !flags.Changed("dry-run") {
		flagDryRun = cliViper.GetBool("dry-run")
	}
	if !flags.Changed("env-file") {
		flagEnvFile = cliViper.GetString("env-file")
	}
	if !flags.Changed("format") {
		if v := cliViper.GetString("format"); v != "" {
			flagFormat = v
		}
	}
}
