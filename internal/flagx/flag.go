// Package flagx lets several packages read their own flags from one command
// line without a shared flag.FlagSet.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// ConfigEnvVar names the environment variable consulted when no -c/-config
// flag is given.
const ConfigEnvVar = "POSQUEUE_CONFIG"

// FilterArgs returns only the allowed flags (and their values) from args.
//
// Supported formats:
//  1. Flag and value as separate arguments:  -c conf.json
//  2. Flag and value combined with '=':      --config=conf.json
//
// A token that starts with '-' is never consumed as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigFilePath extracts the config file path from -c or -config in args.
// When neither flag is present it falls back to $POSQUEUE_CONFIG, and
// finally to the empty string.
func ConfigFilePath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	if path == "" {
		path = os.Getenv(ConfigEnvVar)
	}
	return path
}

// JsonConfigFlags is ConfigFilePath applied to os.Args.
func JsonConfigFlags() string {
	return ConfigFilePath(os.Args[1:])
}
