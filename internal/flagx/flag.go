// Package flagx lets several configuration layers read their own flags from
// os.Args without tripping over flags that belong to someone else.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs keeps only the flags listed in allowedFlags together with their
// values. Both "-f value" and "-f=value" forms are understood; a following
// token that starts with '-' is never consumed as a value.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, found := strings.Cut(arg, "="); found && strings.HasPrefix(arg, "-") {
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// LookupString returns the value of the last occurrence of any of the given
// string flags (names without the leading dash) in os.Args, or "" if none is set.
func LookupString(names ...string) string {
	dashed := make([]string, 0, len(names))
	for _, n := range names {
		dashed = append(dashed, "-"+n)
	}

	var value string
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		fs.StringVar(&value, n, "", "")
	}
	_ = fs.Parse(FilterArgs(os.Args[1:], dashed))

	return value
}

// JsonConfigFlags returns the path given with -c or -config.
func JsonConfigFlags() string {
	return LookupString("c", "config")
}

// EnvFileFlags returns the path given with -env, used to load a dotenv file.
func EnvFileFlags() string {
	return LookupString("env")
}
