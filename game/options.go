package game

import (
	"strconv"
	"strings"
)

// StartOptions carries the per-game overrides parsed from a start command.
// The *Set flags distinguish "not given" from a zero value.
type StartOptions struct {
	Num            int
	NumSet         bool
	Hints          int
	HintsSet       bool
	TimeoutSec     int
	TimeoutSet     bool
	Shuffle        bool
	NoHints        bool
	Restart        bool
	RestartSet     bool
	RandomCategory bool
	Categories     []string
}

// ParseStartArgs parses the tokens following a start command:
//
//	start [--num N] [--hints N] [--timeout N] [--shuffle] [--no-hints]
//	      [--restart] [--random-category] [category[, category ...]]
//
// Leftover tokens are joined and split on commas as category selectors.
func ParseStartArgs(args []string) StartOptions {
	var opts StartOptions
	var leftover []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--num":
			if n, ok := intArg(args, &i); ok {
				opts.Num = n
				opts.NumSet = true
			}
		case "--hints":
			if n, ok := intArg(args, &i); ok {
				opts.Hints = n
				opts.HintsSet = true
			}
		case "--timeout":
			if n, ok := intArg(args, &i); ok {
				opts.TimeoutSec = n
				opts.TimeoutSet = true
			}
		case "--shuffle":
			opts.Shuffle = true
		case "--no-hints":
			opts.NoHints = true
		case "--restart":
			opts.Restart = true
			opts.RestartSet = true
		case "--random-category":
			opts.RandomCategory = true
		default:
			leftover = append(leftover, args[i])
		}
	}

	if len(leftover) > 0 {
		for _, part := range strings.Split(strings.Join(leftover, " "), ",") {
			if part = strings.TrimSpace(part); part != "" {
				opts.Categories = append(opts.Categories, part)
			}
		}
	}
	return opts
}

func intArg(args []string, i *int) (int, bool) {
	if *i+1 >= len(args) {
		return 0, false
	}
	n, err := strconv.Atoi(args[*i+1])
	if err != nil {
		return 0, false
	}
	*i++
	return n, true
}
