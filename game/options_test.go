package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStartArgs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		args     string
		expected StartOptions
	}{
		{
			name:     "empty",
			args:     "",
			expected: StartOptions{},
		},
		{
			name: "num and hints",
			args: "--num 20 --hints 5",
			expected: StartOptions{
				Num: 20, NumSet: true,
				Hints: 5, HintsSet: true,
			},
		},
		{
			name: "flags",
			args: "--shuffle --no-hints --restart --random-category",
			expected: StartOptions{
				Shuffle: true, NoHints: true,
				Restart: true, RestartSet: true,
				RandomCategory: true,
			},
		},
		{
			name: "timeout",
			args: "--timeout 90",
			expected: StartOptions{
				TimeoutSec: 90, TimeoutSet: true,
			},
		},
		{
			name:     "zero hints is an explicit choice",
			args:     "--hints 0",
			expected: StartOptions{Hints: 0, HintsSet: true},
		},
		{
			name:     "categories split on commas",
			args:     "state capitals, world history,784",
			expected: StartOptions{Categories: []string{"state capitals", "world history", "784"}},
		},
		{
			name: "mixed flags and categories",
			args: "--num 10 --shuffle 784, 112",
			expected: StartOptions{
				Num: 10, NumSet: true, Shuffle: true,
				Categories: []string{"784", "112"},
			},
		},
		{
			name:     "missing int argument ignored",
			args:     "--num",
			expected: StartOptions{},
		},
		{
			name:     "non-numeric int argument becomes category",
			args:     "--num lots",
			expected: StartOptions{Categories: []string{"lots"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseStartArgs(strings.Fields(tc.args)))
		})
	}
}
