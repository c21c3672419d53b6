package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmmcquay/nogo/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "nogo.yaml", "game:\n  maxDimension: 50\nlogging:\n  level: error\n")
	badCfg := writeFile(t, dir, "bad.yaml", "logging:\n  format: xml\n")
	corrupt := writeFile(t, dir, "corrupt.txt", "2 2 0 0 0 0 0 0 0\n..\n")
	saved := writeFile(t, dir, "saved.txt", "1 3 1 0 0 0 0 0 0\nX..\n")

	tests := []struct {
		name       string
		argv       []string
		stdin      string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "human game to a capture",
			argv:       []string{"-config", cfgPath, "h", "h", "1", "3"},
			stdin:      "0 0\n0 1\n",
			wantCode:   cli.ExitOK,
			wantStdout: "Player O wins!\n",
		},
		{
			name:       "resumed game",
			argv:       []string{"-config", cfgPath, "h", "h", saved},
			stdin:      "0 1\n",
			wantCode:   cli.ExitOK,
			wantStdout: "|.O.|\n\\---/\nPlayer O wins!\n",
		},
		{
			name:       "quit",
			argv:       []string{"-config", cfgPath, "h", "h", "3", "3"},
			stdin:      "q\n",
			wantCode:   cli.ExitOK,
			wantStdout: "Player X> ",
		},
		{
			name:       "usage",
			argv:       []string{"-config", cfgPath, "c"},
			wantCode:   cli.ExitUsage,
			wantStderr: cli.Usage + "\n",
		},
		{
			name:       "player type",
			argv:       []string{"-config", cfgPath, "c", "robot", "7", "7"},
			wantCode:   cli.ExitPlayerType,
			wantStderr: "Invalid type\n",
		},
		{
			name:       "dimension over the configured limit",
			argv:       []string{"-config", cfgPath, "c", "c", "51", "7"},
			wantCode:   cli.ExitDimensions,
			wantStderr: "Invalid board dimension\n",
		},
		{
			name:       "missing save file",
			argv:       []string{"-config", cfgPath, "h", "c", filepath.Join(dir, "absent.txt")},
			wantCode:   cli.ExitUnreadableFile,
			wantStderr: "Unable to open file\n",
		},
		{
			name:       "corrupt save file",
			argv:       []string{"-config", cfgPath, "h", "c", corrupt},
			wantCode:   cli.ExitCorruptFile,
			wantStderr: "Incorrect file contents\n",
		},
		{
			name:     "bad config",
			argv:     []string{"-config", badCfg, "c", "c", "7", "7"},
			wantCode: cli.ExitConfig,
		},
		{
			name:       "version",
			argv:       []string{"-config", cfgPath, "-version"},
			wantCode:   cli.ExitOK,
			wantStdout: "nogo version 0.1.0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.argv, strings.NewReader(tt.stdin), &stdout, &stderr)
			assert.Equal(t, tt.wantCode, code)
			if tt.wantStdout != "" {
				assert.Contains(t, stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" {
				assert.Equal(t, tt.wantStderr, stderr.String())
			}
		})
	}
}

func TestRunBadConfigMessage(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "logging:\n  level: loud\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", path, "h", "h", "3", "3"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, cli.ExitConfig, code)
	assert.Contains(t, stderr.String(), "invalid configuration")
	assert.Empty(t, stdout.String())
}

func TestRunUnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-frobnicate"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, cli.ExitUsage, code)
	assert.Contains(t, stderr.String(), cli.Usage)
}
