package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgate/cmd/security/password"
)

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	for _, sub := range []string{"serve", "migrate", "hash-password"} {
		assert.Contains(t, output, sub, "Help missing %q command", sub)
	}
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantFlag string
	}{
		{
			name:     "separate value",
			args:     []string{"--config", "/path/to/authgate.yaml", "--help"},
			wantFlag: "/path/to/authgate.yaml",
		},
		{
			name:     "with equals",
			args:     []string{"--config=/etc/authgate.yaml", "--help"},
			wantFlag: "/etc/authgate.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile = ""

			cmd := NewRootCmd()
			cmd.SetOut(new(bytes.Buffer))
			cmd.SetArgs(tt.args)

			require.NoError(t, cmd.Execute())
			assert.Equal(t, tt.wantFlag, configFile)
		})
	}
}

func TestServeCommand_ExposesFlags(t *testing.T) {
	cmd := NewServeCmd()
	for _, name := range []string{"http-addr", "log-level", "log-format", "database-url", "auto-migrate", "metrics"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing --%s", name)
	}
}

func TestServeCommand_BadConfigFile(t *testing.T) {
	configFile = ""
	t.Cleanup(func() { configFile = "" })

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "serve"})

	err := cmd.Execute()
	require.Error(t, err)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "CONFIG_INVALID", oopsErr.Code())
}

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	configFile = ""
	t.Cleanup(func() { configFile = "" })

	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashPassword_Bcrypt(t *testing.T) {
	t.Setenv("AUTHGATE_BCRYPT_COST", "4")

	out, err := runRoot(t, "secret123\n", "hash-password")
	require.NoError(t, err)

	encoded := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(encoded, "$2a$04$"), encoded)

	ok, err := password.DefaultConfig().Verify(encoded, "secret123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHashPassword_Argon2idOverride(t *testing.T) {
	t.Setenv("AUTHGATE_ARGON2_MEMORY_KIB", "8192")
	t.Setenv("AUTHGATE_ARGON2_ITERATIONS", "1")

	out, err := runRoot(t, "secret123", "hash-password", "--algorithm", "argon2id")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "$argon2id$"), out)
}

func TestHashPassword_Errors(t *testing.T) {
	tests := []struct {
		name     string
		stdin    string
		args     []string
		wantCode string
	}{
		{name: "empty stdin", stdin: "", args: []string{"hash-password"}, wantCode: "INPUT_INVALID"},
		{name: "policy", stdin: strings.Repeat("x", 100) + "\n", args: []string{"hash-password"}, wantCode: "PASSWORD_POLICY"},
		{name: "unknown algorithm", stdin: "secret123\n", args: []string{"hash-password", "--algorithm", "md5"}, wantCode: "CONFIG_INVALID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runRoot(t, tt.stdin, tt.args...)
			require.Error(t, err)
			oopsErr, ok := oops.AsOops(err)
			require.True(t, ok, "expected oops error, got %T", err)
			assert.Equal(t, tt.wantCode, oopsErr.Code())
		})
	}
}

func TestReadPassword_StripsLineEnding(t *testing.T) {
	got, err := readPassword(strings.NewReader("p@ss word\r\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "p@ss word", got)
}

func TestPromptPassword_PipeIsNotATerminal(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	_, err = w.WriteString("from-a-pipe\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	prompt := new(bytes.Buffer)
	got, err := promptPassword(r, prompt)
	require.NoError(t, err)
	assert.Equal(t, "from-a-pipe", got)
	assert.Empty(t, prompt.String())
}
