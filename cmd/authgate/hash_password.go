package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"authgate/cmd/security/password"
)

// NewHashPasswordCmd creates the hash-password subcommand.
func NewHashPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password read from stdin",
		Long: `Read one password from stdin and print its encoded hash using the
configured algorithm. Useful for seeding credential rows.`,
		Args: cobra.NoArgs,
		RunE: runHashPassword,
	}
	cmd.Flags().String("algorithm", "", "override AUTHGATE_PASSWORD_ALGORITHM (bcrypt|argon2id)")
	return cmd
}

func runHashPassword(cmd *cobra.Command, _ []string) error {
	cfg, err := password.FromEnv()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if alg, _ := cmd.Flags().GetString("algorithm"); strings.TrimSpace(alg) != "" {
		cfg.Algorithm = password.Algorithm(strings.ToLower(strings.TrimSpace(alg)))
	}

	hasher, err := password.NewHasher(cfg)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("algorithm", cfg.Algorithm).Wrap(err)
	}

	pw, err := promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return oops.Code("INPUT_INVALID").Wrap(err)
	}

	encoded, err := hasher.Hash(cmd.Context(), pw)
	if err != nil {
		if password.IsPolicyViolation(err) {
			return oops.Code("PASSWORD_POLICY").Wrap(err)
		}
		return oops.Code("HASH_FAILED").With("algorithm", cfg.Algorithm).Wrap(err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), encoded)
	return err
}

// promptPassword reads without echo when in is a terminal and falls back to
// readPassword for pipes and test buffers.
func promptPassword(in io.Reader, prompt io.Writer) (string, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) { // #nosec G115 -- file descriptors fit in int
		return readPassword(in)
	}
	_, _ = fmt.Fprint(prompt, "Password: ")
	b, err := term.ReadPassword(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
	_, _ = fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", errors.New("no password on stdin")
	}
	return string(b), nil
}

// readPassword returns the first line of r without its line terminator.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password on stdin")
	}
	return line, nil
}
