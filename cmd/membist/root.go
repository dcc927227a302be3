package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/membist/bist"
)

var rootCmd = &cobra.Command{
	Use:   "membist",
	Short: "Test a simulated memory with a BIST generator and checker.",
	Long: `membist writes a generated or replayed sequence of words into a ` +
		`simulated memory, reads it back and counts the words that differ. ` +
		`Flag defaults can be set with MEMBIST_* environment variables, ` +
		`also read from a .env file in the working directory.`,
	SilenceUsage: true,
}

// Execute runs the command line and exits through atexit so that recorders
// are flushed.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Ignoring .env: %v\n", err)
	}
}

// envKey turns a flag name into its environment variable.
func envKey(flag string) string {
	return "MEMBIST_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

func envString(flag, def string) string {
	if v, ok := os.LookupEnv(envKey(flag)); ok {
		return v
	}

	return def
}

func envInt(flag string, def int) int {
	v, ok := os.LookupEnv(envKey(flag))
	if !ok {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ignoring %s=%q: %v\n", envKey(flag), v, err)
		return def
	}

	return n
}

func envBool(flag string, def bool) bool {
	v, ok := os.LookupEnv(envKey(flag))
	if !ok {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ignoring %s=%q: %v\n", envKey(flag), v, err)
		return def
	}

	return b
}

// parseUint reads a flag value the way pattern files are read.
func parseUint(flag, s string) (uint64, error) {
	n, err := bist.ParseUint(s)
	if err != nil {
		return 0, fmt.Errorf("--%s %q: %w", flag, s, err)
	}

	return n, nil
}
