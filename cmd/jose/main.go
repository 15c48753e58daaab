// Command jose signs, verifies, encrypts, decrypts and inspects JOSE objects
// and manages JSON Web Keys.
//
//	jose sign [--alg HS256] [--kid id] [--jwt] [payload]
//	jose verify [--jwt] [--iss issuer] [--aud audience] [token]
//	jose encrypt [--enc A256GCM] [--kid id] [plaintext]
//	jose decrypt [token]
//	jose inspect [token]
//	jose thumbprint [--hash SHA-256] [file]
//	jose keyset [--public] [file|url ...]
//	jose keygen [--alg HS256] [--kid id] [--set]
//
// A missing positional argument is read from standard input. Secrets and
// the other shared settings come from flags, JOSE_ environment variables or
// a jose.yaml file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"
	"github.com/trustkit/jose/pkg/errcode"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// env is what a command runs against.
type env struct {
	ctx    context.Context
	config *Config
	logger *slog.Logger
	flags  *pflag.FlagSet
	stdin  io.Reader
	stdout io.Writer
}

type command struct {
	usage string
	flags func(*pflag.FlagSet)
	run   func(*env) error
}

var commands = map[string]command{
	"sign":       signCommand,
	"verify":     verifyCommand,
	"encrypt":    encryptCommand,
	"decrypt":    decryptCommand,
	"inspect":    inspectCommand,
	"thumbprint": thumbprintCommand,
	"keyset":     keysetCommand,
	"keygen":     keygenCommand,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command named by the first argument and returns the
// process exit code: 0 on success, 1 on failure and 2 on a usage error.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "jose: unknown command %q\n\n", name)
		usage(stderr)
		return 2
	}

	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.SetOutput(stderr)
	globalFlags(flags)
	if cmd.flags != nil {
		cmd.flags(flags)
	}
	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	config, err := LoadConfig(flags)
	if err != nil {
		fmt.Fprintf(stderr, "jose: %v\n", err)
		return 2
	}
	logger, err := config.Logger(stderr)
	if err != nil {
		fmt.Fprintf(stderr, "jose: %v\n", err)
		return 2
	}

	e := &env{
		ctx:    ctx,
		config: config,
		logger: logger,
		flags:  flags,
		stdin:  stdin,
		stdout: stdout,
	}
	if err := cmd.run(e); err != nil {
		logger.Error(name+" failed", "error", errcode.Message(err, config.Tag()))
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	names := maps.Keys(commands)
	slices.Sort(names)

	fmt.Fprintln(w, "usage: jose <command> [flags] [argument]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-11s %s\n", name, commands[name].usage)
	}
}

// input returns the first positional argument, or standard input with
// surrounding whitespace trimmed.
func (e *env) input() (string, error) {
	if arg := e.flags.Arg(0); arg != "" {
		return arg, nil
	}
	b, err := io.ReadAll(e.stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read standard input: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
