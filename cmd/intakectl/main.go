// Command intakectl talks to a running loan intake server: it quotes EMIs,
// submits applications and runs the admin operations.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bibbank/loanintake/pkg/intakeclient"
	"github.com/bibbank/loanintake/pkg/tlsutil"
)

const defaultServer = "http://localhost:8087"

// errUsage marks a bad invocation. The usage text has already been printed.
var errUsage = errors.New("usage error")

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"quote":  {"compute an EMI quote", runQuote},
	"apply":  {"fill in and submit a loan application", runApply},
	"list":   {"list stored applications (admin)", runList},
	"delete": {"delete one application or one day of applications (admin)", runDelete},
	"export": {"download one day of applications as xlsx or csv", runExport},
	"watch":  {"print application events from kafka", runWatch},
	"certs":  {"generate a development CA and server certificate", runCerts},
}

// app holds the global flags and the output streams shared by every command.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	getenv   func(string) string
	server   string
	caFile   string
	insecure bool
	timeout  time.Duration
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "intakectl:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	a := &app{stdout: stdout, stderr: stderr, getenv: getenv}

	fs := pflag.NewFlagSet("intakectl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.StringVar(&a.server, "server", envOr(getenv, "INTAKE_SERVER", defaultServer), "intake server base URL (env INTAKE_SERVER)")
	fs.StringVar(&a.caFile, "ca-file", "", "PEM CA certificate trusted for https servers")
	fs.BoolVar(&a.insecure, "insecure", false, "skip TLS certificate verification")
	fs.DurationVar(&a.timeout, "timeout", 30*time.Second, "per-request timeout")
	fs.Usage = func() { usage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	if fs.NArg() == 0 {
		usage(stderr, fs)
		return errUsage
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		usage(stderr, fs)
		return errUsage
	}
	return cmd.run(ctx, a, fs.Args()[1:])
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: intakectl [global flags] <command> [flags]")
	fmt.Fprintln(w, "\nCommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w, "\nGlobal flags:")
	fmt.Fprint(w, fs.FlagUsages())
}

// newFlagSet creates a subcommand flag set that reports errors to stderr.
func (a *app) newFlagSet(name, args string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: intakectl %s %s\n\nFlags:\n", name, args)
		fmt.Fprint(a.stderr, fs.FlagUsages())
	}
	return fs
}

// parse parses subcommand flags. Help is reported as errUsage so the command
// stops without running.
func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

// client builds an API client honouring --ca-file and --insecure.
func (a *app) client() (*intakeclient.Client, error) {
	hc := &http.Client{Timeout: a.timeout}
	if a.caFile != "" || a.insecure {
		tlsCfg, err := tlsutil.ClientConfig(a.caFile, a.insecure)
		if err != nil {
			return nil, err
		}
		hc.Transport = &http.Transport{TLSClientConfig: tlsCfg}
	}
	return intakeclient.New(a.server, intakeclient.WithHTTPClient(hc))
}

// adminClient logs in with --password or INTAKE_ADMIN_PASSWORD.
func (a *app) adminClient(ctx context.Context, password string) (*intakeclient.Client, error) {
	if password == "" {
		password = a.getenv("INTAKE_ADMIN_PASSWORD")
	}
	if password == "" {
		return nil, errors.New("admin password required: pass --password or set INTAKE_ADMIN_PASSWORD")
	}
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	if _, err := c.Login(ctx, password); err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}
	return c, nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}
