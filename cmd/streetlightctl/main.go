// streetlightctl is a command-line client for the streetlight complaint
// service. It keeps the signed-in session in the user config directory so
// later commands run as that user until logout.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/spec-kit/streetlight-service/internal/client"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type globals struct {
	server    string
	configDir string
	timeout   time.Duration
}

func run(args []string, out io.Writer) error {
	var g globals
	flagSet := pflag.NewFlagSet("streetlightctl", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(out)
	flagSet.StringVar(&g.server, "server", envOr("STREETLIGHT_URL", "http://localhost:8080"), "service base URL")
	flagSet.StringVar(&g.configDir, "config-dir", "", "directory holding the session file (default: user config dir)")
	flagSet.DurationVar(&g.timeout, "timeout", 10*time.Second, "per-request timeout")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printUsage(out, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help || flagSet.NArg() == 0 {
		printUsage(out, flagSet)
		return nil
	}

	dir := g.configDir
	if dir == "" {
		var err error
		if dir, err = client.DefaultSessionDir(); err != nil {
			return err
		}
	}

	env := &commandEnv{
		out:     out,
		server:  g.server,
		store:   client.NewFileStore(dir),
		timeout: g.timeout,
	}

	name, rest := flagSet.Arg(0), flagSet.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (run with --help)", name)
	}
	return cmd.run(env, rest)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printUsage(out io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintln(out, "Usage: streetlightctl [global flags] <command> [flags]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(out, "  %-14s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Global flags:")
	fmt.Fprint(out, flagSet.FlagUsages())
}
