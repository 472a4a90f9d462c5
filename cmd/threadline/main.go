// Package main provides the threadline command: split long text into a
// thread, publish it, and read or reply to posts through a browser session.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/entrhq/threadline/pkg/config"
	"github.com/entrhq/threadline/pkg/logging"
)

const version = "0.1.0"

// CLIConfig holds global command-line configuration
type CLIConfig struct {
	ConfigFile  string
	Headed      bool
	Artifacts   string
	ShowVersion bool
}

var errUsage = errors.New("usage")

func main() {
	cli, args := parseFlags(os.Args[1:])

	if cli.ShowVersion {
		fmt.Printf("threadline v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down gracefully...")
		cancel()
	}()

	err := run(ctx, cli, args, os.Stdin, os.Stdout)
	cancel()
	if err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "threadline: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (*CLIConfig, []string) {
	cli := &CLIConfig{}
	fs := flag.NewFlagSet("threadline", flag.ExitOnError)

	fs.StringVar(&cli.ConfigFile, "config", os.Getenv("THREADLINE_CONFIG"), "Path to configuration file (YAML)")
	fs.BoolVar(&cli.Headed, "headed", false, "Show the browser window")
	fs.StringVar(&cli.Artifacts, "screenshots", "", "Directory for debugging screenshots (overrides config)")
	fs.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "threadline - post threads and replies from the command line\n\n")
		fmt.Fprintf(out, "Usage: threadline [options] <command> [command options]\n\n")
		fmt.Fprintf(out, "Commands:\n")
		fmt.Fprintf(out, "  split   Preview how text is split into posts (no browser)\n")
		fmt.Fprintf(out, "  login   Log in and save the session\n")
		fmt.Fprintf(out, "  post    Publish text as a post or thread\n")
		fmt.Fprintf(out, "  latest  Show an account's latest post\n")
		fmt.Fprintf(out, "  reply   Reply to a post\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  threadline split -copy essay.txt\n")
		fmt.Fprintf(out, "  threadline post essay.txt\n")
		fmt.Fprintf(out, "  threadline reply -account someone -draft\n")
	}

	_ = fs.Parse(args)
	return cli, fs.Args()
}

// run dispatches a subcommand.
func run(ctx context.Context, cli *CLIConfig, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "threadline: a command is required (split, login, post, latest, reply)")
		return errUsage
	}

	cfg, err := config.Load(cli.ConfigFile)
	if err != nil {
		return err
	}
	if cli.Headed {
		cfg.Browser.Headless = false
	}
	if cli.Artifacts != "" {
		cfg.Browser.ArtifactsDir = cli.Artifacts
	}

	cmd, rest := args[0], args[1:]
	if cmd == "split" {
		return runSplit(cfg, rest, stdin, stdout)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		logger.Warnf("File logging unavailable, using stderr fallback: %v", err)
	}
	defer logger.Close()
	logger.Infof("threadline v%s: %s %s", version, cmd, strings.Join(rest, " "))

	a := &app{cfg: cfg, logger: logger, stdin: stdin, stdout: stdout}
	switch cmd {
	case "login":
		return a.runLogin(ctx, rest)
	case "post":
		return a.runPost(ctx, rest)
	case "latest":
		return a.runLatest(ctx, rest)
	case "reply":
		return a.runReply(ctx, rest)
	default:
		fmt.Fprintf(os.Stderr, "threadline: unknown command %q\n", cmd)
		return errUsage
	}
}

// newLogger always returns a usable logger; on error it writes to stderr.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if cfg.Logging.Dir != "" {
		return logging.NewLoggerIn(cfg.Logging.Dir, "threadline")
	}
	return logging.NewLogger("threadline")
}

// readContent returns the text named by args: a file path, "-" for stdin,
// or stdin when no argument is given.
func readContent(args []string, stdin io.Reader) (string, error) {
	if len(args) > 1 {
		return "", fmt.Errorf("expected at most one input file, got %d", len(args))
	}

	var data []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("input is empty")
	}
	return content, nil
}
