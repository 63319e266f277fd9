// Command testsuite runs the numbered test cases of the suite in the current
// directory against the program named in test.program.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"testsuite/internal/app/runner"
	"testsuite/internal/domain/suite"
	"testsuite/internal/infra/docker"
	"testsuite/internal/infra/host"
	"testsuite/internal/logging"
	"testsuite/internal/ports"
	"testsuite/internal/report"
)

const (
	rootFlag          = "root"
	configFlag        = "config"
	recheckFlag       = "recheck"
	noCleanupFlag     = "nocleanup"
	runtimeFlag       = "runtime"
	dockerImageFlag   = "docker.image"
	dockerWorkdirFlag = "docker.workdir"
	shellFlag         = "shell"
	verbosityFlag     = "verbosity"
	noColorFlag       = "nocolor"
)

// appFlags builds a fresh flag set per app, since urfave/cli records
// environment values on the flag values themselves.
func appFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  rootFlag,
			Value: ".",
			Usage: "suite root directory",
		},
		&cli.StringFlag{
			Name:  configFlag,
			Value: suite.SuiteConfig,
			Usage: "TOML configuration file, relative to the suite root",
		},
		&cli.BoolFlag{
			Name:  recheckFlag,
			Usage: "only run cases that already have generated output (same as -r)",
		},
		&cli.BoolFlag{
			Name:  noCleanupFlag,
			Usage: "keep generated out, ret and err files of passing cases (same as -n)",
		},
		&cli.StringFlag{
			Name:    runtimeFlag,
			Value:   runtimeHost,
			Usage:   "where the program under test runs (host or docker)",
			EnvVars: []string{"TESTSUITE_RUNTIME"},
		},
		&cli.StringFlag{
			Name:    dockerImageFlag,
			Value:   defaultDockerImage,
			Usage:   "image for the docker runtime",
			EnvVars: []string{"TESTSUITE_DOCKER_IMAGE"},
		},
		&cli.StringFlag{
			Name:    dockerWorkdirFlag,
			Value:   docker.DefaultWorkdir,
			Usage:   "container path the suite root is mounted at",
			EnvVars: []string{"TESTSUITE_DOCKER_WORKDIR"},
		},
		&cli.StringFlag{
			Name:    shellFlag,
			Value:   host.DefaultShell,
			Usage:   "interpreter for hook and check scripts",
			EnvVars: []string{"TESTSUITE_SHELL"},
		},
		&cli.StringFlag{
			Name:    verbosityFlag,
			Value:   "warn",
			Usage:   "diagnostic log level (debug, info, warn, error)",
			EnvVars: []string{"TESTSUITE_VERBOSITY"},
		},
		&cli.BoolFlag{
			Name:  noColorFlag,
			Usage: "disable colored output",
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(color.Output, os.Stderr)
	if err := app.RunContext(ctx, reorderArgs(app.Flags, os.Args)); err != nil {
		code := 1
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		stop()
		os.Exit(code)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:            "testsuite",
		Usage:           "run numbered test case directories against a program",
		ArgsUsage:       "[clean|recheck|N...] [-rn]",
		HideHelpCommand: true,
		Writer:          stdout,
		ErrWriter:       stderr,
		Flags:           appFlags(),
		// Errors are turned into exit codes by main so tests can run the app.
		ExitErrHandler: func(*cli.Context, error) {},
		Action: func(c *cli.Context) error {
			return run(c, stdout, stderr)
		},
	}
}

func run(c *cli.Context, stdout, stderr io.Writer) error {
	if c.Bool(noColorFlag) {
		color.NoColor = true
	}
	console := report.NewConsole(stdout)

	root := c.String(rootFlag)
	cfg, undecoded, err := loadAppConfig(c, root)
	if err != nil {
		return cli.Exit(fmt.Sprintf("configuration: %v", err), 1)
	}
	level, err := logging.ParseLevel(cfg.Verbosity)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	logger := newLogger(stderr, level)
	for _, key := range undecoded {
		logger.Warn("unknown configuration key", "key", key)
	}
	logger.Debug("configuration", "root", root, "runtime", cfg.Runtime, "shell", cfg.Shell, "cleanup", cfg.Cleanup)

	layout := suite.Layout{Root: root}
	program, err := runner.LoadProgram(layout)
	if errors.Is(err, runner.ErrMissingProgram) {
		console.Error("Missing " + suite.SuiteProgram + " file!")
		return cli.Exit("", 1)
	}
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	cmd := parseCommandLine(c.Args().Slice())
	opts := cfg.options()
	if c.Bool(recheckFlag) || cmd.recheck {
		opts.Recheck = true
	}
	if c.Bool(noCleanupFlag) || cmd.noCleanup {
		opts.Cleanup = false
	}

	deps := runner.Deps{
		Scripts:  host.NewShell(cfg.Shell, stdout, stderr, logger),
		Reporter: console,
		Logger:   logger,
	}

	if cmd.verb == verbClean {
		return runner.NewService(layout, program, deps).Clean(c.Context)
	}

	launcher, err := newLauncher(cfg, logger)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer func() {
		if cerr := launcher.Close(); cerr != nil {
			logger.Warn("failed to close launcher", "err", cerr)
		}
	}()
	deps.Launcher = launcher

	if _, err := runner.NewService(layout, program, deps).Run(c.Context, cmd.plan, opts); err != nil {
		fmt.Fprintln(stdout)
		console.Error(err.Error())
		return cli.Exit("", 1)
	}
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	if f, ok := w.(*os.File); ok {
		return logging.New(f, level)
	}
	return logging.NewWithWriter(w, level, false)
}

func newLauncher(cfg appConfig, logger *slog.Logger) (ports.Launcher, error) {
	switch cfg.Runtime {
	case runtimeDocker:
		launcher, err := docker.New(docker.Config{
			Image:       cfg.Docker.Image,
			Workdir:     cfg.Docker.Workdir,
			SkipPull:    !cfg.Docker.Pull,
			MemoryBytes: cfg.Docker.Memory,
			NanoCPUs:    int64(cfg.Docker.CPUs * 1e9),
		}, logger)
		if err != nil {
			return nil, err
		}
		return launcher, nil
	default:
		return host.NewLauncher(logger), nil
	}
}

// reorderArgs keeps the flags urfave/cli defines in front and moves every
// positional word and letter cluster such as "-rn" behind a "--". Clusters
// then reach parseCommandLine wherever they were typed.
func reorderArgs(flags []cli.Flag, args []string) []string {
	if len(args) == 0 {
		return args
	}
	takesValue := make(map[string]bool)
	for _, f := range append([]cli.Flag{cli.HelpFlag}, flags...) {
		_, isBool := f.(*cli.BoolFlag)
		for _, name := range f.Names() {
			takesValue[name] = !isBool
		}
	}

	front := []string{args[0]}
	var rest []string
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			rest = append(rest, args[i+1:]...)
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			rest = append(rest, arg)
			continue
		}
		name, _, inline := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		valued, known := takesValue[name]
		if !known {
			if strings.HasPrefix(arg, "--") {
				// urfave/cli reports unknown long flags.
				front = append(front, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}
		front = append(front, arg)
		if valued && !inline && i+1 < len(args) {
			i++
			front = append(front, args[i])
		}
	}
	if len(rest) == 0 {
		return front
	}
	return append(append(front, "--"), rest...)
}

const (
	verbNone = iota
	verbClean
	verbRecheck
)

type commandLine struct {
	verb      int
	plan      suite.Plan
	recheck   bool
	noCleanup bool
}

// parseCommandLine interprets the positional arguments. Flag clusters such as
// "-rn" are honored wherever they appear; unknown letters are ignored. The
// first remaining word selects a verb, otherwise every integer joins the
// explicit case list.
func parseCommandLine(args []string) commandLine {
	var cmd commandLine
	var words []string
	for _, arg := range args {
		if len(arg) > 1 && strings.HasPrefix(arg, "-") {
			for _, r := range arg[1:] {
				switch r {
				case 'r':
					cmd.recheck = true
				case 'n':
					cmd.noCleanup = true
				}
			}
			continue
		}
		words = append(words, arg)
	}
	if len(words) == 0 {
		return cmd
	}

	switch words[0] {
	case "clean":
		cmd.verb = verbClean
	case "recheck":
		cmd.verb = verbRecheck
		cmd.recheck = true
	default:
		for _, word := range words {
			if n, err := strconv.Atoi(word); err == nil {
				cmd.plan.Cases = append(cmd.plan.Cases, n)
			}
		}
	}
	return cmd
}
