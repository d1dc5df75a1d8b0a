package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"

	"github.com/cruciblehq/monopack/internal"
	"github.com/cruciblehq/monopack/internal/dist"
	"github.com/cruciblehq/monopack/internal/manifest"
	"github.com/cruciblehq/monopack/internal/paths"
)

// Represents the root command for the monopack tool.
var RootCmd struct {
	Quiet   bool `short:"q" help:"Suppress informational output."`
	Verbose bool `short:"v" help:"Enable verbose output."`
	Debug   bool `short:"d" help:"Enable debug output."`

	ManifestPath string `short:"m" default:"${manifest_default}" help:"Path to the workspace manifest." placeholder:"PATH"`
	Force       bool   `short:"f" help:"Override fingerprint mismatches and push conflicts."`
	Release     bool   `help:"Use release-mode binaries."`
	Concurrency int    `short:"j" default:"4" help:"Number of targets processed in parallel."`
	Output      string `short:"o" help:"Override the artifact output directory." placeholder:"DIR"`
	BinDir      string `name:"bin-dir" help:"Override the built-binaries directory." placeholder:"DIR"`

	Build   BuildCmd   `cmd:"" help:"Assemble every target's artifact locally."`
	Check   CheckCmd   `cmd:"" help:"Verify dependency digests without building."`
	DryRun  DryRunCmd  `cmd:"" name:"dry-run" help:"Build and report what a push would do."`
	Push    PushCmd    `cmd:"" help:"Build and upload every target's artifact."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Packages and distributes monorepo build artifacts.\n\nAssembles Docker images and AWS Lambda archives from built binaries, gated on the manifest's dependency digests."),
		kong.UsageOnError(),
		kong.Vars{
			"version":          internal.VersionString(),
			"manifest_default": manifest.DefaultFileName,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelWarn
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:     level,
		AddSource: verbose,
		NoColor:   !isatty(os.Stderr),
	})

	slog.SetDefault(slog.New(handler).WithGroup(internal.Name))
}

// Whether the given file is an interactive terminal.
func isatty(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// Loads the manifest named by the root flags.
func loadManifest() (*manifest.Manifest, error) {
	return manifest.Load(RootCmd.ManifestPath)
}

// Builds runner options from the root flags and the loaded manifest.
func runnerOptions(m *manifest.Manifest) dist.Options {
	mode := dist.Debug
	if RootCmd.Release {
		mode = dist.Release
	}

	binDir := RootCmd.BinDir
	if binDir == "" {
		binDir = filepath.Join(m.Dir, "target")
	}

	return dist.Options{
		Mode:        mode,
		Force:       RootCmd.Force,
		BinDir:      binDir,
		Output:      RootCmd.Output,
		Concurrency: RootCmd.Concurrency,
	}
}

// Builds runner options for commands whose artifacts are the
// deliverable: without an explicit override, those materialize next to
// the manifest rather than in scratch space.
func deliverableOptions(m *manifest.Manifest) dist.Options {
	opts := runnerOptions(m)
	if opts.Output == "" {
		opts.Output = paths.OutputRoot(m.Dir)
	}
	return opts
}

// Renders a summary and converts its worst result into the exit error.
func report(summary *dist.Summary) error {
	if err := summary.Render(os.Stdout); err != nil {
		return err
	}
	if !summary.OK() {
		return ErrFailedTargets
	}
	return nil
}
