// Package cmd provides the modinit command implementation.
package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/xymatic/modinit/internal/config"
	oerrors "github.com/xymatic/modinit/internal/errors"
	"github.com/xymatic/modinit/internal/output"
	"github.com/xymatic/modinit/internal/params"
	"github.com/xymatic/modinit/internal/templates"
	"github.com/xymatic/modinit/internal/version"
)

// rootOptions carries flags and the configuration resolved in
// PersistentPreRunE into the run.
type rootOptions struct {
	global  GlobalFlags
	answers AnswerFlags
	emit    EmitFlags

	// Populated during PersistentPreRunE.
	cfg        *config.Config
	configPath config.ResolvedValue

	// newPrompter builds the prompter used when the session is interactive.
	newPrompter func(cmd *cobra.Command) params.Prompter
	// interactive reports whether prompting is possible.
	interactive func() bool
}

// NewRootCmd creates the root command for the modinit CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{
		newPrompter: func(cmd *cobra.Command) params.Prompter {
			return &params.FormPrompter{Output: cmd.ErrOrStderr()}
		},
		interactive: output.IsInteractive,
	})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modinit",
		Short: "Scaffold a new module in the current directory",
		Long: `modinit scaffolds a new module into the current directory.

It asks for the module name, description, tags, and stability, then renders
the template tree into the working directory. {{placeholders}} in file
contents and paths are replaced with the collected values. Existing files
are never overwritten.

Examples:
  # Answer the prompts interactively
  modinit

  # Scaffold under an organization without prompting
  modinit --yes -u my-org --name my-mod --tags "cli tool"

  # Show what would be written
  modinit --yes --dry-run

  # Use a custom template directory
  modinit --templates ~/templates/node`,
		Args:          cobra.NoArgs,
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.initialize(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}

	opts.global.AddTo(rootCmd)
	opts.answers.AddTo(rootCmd)
	opts.emit.AddTo(rootCmd)

	rootCmd.SetVersionTemplate(version.Get().String() + "\n")

	return rootCmd
}

// initialize sets up logging and loads configuration.
func (o *rootOptions) initialize(cmd *cobra.Command) error {
	configPath, err := config.ResolveConfigPath(o.global.Config)
	if err != nil {
		return reportError("resolving config path", err)
	}
	o.configPath = configPath

	loader := config.NewLoader()
	cfg, err := loader.LoadWithDefaults(configPath.Value)
	if err != nil {
		return reportError("loading config", oerrors.NewConfigError(err.Error(), configPath.Value,
			"Check the YAML syntax of the config file."))
	}
	o.cfg = cfg

	// Timestamps: flag (if explicitly set) > config > default (nil = true)
	logCfg := output.LogConfig{Verbose: o.global.Verbose}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(o.global.Timestamps)
	} else if cfg.Log.Timestamps != nil {
		logCfg.Timestamps = cfg.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	info := version.Get()
	output.Debug("modinit started", "version", info.Version, "go", info.GoVersion)
	config.LogResolvedValues([]config.ResolvedValue{configPath})
	if loader.ConfigFileUsed() == "" && configPath.Source != config.SourceDefault {
		output.Warn("config file not found, using defaults", "path", configPath.Value)
	}

	return nil
}

// run collects parameters and emits the template tree into the working directory.
func (o *rootOptions) run(cmd *cobra.Command) error {
	targetDir, err := os.Getwd()
	if err != nil {
		return reportError("resolving working directory", err)
	}

	var prompter params.Prompter
	if !o.answers.Yes && o.interactive != nil && o.interactive() {
		prompter = o.newPrompter(cmd)
	}

	orgSet := cmd.Flags().Changed("user")
	p, err := params.Collect(params.CollectOptions{
		Identity:   o.cfg.User,
		OrgFlag:    o.answers.Org,
		OrgFlagSet: orgSet,
		Answers:    o.answers.Answers(targetDir),
		Prompter:   prompter,
	})
	if err != nil {
		return reportError("collecting module parameters", err)
	}

	if orgSet {
		if org, ok := templates.Lookup(p, "org.name"); ok {
			output.Info(fmt.Sprintf("creating module under organization %s", output.StyleNoun.Render(fmt.Sprint(org))))
		}
	}

	if o.emit.PrintParams {
		return printParams(cmd, p)
	}

	source, err := o.resolveSource()
	if err != nil {
		return reportError("opening templates", err)
	}
	if o.global.Verbose {
		if files, err := templates.ListTemplateFiles(source); err == nil {
			output.Debug("template files", "count", len(files), "files", strings.Join(files, ", "))
		}
	}

	emitter := templates.NewEmitter(templates.EmitOptions{
		Source:      source,
		Target:      afero.NewOsFs(),
		TargetDir:   targetDir,
		Params:      p,
		Policy:      o.resolvePolicy(cmd),
		Logger:      output.Logger(),
		Concurrency: o.resolveConcurrency(cmd),
		DryRun:      o.emit.DryRun,
	})

	var result *templates.Result
	err = output.RunWithSpinner(cmd.Context(), "Generating files", func(ctx context.Context) error {
		var emitErr error
		result, emitErr = emitter.Emit(ctx)
		return emitErr
	})
	if err != nil {
		return reportError("generating files", err)
	}

	printSummary(cmd, result)
	return nil
}

// resolveSource opens the template tree: flag > env > config > built-in skeleton.
func (o *rootOptions) resolveSource() (fs.FS, error) {
	resolved := config.Resolve(config.ResolveOptions{
		Key:         "templates",
		FlagValue:   o.emit.Templates,
		EnvVar:      "MODINIT_TEMPLATES",
		ConfigValue: o.cfg.Templates,
	})
	config.LogResolvedValues([]config.ResolvedValue{resolved})

	dir := resolved.Value
	if dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return nil, err
		}
		dir = expanded
	}

	return templates.OpenSource(dir)
}

// resolvePolicy returns the missing-key policy: flag (if set) > config.
func (o *rootOptions) resolvePolicy(cmd *cobra.Command) templates.MissingKeyPolicy {
	strict := o.cfg.Strict
	if cmd.Flags().Changed("strict") {
		strict = o.emit.Strict
	}
	if strict {
		return templates.MissingError
	}
	return templates.MissingEmpty
}

// resolveConcurrency returns the emission concurrency: flag (if positive) > config.
func (o *rootOptions) resolveConcurrency(cmd *cobra.Command) int {
	if cmd.Flags().Changed("concurrency") && o.emit.Concurrency > 0 {
		return o.emit.Concurrency
	}
	return o.cfg.Concurrency
}

func printParams(cmd *cobra.Command, p templates.Params) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any(p)); err != nil {
		return reportError("printing parameters", err)
	}
	return enc.Close()
}

func printSummary(cmd *cobra.Command, result *templates.Result) {
	out := cmd.OutOrStdout()

	verb := "Created"
	if result.DryRun {
		verb = "Would create"
	}
	msg := fmt.Sprintf("%s %d files in %s", verb, len(result.Created), result.TargetDir)
	if len(result.Skipped) > 0 {
		msg += fmt.Sprintf(" (%d skipped)", len(result.Skipped))
	}
	fmt.Fprintln(out, output.FormatCheckmark(msg))

	// Dry runs list every decision, including excluded files.
	if result.DryRun {
		fmt.Fprintln(out)
		for _, rel := range result.Created {
			fmt.Fprintln(out, output.FormatFileLine(rel, output.StatusCreated))
		}
		for _, rel := range result.Skipped {
			fmt.Fprintln(out, output.FormatFileLine(rel, output.StatusSkipped))
		}
		for _, rel := range result.Excluded {
			fmt.Fprintln(out, output.FormatFileLine(rel, output.StatusExcluded))
		}
		return
	}

	rootName := filepath.Base(result.TargetDir)
	var tree string
	if len(result.Skipped) == 0 {
		tree = output.RenderSimpleTree(rootName, result.Created)
	} else {
		files := make(map[string]string, len(result.Created)+len(result.Skipped))
		for _, rel := range result.Created {
			files[rel] = ""
		}
		for _, rel := range result.Skipped {
			files[rel] = output.StatusSkipped
		}
		tree = output.RenderFileTree(rootName, files)
	}
	if tree != "" {
		fmt.Fprintln(out)
		fmt.Fprint(out, tree)
	}
}

// reportError logs err and wraps it with the matching exit code so main
// does not print it twice.
func reportError(msg string, err error) error {
	output.Error(msg, "error", err)
	return &oerrors.ExitError{
		Code:    oerrors.ExitCodeFromError(err),
		Err:     err,
		Printed: true,
	}
}
