package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xymatic/modinit/internal/params"
)

// GlobalFlags holds flags that shape config loading and logging.
type GlobalFlags struct {
	Config     string
	Verbose    bool
	Timestamps bool
}

// AddTo registers the global flags on the given cobra command.
func (f *GlobalFlags) AddTo(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&f.Config, "config", "c", "",
		"Path to config file (env: MODINIT_CONFIG)")
	cmd.PersistentFlags().BoolVarP(&f.Verbose, "verbose", "v", false,
		"Enable verbose output")
	cmd.PersistentFlags().BoolVar(&f.Timestamps, "timestamps", true,
		"Show timestamps in log output")
}

// AnswerFlags holds the module metadata that can be given without prompting.
type AnswerFlags struct {
	Org         string
	Name        string
	Description string
	Tags        string
	Stability   string
	Yes         bool
}

// AddTo registers the answer flags on the given cobra command.
func (f *AnswerFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Org, "user", "u", "",
		"Organization override for repository URLs")
	cmd.Flags().StringVar(&f.Name, "name", "",
		"Module name (default: current directory name)")
	cmd.Flags().StringVar(&f.Description, "description", "",
		"Module description")
	cmd.Flags().StringVar(&f.Tags, "tags", "",
		"Space-separated module tags")
	cmd.Flags().StringVar(&f.Stability, "stability", params.DefaultStability,
		fmt.Sprintf("Module stability (%s)", strings.Join(params.Stabilities, ", ")))
	cmd.Flags().BoolVarP(&f.Yes, "yes", "y", false,
		"Accept defaults and flag values without prompting")
}

// Answers merges flag values over the defaults for targetDir.
func (f *AnswerFlags) Answers(targetDir string) params.Answers {
	answers := params.DefaultAnswers(targetDir)
	if f.Name != "" {
		answers.Name = f.Name
	}
	answers.Description = f.Description
	answers.Tags = f.Tags
	if f.Stability != "" {
		answers.Stability = f.Stability
	}
	return answers
}

// EmitFlags holds flags that control template emission.
type EmitFlags struct {
	Templates   string
	Strict      bool
	DryRun      bool
	Concurrency int
	PrintParams bool
}

// AddTo registers the emission flags on the given cobra command.
func (f *EmitFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Templates, "templates", "",
		"Template directory replacing the built-in skeleton (env: MODINIT_TEMPLATES)")
	cmd.Flags().BoolVar(&f.Strict, "strict", false,
		"Fail on placeholders with no value instead of rendering them empty")
	cmd.Flags().BoolVar(&f.DryRun, "dry-run", false,
		"Report what would be written without touching the filesystem")
	cmd.Flags().IntVar(&f.Concurrency, "concurrency", 0,
		"Maximum number of files processed in parallel (default: from config)")
	cmd.Flags().BoolVar(&f.PrintParams, "print-params", false,
		"Print the collected parameters as YAML and exit")
}
