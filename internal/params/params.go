// Package params collects the parameter mapping templates are rendered with.
package params

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/xymatic/modinit/internal/config"
	oerrors "github.com/xymatic/modinit/internal/errors"
	"github.com/xymatic/modinit/internal/templates"
)

// DefaultStability is preselected when no stability is given.
const DefaultStability = "experimental"

// Stabilities lists the accepted stability levels, least to most stable.
var Stabilities = []string{
	"deprecated",
	"experimental",
	"unstable",
	"stable",
	"frozen",
	"locked",
}

// orgNamePattern matches code-host organization names.
var orgNamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:-?[A-Za-z0-9])*$`)

const maxOrgNameLength = 39

// Answers holds the module metadata entered by the user.
type Answers struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Tags        string `yaml:"tags"`
	Stability   string `yaml:"stability"`
}

// DefaultAnswers returns the answers used when nothing is entered: the
// module is named after the target directory.
func DefaultAnswers(targetDir string) Answers {
	return Answers{
		Name:      filepath.Base(targetDir),
		Stability: DefaultStability,
	}
}

// Validate checks the answers before they are turned into params.
func (a Answers) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return oerrors.NewValidationError("module name cannot be empty", "Enter a module name.")
	}
	if !slices.Contains(Stabilities, a.Stability) {
		return oerrors.NewValidationError(
			fmt.Sprintf("unknown stability %q", a.Stability),
			fmt.Sprintf("Valid stabilities: %s", strings.Join(Stabilities, ", ")),
		)
	}
	return nil
}

// ResolveOrganization returns the organization used for repository URLs.
// Without the flag the organization defaults to the user's own name.
func ResolveOrganization(flagValue string, flagSet bool, identity config.IdentityConfig) (string, error) {
	if !flagSet {
		return identity.Name, nil
	}

	org := strings.TrimSpace(flagValue)
	if org == "" {
		return "", oerrors.NewConfigError(
			"--user specified, but without an organization",
			"--user",
			"Pass an organization name, e.g. --user my-org",
		)
	}
	if len(org) > maxOrgNameLength || !orgNamePattern.MatchString(org) {
		return "", oerrors.NewConfigError(
			fmt.Sprintf("invalid organization name %q", org),
			"--user",
			"Organization names contain only letters, digits, and single hyphens.",
		)
	}

	return org, nil
}

// Build assembles the parameter mapping from identity, organization, and
// answers, deriving the escaped and identifier-safe values.
func Build(identity config.IdentityConfig, org string, answers Answers) (templates.Params, error) {
	tags, err := TagsJSON(answers.Tags)
	if err != nil {
		return nil, fmt.Errorf("encoding tags: %w", err)
	}

	name := Dequote(answers.Name)

	return templates.Params{
		"user": map[string]any{
			"name":     identity.Name,
			"site":     identity.Site,
			"email":    identity.Email,
			"username": identity.Username,
		},
		"org": map[string]any{
			"name": org,
		},
		"name":            name,
		"description":     Dequote(answers.Description),
		"testDescription": TestDescription(answers.Description),
		"varName":         VarName(name),
		"tags":            tags,
		"stability":       answers.Stability,
	}, nil
}

// CollectOptions configures parameter collection.
type CollectOptions struct {
	// Identity is the author identity from configuration.
	Identity config.IdentityConfig

	// OrgFlag is the --user flag value; OrgFlagSet reports whether it was given.
	OrgFlag    string
	OrgFlagSet bool

	// Answers are the values from flags or defaults.
	Answers Answers

	// Prompter asks the user to confirm or edit Answers. Nil skips prompting.
	Prompter Prompter
}

// Collect resolves the organization, prompts for answers, and builds the
// params. Organization errors are reported before any prompt is shown.
func Collect(opts CollectOptions) (templates.Params, error) {
	org, err := ResolveOrganization(opts.OrgFlag, opts.OrgFlagSet, opts.Identity)
	if err != nil {
		return nil, err
	}

	answers := opts.Answers
	if opts.Prompter != nil {
		answers, err = opts.Prompter.Prompt(answers)
		if err != nil {
			return nil, err
		}
	}

	if err := answers.Validate(); err != nil {
		return nil, err
	}

	return Build(opts.Identity, org, answers)
}
