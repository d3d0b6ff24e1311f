// Package prompts holds the text-generation prompt catalog.
package prompts

import (
	_ "embed"
	"errors"
	"os"
	"strings"
	"text/template"

	"github.com/pelletier/go-toml/v2"

	"gentletalk/internal/errs"
)

//go:embed default.toml
var defaultCatalog []byte

type section struct {
	Template string `toml:"template"`
}

type catalogFile struct {
	Version             int     `toml:"version"`
	System              string  `toml:"system"`
	OpponentPlaceholder string  `toml:"opponent_placeholder"`
	Analysis            section `toml:"analysis"`
	Outreach            section `toml:"outreach"`
	Proposals           section `toml:"proposals"`
}

// Catalog renders the prompts sent to the generation provider.
type Catalog struct {
	System              string
	OpponentPlaceholder string

	analysis  *template.Template
	outreach  *template.Template
	proposals *template.Template
}

type AnalysisInput struct {
	Conflict     string
	Requirements string
}

type OutreachInput struct {
	Analysis    string
	Placeholder string
}

type ProposalsInput struct {
	Conflict     string
	Requirements string
	Analysis     string
	Message      string
	Count        int
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return parse(defaultCatalog)
}

// Load reads path, or falls back to the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return Default()
	}
	raw, err := os.ReadFile(trimmed)
	if err != nil {
		return nil, errs.Wrapf(err, "read prompt catalog %q", trimmed)
	}
	return parse(raw)
}

func parse(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return nil, errs.Wrap(err, "decode prompt catalog")
	}
	if file.Version != 1 {
		return nil, errors.New("unsupported prompt catalog version: expected version = 1")
	}
	if strings.TrimSpace(file.OpponentPlaceholder) == "" {
		return nil, errors.New("opponent_placeholder is required")
	}

	c := &Catalog{
		System:              strings.TrimSpace(file.System),
		OpponentPlaceholder: file.OpponentPlaceholder,
	}
	var err error
	if c.analysis, err = compile("analysis", file.Analysis.Template); err != nil {
		return nil, err
	}
	if c.outreach, err = compile("outreach", file.Outreach.Template); err != nil {
		return nil, err
	}
	if c.proposals, err = compile("proposals", file.Proposals.Template); err != nil {
		return nil, err
	}
	return c, nil
}

func compile(name, body string) (*template.Template, error) {
	if strings.TrimSpace(body) == "" {
		return nil, errors.New(name + ".template is required")
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, errs.Wrapf(err, "parse %s template", name)
	}
	return tmpl, nil
}

func (c *Catalog) Analysis(in AnalysisInput) (string, error) {
	return render(c.analysis, in)
}

// Outreach fills Placeholder from the catalog when the caller leaves it blank.
func (c *Catalog) Outreach(in OutreachInput) (string, error) {
	if in.Placeholder == "" {
		in.Placeholder = c.OpponentPlaceholder
	}
	return render(c.outreach, in)
}

func (c *Catalog) Proposals(in ProposalsInput) (string, error) {
	if in.Count <= 0 {
		return "", errors.New("proposal count must be positive")
	}
	return render(c.proposals, in)
}

func render(tmpl *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", errs.Wrapf(err, "render %s prompt", tmpl.Name())
	}
	return strings.TrimSpace(b.String()), nil
}
