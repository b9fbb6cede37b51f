// Package ui renders plans, results and parsed files for the command line.
//
// Terminal output is styled with pterm. Text output carries the same lines
// without escape codes. JSON, YAML and TOML output serialize the data itself
// so it can be consumed by scripts.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/pkgman/pkg/installer"
	"github.com/arthur-debert/pkgman/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Messages shown when a package-group file has nothing to install
const (
	MsgNoGroups    = "No package groups defined"
	MsgEmptyGroups = "Every package group is empty"
)

// Renderer writes output in one format
type Renderer struct {
	out    io.Writer
	format Format
}

// NewRenderer creates a new renderer based on the specified format.
// It automatically detects terminal capabilities when format is Auto; writers
// that are not files get plain text.
func NewRenderer(format Format, output io.Writer) *Renderer {
	if format == FormatAuto {
		format = FormatText
		if file, ok := output.(*os.File); ok {
			format = DetectFormat(file)
		}
	}
	return &Renderer{out: output, format: format}
}

// Format returns the resolved output format
func (r *Renderer) Format() Format {
	return r.format
}

func (r *Renderer) paint(status Status, text string) string {
	if r.format != FormatTerminal {
		return text
	}
	return StatusStyle(status).Sprint(text)
}

func (r *Renderer) header(text string) string {
	if r.format != FormatTerminal {
		return text
	}
	return HeaderStyle.Sprint(text)
}

func (r *Renderer) line(label string, status Status, value string) string {
	return fmt.Sprintf("    %s : %s", r.paint(status, fmt.Sprintf("%-8s", label)), value)
}

// encode serializes data in a structured format
func (r *Renderer) encode(data interface{}) error {
	switch r.format {
	case FormatJSON:
		encoder := json.NewEncoder(r.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case FormatYAML:
		encoder := yaml.NewEncoder(r.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return err
		}
		return encoder.Close()
	case FormatTOML:
		return toml.NewEncoder(r.out).Encode(data)
	default:
		return fmt.Errorf("format %s is not structured", r.format)
	}
}

func (r *Renderer) write(lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(r.out, strings.Join(lines, "\n"))
	return err
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	if r.format.IsStructured() {
		return r.encode(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(r.out, msg)
	return err
}

// RenderGroups renders a parsed package-group file. A nil set (a file with
// no sections) stays distinct from an empty one: null in JSON and YAML, and a
// message in TOML, which has no null.
func (r *Renderer) RenderGroups(set *types.PackageGroupSet) error {
	if set == nil {
		if r.format.IsStructured() && r.format != FormatTOML {
			return r.encode(nil)
		}
		return r.RenderMessage(MsgNoGroups)
	}
	if r.format.IsStructured() {
		return r.encode(set.Map())
	}
	if set.Len() == 0 {
		return r.RenderMessage(MsgEmptyGroups)
	}

	var lines []string
	for _, name := range set.Names() {
		group, _ := set.Get(name)
		lines = append(lines, r.header(name+":"))
		for _, pkg := range group.Install {
			lines = append(lines, r.line("install", StatusQueue, pkg))
		}
		for _, cmd := range group.Commands {
			lines = append(lines, r.line("command", StatusQueue, cmd))
		}
	}
	return r.write(lines)
}

// ignoreView is the serialized form of an ignore spec
type ignoreView struct {
	Patterns []string `json:"patterns" yaml:"patterns" toml:"patterns"`
	Flags    []string `json:"flags" yaml:"flags" toml:"flags"`
}

func sortedFlags(spec *types.IgnoreSpec) []string {
	flags := make([]string, 0, len(spec.Flags()))
	for name := range spec.Flags() {
		flags = append(flags, name)
	}
	sort.Strings(flags)
	return flags
}

// RenderIgnore renders a parsed ignore file
func (r *Renderer) RenderIgnore(spec *types.IgnoreSpec) error {
	if r.format.IsStructured() {
		return r.encode(ignoreView{Patterns: spec.Patterns(), Flags: sortedFlags(spec)})
	}
	if spec.IsEmpty() {
		return r.RenderMessage("Nothing is ignored")
	}

	var lines []string
	for _, pattern := range spec.Patterns() {
		lines = append(lines, r.line("ignore", StatusIgnored, pattern))
	}
	for _, flag := range sortedFlags(spec) {
		lines = append(lines, r.line("flag", StatusSkipped, "@"+flag))
	}
	return r.write(lines)
}

// RenderPlan renders what an install would do
func (r *Renderer) RenderPlan(plan *installer.Plan) error {
	if r.format.IsStructured() {
		return r.encode(plan)
	}
	if len(plan.Steps) == 0 {
		return r.RenderMessage("No package groups selected, there is nothing to do")
	}

	var lines []string
	for _, step := range plan.Steps {
		if step.Ignored {
			lines = append(lines, r.header(step.Group+":")+" "+r.paint(StatusIgnored, "ignored"))
			continue
		}
		lines = append(lines, r.header(step.Group+":"))
		if len(step.Install) > 0 {
			lines = append(lines, r.line("install", StatusQueue, strings.Join(step.Install, " ")))
		}
		for _, skip := range step.Skipped {
			lines = append(lines, r.line("skip", StatusSkipped, fmt.Sprintf("%s (%s)", skip.Package, skip.Reason)))
		}
		for _, cmd := range step.Commands {
			if plan.RunCommands {
				lines = append(lines, r.line("command", StatusQueue, cmd))
			} else {
				lines = append(lines, r.line("command", StatusSkipped, cmd+" (commands disabled)"))
			}
		}
	}
	if plan.IsEmpty() {
		lines = append(lines, "", "Everything is up to date, there is nothing to do")
	}
	return r.write(lines)
}

// resultView is the serialized form of a result
type resultView struct {
	installer.Result `yaml:",inline"`
	Error            string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

// RenderResults renders the outcome of an install
func (r *Renderer) RenderResults(results []installer.Result) error {
	if r.format.IsStructured() {
		views := make([]resultView, 0, len(results))
		for _, res := range results {
			view := resultView{Result: res}
			if res.Error != nil {
				view.Error = res.Error.Error()
			}
			views = append(views, view)
		}
		return r.encode(map[string]interface{}{"results": views})
	}

	var lines []string
	installed, failed := 0, 0
	for _, res := range results {
		switch {
		case res.Error != nil:
			failed++
			lines = append(lines, r.line(res.Group, StatusError, res.Message))
		case res.Skipped:
			lines = append(lines, r.line(res.Group, StatusSkipped, res.Message))
		default:
			installed += len(res.Installed)
			detail := fmt.Sprintf("%d package(s), %d command(s) in %s", len(res.Installed), res.Commands, res.Duration.Round(time.Millisecond))
			lines = append(lines, r.line(res.Group, StatusSuccess, detail))
		}
	}

	summary := fmt.Sprintf("%d group(s) processed, %d package(s) installed", len(results), installed)
	if failed > 0 {
		summary += ", " + r.paint(StatusError, fmt.Sprintf("%d failed", failed))
	}
	lines = append(lines, "", summary)
	return r.write(lines)
}

// RenderList renders a titled list of names, such as removed orphans
func (r *Renderer) RenderList(title string, items []string) error {
	if r.format.IsStructured() {
		if items == nil {
			items = []string{}
		}
		return r.encode(map[string][]string{title: items})
	}
	lines := []string{r.header(title + ":")}
	for _, item := range items {
		lines = append(lines, "    "+item)
	}
	return r.write(lines)
}
