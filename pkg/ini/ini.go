// Package ini reads and writes the section/key text format used by package
// group files.
//
// The dialect is strict:
//
//   - `[name]` starts a section; names are case-sensitive and a name may
//     appear only once.
//   - `key = value` or `key: value` sets an option; option names are folded to
//     lower case and may appear only once per section.
//   - lines indented deeper than their option line continue its value and are
//     joined with newlines; blank lines inside a value are kept.
//   - lines whose first non-blank character is `#` or `;` are comments.
//   - the `DEFAULT` section is not a section of its own; its options are
//     inherited by every other section.
//
// Any structural problem (duplicate section, duplicate option, option
// outside a section, unparseable line) is an errors.ErrParse error and no
// document is returned.
package ini

import (
	"io"
	"strings"
	"unicode"

	"github.com/arthur-debert/pkgman/pkg/errors"
)

// DefaultSection is the name of the section whose options every section inherits
const DefaultSection = "DEFAULT"

// Option is a single key with its raw value
type Option struct {
	Name  string
	Value string
	Line  int
}

// Section is a named, ordered list of options
type Section struct {
	Name    string
	Line    int
	Options []Option
}

// Lookup returns the raw value of an option declared in this section
func (s *Section) Lookup(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, opt := range s.Options {
		if opt.Name == name {
			return opt.Value, true
		}
	}
	return "", false
}

// Document is a parsed file
type Document struct {
	Defaults []Option
	Sections []*Section
}

// Items returns the options of a section followed by the inherited defaults
// it does not override.
func (d *Document) Items(s *Section) []Option {
	items := make([]Option, 0, len(s.Options)+len(d.Defaults))
	items = append(items, s.Options...)
	for _, def := range d.Defaults {
		if _, ok := s.Lookup(def.Name); !ok {
			items = append(items, def)
		}
	}
	return items
}

// pending tracks the option currently collecting continuation lines
type pending struct {
	target *[]Option
	index  int
	lines  []string
}

func (p *pending) flush() {
	if p == nil {
		return
	}
	(*p.target)[p.index].Value = strings.TrimRightFunc(strings.Join(p.lines, "\n"), unicode.IsSpace)
}

type parser struct {
	source   string
	doc      *Document
	current  *[]Option
	sectName string
	seenSect map[string]bool
	seenOpt  map[string]bool
	opt      *pending
	indent   int
}

// Parse reads a document. source names the input in error messages.
func Parse(r io.Reader, source string) (*Document, error) {
	p := &parser{
		source:   source,
		doc:      &Document{},
		seenSect: make(map[string]bool),
		seenOpt:  make(map[string]bool),
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", source)
	}

	// Whole-file split, so line length is unbounded
	for i, line := range strings.Split(string(data), "\n") {
		if err := p.line(strings.TrimRight(line, "\r"), i+1); err != nil {
			return nil, err
		}
	}

	p.opt.flush()
	return p.doc, nil
}

func (p *parser) line(line string, lineno int) error {
	value := strings.TrimSpace(line)

	if strings.HasPrefix(value, "#") || strings.HasPrefix(value, ";") {
		return nil
	}

	if value == "" {
		if p.opt != nil {
			p.opt.lines = append(p.opt.lines, "")
		}
		return nil
	}

	indent := len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
	if p.opt != nil && indent > p.indent {
		p.opt.lines = append(p.opt.lines, value)
		return nil
	}

	p.indent = indent
	p.opt.flush()
	p.opt = nil

	if name, ok := sectionHeader(value); ok {
		return p.section(name, lineno)
	}

	if p.current == nil {
		return errors.Parse(p.source, lineno, "file contains no section headers")
	}

	return p.option(value, lineno)
}

// sectionHeader matches `[name]`, taking everything up to the last `]` as
// the name and ignoring trailing text.
func sectionHeader(value string) (string, bool) {
	if !strings.HasPrefix(value, "[") {
		return "", false
	}
	end := strings.LastIndex(value, "]")
	if end < 2 {
		return "", false
	}
	return value[1:end], true
}

func (p *parser) section(name string, lineno int) error {
	p.sectName = name

	if name == DefaultSection {
		p.current = &p.doc.Defaults
		return nil
	}

	if p.seenSect[name] {
		return errors.Parse(p.source, lineno, "duplicate section '%s'", name).WithDetail("section", name)
	}
	p.seenSect[name] = true

	section := &Section{Name: name, Line: lineno}
	p.doc.Sections = append(p.doc.Sections, section)
	p.current = &section.Options
	return nil
}

func (p *parser) option(value string, lineno int) error {
	delim := strings.IndexAny(value, "=:")
	if delim < 0 {
		return errors.Parse(p.source, lineno, "line is neither a section header nor an option: %q", value)
	}

	name := strings.ToLower(strings.TrimSpace(value[:delim]))
	if name == "" {
		return errors.Parse(p.source, lineno, "option without a name: %q", value)
	}

	key := p.sectName + "\x00" + name
	if p.seenOpt[key] {
		return errors.Parse(p.source, lineno, "duplicate option '%s' in section '%s'", name, p.sectName).
			WithDetail("section", p.sectName).
			WithDetail("option", name)
	}
	p.seenOpt[key] = true

	*p.current = append(*p.current, Option{Name: name, Line: lineno})
	p.opt = &pending{
		target: p.current,
		index:  len(*p.current) - 1,
		lines:  []string{strings.TrimSpace(value[delim+1:])},
	}
	return nil
}
