package ini

import (
	"bufio"
	"io"
	"strings"

	"github.com/arthur-debert/pkgman/pkg/errors"
)

// Encode writes doc in canonical form: sections separated by a blank line,
// `key = value` options, and one tab-indented continuation line per extra
// value line. Values that could not be read back identically are rejected.
func Encode(w io.Writer, doc *Document) error {
	if err := validate(doc); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	first := true
	writeSection := func(name string, options []Option) {
		if !first {
			bw.WriteString("\n")
		}
		first = false
		bw.WriteString("[" + name + "]\n")
		for _, opt := range options {
			bw.WriteString(opt.Name + " = " + strings.ReplaceAll(opt.Value, "\n", "\n\t") + "\n")
		}
	}

	if len(doc.Defaults) > 0 {
		writeSection(DefaultSection, doc.Defaults)
	}
	for _, s := range doc.Sections {
		writeSection(s.Name, s.Options)
	}

	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to write document")
	}
	return nil
}

func validate(doc *Document) error {
	seen := make(map[string]bool)
	for _, s := range doc.Sections {
		switch {
		case s.Name == "", strings.ContainsAny(s.Name, "\r\n"):
			return errors.Newf(errors.ErrInvalidInput, "section name %q cannot be written", s.Name)
		case s.Name == DefaultSection:
			return errors.Newf(errors.ErrInvalidInput, "section name '%s' is reserved", DefaultSection)
		case seen[s.Name]:
			return errors.Newf(errors.ErrInvalidInput, "duplicate section '%s'", s.Name)
		}
		seen[s.Name] = true
		if err := validateOptions(s.Name, s.Options); err != nil {
			return err
		}
	}
	return validateOptions(DefaultSection, doc.Defaults)
}

func validateOptions(section string, options []Option) error {
	seen := make(map[string]bool)
	for _, opt := range options {
		name := strings.TrimSpace(opt.Name)
		if name == "" || name != strings.ToLower(opt.Name) || strings.ContainsAny(name, "=:\r\n#;[") {
			return errors.Newf(errors.ErrInvalidInput, "option name %q in section '%s' cannot be written", opt.Name, section)
		}
		if seen[name] {
			return errors.Newf(errors.ErrInvalidInput, "duplicate option '%s' in section '%s'", name, section)
		}
		seen[name] = true

		for i, line := range strings.Split(opt.Value, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed != line && trimmed != "" {
				return errors.Newf(errors.ErrInvalidInput, "value line %q of '%s' has surrounding whitespace", line, name)
			}
			if i > 0 && (strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";")) {
				return errors.Newf(errors.ErrInvalidInput, "value line %q of '%s' would be read as a comment", line, name)
			}
		}
	}
	return nil
}
