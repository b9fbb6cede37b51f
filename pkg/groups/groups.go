// Package groups parses package-group files.
//
// A package-group file is an INI document (see package ini). Every section is
// a group; its `install` option lists packages, one per line, and its
// `commands` option lists shell commands to run after installation.
//
// Parse distinguishes two "nothing to do" states: a nil set means the file
// has no sections at all, an empty set means it had sections but none of them
// declared anything usable. Authoring mistakes that leave a field or a section
// empty are warnings; structural mistakes (duplicate section or option) are
// errors.ErrParse and abort the parse.
package groups

import (
	"bytes"
	"io"
	"strings"

	"github.com/arthur-debert/pkgman/pkg/errors"
	"github.com/arthur-debert/pkgman/pkg/ini"
	"github.com/arthur-debert/pkgman/pkg/logging"
	"github.com/arthur-debert/pkgman/pkg/paths"
	"github.com/arthur-debert/pkgman/pkg/types"
	"github.com/rs/zerolog"
)

// Recognized option names
const (
	KeyInstall  = "install"
	KeyCommands = "commands"
)

// EmptyMarker names the section Encode writes for an empty set
const EmptyMarker = "empty"

// Parser reads package-group files
type Parser struct {
	fs     types.FS
	logger zerolog.Logger
}

// NewParser creates a parser reading from fsys
func NewParser(fsys types.FS, logger zerolog.Logger) *Parser {
	return &Parser{
		fs:     fsys,
		logger: logging.Component(logger, "groups"),
	}
}

// Parse reads the package-group file at path.
func (p *Parser) Parse(path string) (*types.PackageGroupSet, error) {
	abs, err := paths.Resolve(p.fs, p.logger, path, paths.KindFile)
	if err != nil {
		return nil, err
	}

	p.logger.Info().Str("path", abs).Msg("Loading packages file")

	data, err := p.fs.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", abs)
	}

	doc, err := ini.Parse(bytes.NewReader(data), abs)
	if err != nil {
		return nil, err
	}

	if len(doc.Sections) == 0 {
		p.logger.Warn().Str("path", abs).Msg("Packages file has no sections, there is nothing to do")
		return nil, nil
	}

	set := types.NewPackageGroupSet()
	for _, section := range doc.Sections {
		group, ok := p.group(doc, section, abs)
		if !ok {
			continue
		}
		if err := set.Add(section.Name, group); err != nil {
			// section names are unique once ini.Parse succeeded
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to record group")
		}
	}

	p.logger.Debug().Int("groups", set.Len()).Int("sections", len(doc.Sections)).Msg("Parsed packages file")
	return set, nil
}

// group resolves one section. It returns false when the section declares
// nothing and must be dropped.
func (p *Parser) group(doc *ini.Document, section *ini.Section, path string) (types.PackageGroup, bool) {
	logger := p.logger.With().Str("section", section.Name).Logger()
	logger.Debug().Msg("Parsing section")

	var group types.PackageGroup
	for _, opt := range doc.Items(section) {
		switch opt.Name {
		case KeyInstall:
			group.Install = splitList(logger, opt)
		case KeyCommands:
			group.Commands = splitList(logger, opt)
		default:
			logger.Warn().
				Str("option", opt.Name).
				Int("line", opt.Line).
				Msgf("Unsupported option '%s' in section '%s', ignoring it", opt.Name, section.Name)
		}
	}

	if group.IsEmpty() {
		logger.Warn().Str("path", path).Msgf("Section '%s' is empty, ignoring it", section.Name)
		return group, false
	}
	return group, true
}

// splitList turns a raw multi-line value into its non-empty trimmed lines.
// A blank value yields nil, meaning the field is absent.
func splitList(logger zerolog.Logger, opt ini.Option) []string {
	raw := strings.TrimSpace(opt.Value)
	if raw == "" {
		logger.Warn().Str("option", opt.Name).Msgf("Empty option '%s', ignoring it", opt.Name)
		return nil
	}

	var entries []string
	for _, line := range strings.Split(raw, "\n") {
		if entry := strings.TrimSpace(line); entry != "" {
			entries = append(entries, entry)
		}
	}

	logger.Debug().Str("option", opt.Name).Int("entries", len(entries)).Msg("Parsed option")
	return entries
}

// Encode writes set as a package-group file that Parse reads back into an
// equivalent set. A nil set writes nothing. An empty set writes a single
// option-less section, which Parse drops, so it reads back as empty rather
// than absent.
func Encode(w io.Writer, set *types.PackageGroupSet) error {
	doc := &ini.Document{}
	if set != nil && set.Len() == 0 {
		doc.Sections = append(doc.Sections, &ini.Section{Name: EmptyMarker})
	}
	for _, name := range set.Names() {
		group, _ := set.Get(name)
		section := &ini.Section{Name: name}
		if err := checkEntries(name, group); err != nil {
			return err
		}
		if group.HasInstall() {
			section.Options = append(section.Options, ini.Option{Name: KeyInstall, Value: joinList(group.Install)})
		}
		if group.HasCommands() {
			section.Options = append(section.Options, ini.Option{Name: KeyCommands, Value: joinList(group.Commands)})
		}
		doc.Sections = append(doc.Sections, section)
	}
	return ini.Encode(w, doc)
}

func checkEntries(name string, group types.PackageGroup) error {
	for key, entries := range map[string][]string{KeyInstall: group.Install, KeyCommands: group.Commands} {
		if entries != nil && len(entries) == 0 {
			return errors.Newf(errors.ErrInvalidInput, "group '%s' has an empty '%s' list", name, key)
		}
		for _, entry := range entries {
			if strings.TrimSpace(entry) == "" || strings.Contains(entry, "\n") {
				return errors.Newf(errors.ErrInvalidInput, "group '%s' has an unwritable '%s' entry %q", name, key, entry)
			}
		}
	}
	return nil
}

func joinList(entries []string) string {
	if len(entries) == 1 {
		return entries[0]
	}
	// Every entry on its own continuation line
	return "\n" + strings.Join(entries, "\n")
}
