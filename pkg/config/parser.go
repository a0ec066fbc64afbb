package config

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/ini.v1"
)

// Parser handles parsing and serialization of Git-compatible INI
// configuration files: "[section]" and "[section \"subsection\"]" headers
// with "key = value" lines underneath, the same format stock Git reads
// and writes for .source/config, ~/.gitconfig, and /etc/gitconfig.
type Parser struct{}

// ValidationResult contains validation results
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// loadOptions is shared by every Load/Empty call so that keys repeated
// within a section (e.g. multiple "remote.origin.fetch" refspecs) are
// preserved as shadow values instead of the last one silently winning.
var loadOptions = ini.LoadOptions{
	AllowShadows:            true,
	SkipUnrecognizableLines: true,
}

// subsectionPattern matches a raw go-ini section name for a subsectioned
// header, e.g. `remote "origin"` parsed from "[remote \"origin\"]".
var subsectionPattern = regexp.MustCompile(`^(\S+) "(.*)"$`)

// Parse parses INI configuration content into a map of dotted-key entries,
// e.g. "[user]\n\tname = Ada\n" becomes {"user.name": [...]}.
func (p *Parser) Parse(content string, source ConfigSource, level ConfigLevel) (map[string][]*ConfigEntry, error) {
	result := make(map[string][]*ConfigEntry)

	if strings.TrimSpace(content) == "" {
		return result, nil
	}

	file, err := ini.LoadSources(loadOptions, []byte(content))
	if err != nil {
		return nil, NewConfigError("parse", CodeInvalidFormatErr, "", source.String(), "", fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}

	for _, section := range file.Sections() {
		fullSection, subsection := splitSectionName(section.Name())
		if fullSection == ini.DefaultSection && len(section.Keys()) == 0 {
			continue
		}

		for _, key := range section.Keys() {
			fullKey := joinDottedKey(fullSection, subsection, key.Name())
			for _, value := range key.ValueWithShadows() {
				p.addEntry(result, fullKey, value, source, level)
			}
		}
	}

	return result, nil
}

// Serialize converts configuration entries back into INI text.
func (p *Parser) Serialize(entries map[string][]*ConfigEntry) (string, error) {
	file := ini.Empty(loadOptions)

	for fullKey, entryList := range entries {
		section, subsection, key, err := splitDottedKey(fullKey)
		if err != nil {
			return "", err
		}

		sec, err := file.NewSection(sectionHeaderName(section, subsection))
		if err != nil {
			return "", NewConfigError("serialize", CodeInvalidFormatErr, fullKey, "", "", err)
		}

		for i, entry := range entryList {
			if i == 0 {
				if _, err := sec.NewKey(key, entry.Value); err != nil {
					return "", NewConfigError("serialize", CodeInvalidFormatErr, fullKey, "", "", err)
				}
				continue
			}
			if err := sec.Key(key).AddShadow(entry.Value); err != nil {
				return "", NewConfigError("serialize", CodeInvalidFormatErr, fullKey, "", "", err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return "", NewConfigError("serialize", CodeInvalidFormatErr, "", "", "", fmt.Errorf("%w: %v", ErrInvalidFormat, err))
	}

	return buf.String(), nil
}

// Validate validates that content parses as well-formed INI.
func (p *Parser) Validate(content string) ValidationResult {
	errs := []string{}

	if _, err := ini.LoadSources(loadOptions, []byte(content)); err != nil {
		errs = append(errs, fmt.Sprintf("Invalid config syntax: %v", err))
		return ValidationResult{Valid: false, Errors: errs}
	}

	return ValidationResult{Valid: true, Errors: errs}
}

// FormatForDisplay renders the effective (last-value-wins) configuration
// as INI text, the format `srcc config --list` shows to the user.
func (p *Parser) FormatForDisplay(entries map[string][]*ConfigEntry) (string, error) {
	effective := make(map[string][]*ConfigEntry, len(entries))
	for fullKey, entryList := range entries {
		if len(entryList) > 0 {
			effective[fullKey] = []*ConfigEntry{entryList[len(entryList)-1]}
		}
	}
	return p.Serialize(effective)
}

// addEntry adds a configuration entry to the result map
func (p *Parser) addEntry(
	entryMap map[string][]*ConfigEntry,
	configKey string,
	configValue string,
	source ConfigSource,
	level ConfigLevel,
) {
	entry := NewEntry(configKey, configValue, level, source, 0)
	entryMap[configKey] = append(entryMap[configKey], entry)
}

// splitSectionName splits a raw go-ini section name into its Git section
// and subsection, e.g. `remote "origin"` -> ("remote", "origin").
// Plain section names have no subsection.
func splitSectionName(raw string) (section, subsection string) {
	if m := subsectionPattern.FindStringSubmatch(raw); m != nil {
		return m[1], m[2]
	}
	return raw, ""
}

// joinDottedKey builds the dotted configuration key from a section,
// optional subsection, and leaf key, e.g. ("remote", "origin", "url")
// -> "remote.origin.url".
func joinDottedKey(section, subsection, key string) string {
	if subsection == "" {
		return section + "." + key
	}
	return section + "." + subsection + "." + key
}

// splitDottedKey is the inverse of joinDottedKey: it splits a dotted
// configuration key such as "remote.origin.url" into its section,
// subsection, and leaf key. Two-component keys (e.g. "user.name") have
// no subsection; keys with more than two components treat every
// component between the first and the last as the subsection name.
func splitDottedKey(fullKey string) (section, subsection, key string, err error) {
	parts := strings.Split(fullKey, ".")
	if len(parts) < 2 {
		return "", "", "", NewConfigError("parse_key", CodeInvalidValueErr, fullKey, "", "", fmt.Errorf("key must be of the form section.key or section.subsection.key"))
	}

	section = parts[0]
	key = parts[len(parts)-1]
	if len(parts) > 2 {
		subsection = strings.Join(parts[1:len(parts)-1], ".")
	}
	return section, subsection, key, nil
}

// sectionHeaderName builds the raw go-ini section name for a section and
// optional subsection, e.g. ("remote", "origin") -> `remote "origin"`.
func sectionHeaderName(section, subsection string) string {
	if subsection == "" {
		return section
	}
	return fmt.Sprintf("%s \"%s\"", section, subsection)
}
