/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

Load/save of the sectioned manifest text format. Lines within a section
are "key<TAB>attr=value"; flat sections (backup, backup:option, ...) use
an empty key, so their lines are simply "attr=value". The serializer is
implementation-defined (spec.md §6) but round-trips exactly.
*/
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const keyAttrSep = "\t"

// attrKind returns the Kind a given (section, attr) pair should be parsed
// as. Attribute names are reused with different meanings across sections
// (e.g. "checksum" is a bool backup:option but a hex-string file
// attribute), so the schema is section-aware.
func attrKind(section, attr string) Kind {
	switch section {
	case SectionBackupOption:
		switch attr {
		case "compress", "checksum", "hardlink":
			return KindBool
		}
	case SectionBackup:
		switch attr {
		case "timestamp-start", "timestamp-stop":
			return KindInt
		}
	case SectionBackupDB:
		switch attr {
		case "catalog-version", "control-version", "id":
			return KindInt
		}
	}
	if strings.HasSuffix(section, SuffixFile) {
		switch attr {
		case "size", "inode", "modification_time":
			return KindInt
		}
	}
	return KindString
}

func parseValue(kind Kind, raw string) (Value, error) {
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: bad integer %q: %v", ErrMalformedManifest, raw, err)
		}
		return IntVal(n), nil
	case KindBool:
		switch raw {
		case "y":
			return BoolVal(true), nil
		case "n":
			return BoolVal(false), nil
		default:
			return Value{}, fmt.Errorf("%w: bad y/n value %q", ErrMalformedManifest, raw)
		}
	default:
		return String(raw), nil
	}
}

// Save writes m to path, atomically: the content is written to a sibling
// temp file and renamed over path, so callers can re-save over an
// existing manifest safely.
func Save(path string, m *Manifest) error {
	var b strings.Builder

	sectionNames := make([]string, 0, len(m.Sections))
	for name := range m.Sections {
		sectionNames = append(sectionNames, name)
	}
	sort.Strings(sectionNames)

	for _, name := range sectionNames {
		sec := m.Sections[name]
		fmt.Fprintf(&b, "[%s]\n", name)

		keys := make([]string, 0, len(sec))
		for k := range sec {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			entry := sec[key]
			attrs := make([]string, 0, len(entry))
			for a := range entry {
				attrs = append(attrs, a)
			}
			sort.Strings(attrs)
			for _, a := range attrs {
				v := entry[a]
				if key == "" {
					fmt.Fprintf(&b, "%s=%s\n", a, v.AsString())
				} else {
					fmt.Fprintf(&b, "%s%s%s=%s\n", key, keyAttrSep, a, v.AsString())
				}
			}
		}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("manifest: cannot create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("manifest: write failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("manifest: close failed: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("manifest: rename failed: %w", err)
	}
	return nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m := New()
	var section string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section = trimmed[1 : len(trimmed)-1]
			if section == "" {
				return nil, fmt.Errorf("%w: empty section header at line %d", ErrMalformedManifest, lineNo)
			}
			continue
		}
		if section == "" {
			return nil, fmt.Errorf("%w: attribute before any section at line %d", ErrMalformedManifest, lineNo)
		}

		var key, rest string
		if idx := strings.Index(line, keyAttrSep); idx >= 0 {
			key = line[:idx]
			rest = line[idx+1:]
		} else {
			rest = line
		}

		eq := strings.Index(rest, "=")
		if eq < 0 {
			return nil, fmt.Errorf("%w: missing '=' at line %d", ErrMalformedManifest, lineNo)
		}
		attr := rest[:eq]
		raw := rest[eq+1:]

		v, err := parseValue(attrKind(section, attr), raw)
		if err != nil {
			return nil, err
		}
		m.Set(section, key, attr, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedManifest, err)
	}
	return m, nil
}

// Exists reports whether a manifest file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
