/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

C3: the manifest builder. Walks a cluster directory (recursively through
tablespace links) and produces a new manifest, diffing each file entry
against a prior manifest to attach reference entries per the unchanged
predicate (I1).
*/
package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"pig/internal/backup/errs"
	"pig/internal/backup/fs"
)

// BuildInput parameterizes Build.
type BuildInput struct {
	FS            fs.FS
	ClusterRoot   string            // absolute source path for level "base"
	Prior         *Manifest         // possibly nil or empty; no prior means every file entry is new
	TablespaceMap map[string]string // oid -> tablespace name
}

// Build walks the cluster tree rooted at in.ClusterRoot and returns a new
// manifest, diffed against in.Prior.
func Build(in BuildInput) (*Manifest, error) {
	m := New()
	m.Set(SectionBackupPath, LevelBase, "path", String(in.ClusterRoot))

	if err := buildLevel(m, in.FS, LevelBase, in.ClusterRoot, "", in.Prior, in.TablespaceMap); err != nil {
		return nil, err
	}
	return m, nil
}

// buildLevel recurses over one logical root (level), starting from
// absRoot/relPrefix.
func buildLevel(m *Manifest, f fs.FS, level, absRoot, relPrefix string, prior *Manifest, tsMap map[string]string) error {
	absDir := absRoot
	if relPrefix != "" {
		absDir = filepath.Join(absRoot, relPrefix)
	}

	entries, err := f.List(absDir)
	if err != nil {
		return fmt.Errorf("manifest: list %q: %w", absDir, err)
	}

	for _, e := range entries {
		rel := e.Name
		if relPrefix != "" {
			rel = filepath.Join(relPrefix, e.Name)
		}

		// I3: pg_xlog/* never present in a manifest built against a
		// live cluster; postmaster.pid always excluded.
		if level == LevelBase && (rel == "pg_xlog" || rel == "postmaster.pid") {
			continue
		}

		switch e.Type {
		case fs.TypeDir:
			section := LevelSection(level, SuffixPath)
			m.Set(section, rel, "user", String(e.User))
			m.Set(section, rel, "group", String(e.Group))
			m.Set(section, rel, "permission", String(e.Permission))
			if err := buildLevel(m, f, level, absRoot, rel, prior, tsMap); err != nil {
				return err
			}

		case fs.TypeFile:
			section := LevelSection(level, SuffixFile)
			m.Set(section, rel, "user", String(e.User))
			m.Set(section, rel, "group", String(e.Group))
			m.Set(section, rel, "permission", String(e.Permission))
			m.Set(section, rel, "size", IntVal(e.Size))
			m.Set(section, rel, "inode", IntVal(int64(e.Inode)))
			m.Set(section, rel, "modification_time", IntVal(e.ModTime))
			applyUnchanged(m, prior, section, rel, e)

		case fs.TypeLink:
			section := LevelSection(level, SuffixLink)
			m.Set(section, rel, "user", String(e.User))
			m.Set(section, rel, "group", String(e.Group))
			m.Set(section, rel, "link_destination", String(e.LinkDestination))

			if level == LevelBase && strings.HasPrefix(rel, "pg_tblspc"+string(filepath.Separator)) {
				oid := filepath.Base(rel)
				name := tsMap[oid]
				if name == "" {
					name = oid
				}
				m.Set(SectionBackupTspace, name, "link", String(oid))
				m.Set(SectionBackupTspace, name, "path", String(e.LinkDestination))

				tsLevel := TablespaceLevel(name)
				m.Set(SectionBackupPath, tsLevel, "path", String(e.LinkDestination))
				if err := buildLevel(m, f, tsLevel, e.LinkDestination, "", prior, tsMap); err != nil {
					return err
				}
			}

		default:
			return fmt.Errorf("%w: entry %q has unknown type %q", errs.ErrAssert, rel, e.Type)
		}
	}
	return nil
}

// applyUnchanged implements the unchanged predicate I1: a file entry
// keeps (or acquires) a reference iff size, inode, and modification_time
// all match the prior manifest's entry for the same key.
func applyUnchanged(m, prior *Manifest, section, rel string, e fs.Entry) {
	if prior == nil {
		return
	}
	priorEntry, ok := prior.Entry(section, rel)
	if !ok {
		return
	}
	if priorEntry["size"].Int != e.Size {
		return
	}
	if priorEntry["inode"].Int != int64(e.Inode) {
		return
	}
	if priorEntry["modification_time"].Int != e.ModTime {
		return
	}

	refLabel := priorEntry["reference"].Str
	if refLabel == "" {
		refLabel = prior.Label()
	}
	if refLabel == "" {
		return
	}
	m.Set(section, rel, "reference", String(refLabel))
	if cs, ok := priorEntry["checksum"]; ok {
		m.Set(section, rel, "checksum", cs)
	}
	m.AddReference(refLabel)
}
