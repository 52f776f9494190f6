/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

C4: the resume analyzer. Inspects an aborted temporary backup, decides
usable vs discard, and cleans the temp tree against the new manifest so
the copy executor (C6) can skip already-copied, still-unchanged files.

The original pgbackrest source has a latent bug in this exact code path:
it stores `defined(x) ? defined(x) : '<invalid>'`, which is always a
truthy boolean and never the field's actual value, so "usable" checks
against it are vacuous. fieldValue below returns the real value plus an
explicit presence flag, and every comparison in Usable uses that value,
not a boolean stand-in.
*/
package resume

import (
	"path/filepath"
	"sort"
	"strings"

	"pig/internal/backup/fs"
	"pig/internal/backup/manifest"
)

// fieldValue reads attr from the backup section of m, returning the
// actual string value and whether it was present at all. An absent field
// and a field present with an empty string are distinct: callers must
// not collapse them into a single "falsy" signal, which is exactly the
// bug being fixed here.
func fieldValue(m *manifest.Manifest, attr string) (string, bool) {
	v, ok := m.Get(manifest.SectionBackup, "", attr)
	if !ok {
		return "", false
	}
	return v.AsString(), true
}

// Usable reports whether the temp manifest left behind by an aborted
// backup can be resumed against newManifest: the version must match, and
// either both are full backups, or both share the same type and prior.
func Usable(tempManifest, newManifest *manifest.Manifest) bool {
	tempVersion, tempHasVersion := fieldValue(tempManifest, "version")
	newVersion, newHasVersion := fieldValue(newManifest, "version")
	if !tempHasVersion || !newHasVersion || tempVersion != newVersion {
		return false
	}

	tempType, _ := fieldValue(tempManifest, "type")
	newType, _ := fieldValue(newManifest, "type")

	if tempType == "full" && newType == "full" {
		return true
	}
	if tempType != newType {
		return false
	}

	tempPrior, tempHasPrior := fieldValue(tempManifest, "prior")
	newPrior, newHasPrior := fieldValue(newManifest, "prior")
	if tempHasPrior != newHasPrior {
		return false
	}
	return tempPrior == newPrior
}

// node is one entry discovered while walking the temp tree, used to
// order deletions files-before-directories, reverse-lexicographic within
// each kind, so children are always removed before their parent.
type node struct {
	relPath string
	isDir   bool
	size    int64
	modTime int64
}

// Clean removes every temp-tree entry that does not correspond to an
// unchanged entry in newManifest (as determined by the unchanged
// predicate applied during manifest building), unconditionally drops
// base/pg_xlog and base/pg_tblspc, and marks entries that do survive as
// Exists in newManifest so the copy executor (C6) can skip them.
//
// f is the filesystem primitive rooted such that relative paths passed
// to List/Remove resolve against tempRoot.
func Clean(f fs.FS, tempRoot string, newManifest *manifest.Manifest) error {
	for _, sub := range []string{filepath.Join("base", "pg_xlog"), filepath.Join("base", "pg_tblspc")} {
		if err := fs.RemoveTree(f, filepath.Join(tempRoot, sub)); err != nil {
			return err
		}
	}

	nodes, err := walk(f, tempRoot, "")
	if err != nil {
		return err
	}

	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].isDir != nodes[j].isDir {
			return !nodes[i].isDir // files first
		}
		return nodes[i].relPath > nodes[j].relPath // reverse-lexicographic
	})

	for _, n := range nodes {
		rel := n.relPath
		if strings.HasPrefix(rel, filepath.Join("base", "pg_xlog")) || strings.HasPrefix(rel, filepath.Join("base", "pg_tblspc")) {
			continue // already removed above
		}
		section, key, ok := sectionAndKeyForTempPath(rel)
		if !ok {
			if err := f.Remove(filepath.Join(tempRoot, rel)); err != nil {
				return err
			}
			continue
		}

		entry, exists := newManifest.Entry(section, key)
		if n.isDir {
			if exists {
				continue // directory presence alone is enough to keep it
			}
			if err := f.Remove(filepath.Join(tempRoot, rel)); err != nil {
				return err
			}
			continue
		}

		if exists && fileMatches(entry, n) {
			newManifest.Set(section, key, "exists", manifest.BoolVal(true))
			continue
		}
		if err := f.Remove(filepath.Join(tempRoot, rel)); err != nil {
			return err
		}
	}
	return nil
}

// fileMatches reports whether the temp file already on disk (described
// by n) matches the size and modification time the new manifest recorded
// for the same key — the signal that the prior copy already completed
// correctly and C6 can skip it.
func fileMatches(entry manifest.Entry, n node) bool {
	size, ok := entry["size"]
	if !ok || size.Int != n.size {
		return false
	}
	mtime, ok := entry["modification_time"]
	if !ok || mtime.Int != n.modTime {
		return false
	}
	return true
}

// sectionAndKeyForTempPath maps a path relative to the temp backup root
// (e.g. "base/PG_VERSION", "base/A/1.dat", or
// "tablespace/fastdisk/A/1.dat") onto the manifest (section, key) pair
// that would describe it as a file, or ok=false if the path does not look
// like a recorded entry (e.g. backup.manifest itself). The key is
// everything below the "base/" or "tablespace/<name>/" root, matching the
// full cluster-relative path the manifest builder uses (manifest/builder.go),
// not just its first path component.
func sectionAndKeyForTempPath(rel string) (section, key string, ok bool) {
	sep := string(filepath.Separator)
	head, rest, found := strings.Cut(rel, sep)
	if !found {
		return "", "", false
	}
	switch head {
	case "base":
		if rest == "" {
			return "", "", false
		}
		return "base:file", rest, true
	case "tablespace":
		tsName, fileKey, found := strings.Cut(rest, sep)
		if !found || fileKey == "" {
			return "", "", false
		}
		return "tablespace:" + tsName + ":file", fileKey, true
	default:
		return "", "", false
	}
}

func walk(f fs.FS, absRoot, relPrefix string) ([]node, error) {
	absDir := absRoot
	if relPrefix != "" {
		absDir = filepath.Join(absRoot, relPrefix)
	}
	entries, err := f.List(absDir)
	if err != nil {
		return nil, err
	}
	var out []node
	for _, e := range entries {
		rel := e.Name
		if relPrefix != "" {
			rel = filepath.Join(relPrefix, e.Name)
		}
		if e.Type == fs.TypeDir {
			out = append(out, node{relPath: rel, isDir: true})
			children, err := walk(f, absRoot, rel)
			if err != nil {
				return nil, err
			}
			out = append(out, children...)
		} else {
			out = append(out, node{relPath: rel, isDir: false, size: e.Size, modTime: e.ModTime})
		}
	}
	return out, nil
}
