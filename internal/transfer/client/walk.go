package client

import (
	"os"
	"path/filepath"
	"sort"
)

// entry is one file discovered under a source tree, ready to be
// handed to transferFile.
type entry struct {
	sourcePath      string // native path to the regular file on disk
	destinationPath string // wire destination, "/"-joined
}

// emptyDirEntry is a directory enumerate found to contain no regular
// files, a candidate for the empty-directory marker.
type emptyDirEntry struct {
	destinationPath string // wire destination of the directory itself
}

// plan is the full set of work a transfer(source, destination) call
// must perform, computed up front so enumeration order is stable.
type plan struct {
	files      []entry
	emptyDirs  []emptyDirEntry
}

// buildPlan walks source (a single file or, when recursive is true, a
// directory tree) and computes every file's destination path as
// destinationRoot/source_basename/relative_path_from_source. Path
// separators on the wire are always "/".
func buildPlan(source, destinationRoot string, recursive bool) (*plan, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, &Error{Op: "stat source", Err: err}
	}

	base := filepath.Base(filepath.Clean(source))

	if !info.IsDir() {
		return &plan{files: []entry{{
			sourcePath:      source,
			destinationPath: joinWire(destinationRoot, base),
		}}}, nil
	}
	if !recursive {
		return nil, &Error{Op: "walk source", Err: errNotRecursive}
	}

	p := &plan{}
	dirHasFile := map[string]bool{}

	err = filepath.Walk(source, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == source {
			return nil
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		relWire := filepath.ToSlash(rel)
		if fi.IsDir() {
			if _, seen := dirHasFile[relWire]; !seen {
				dirHasFile[relWire] = false
			}
			return nil
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		p.files = append(p.files, entry{
			sourcePath:      path,
			destinationPath: joinWire(destinationRoot, base, relWire),
		})
		markAncestorsNonEmpty(dirHasFile, relWire)
		return nil
	})
	if err != nil {
		return nil, &Error{Op: "walk source", Err: err}
	}

	var emptyDirs []string
	for dir, hasFile := range dirHasFile {
		if !hasFile {
			emptyDirs = append(emptyDirs, dir)
		}
	}
	sort.Strings(emptyDirs)
	for _, dir := range emptyDirs {
		p.emptyDirs = append(p.emptyDirs, emptyDirEntry{
			destinationPath: joinWire(destinationRoot, base, dir),
		})
	}
	return p, nil
}

// markAncestorsNonEmpty records that every ancestor directory of
// relWire (a file's path relative to the walk root) contains at least
// one file.
func markAncestorsNonEmpty(dirHasFile map[string]bool, relWire string) {
	dir := filepath.ToSlash(filepath.Dir(relWire))
	for dir != "." && dir != "/" && dir != "" {
		dirHasFile[dir] = true
		dir = filepath.ToSlash(filepath.Dir(dir))
	}
}

func joinWire(parts ...string) string {
	out := trimTrailingSlash(parts[0])
	for _, p := range parts[1:] {
		if p == "" || p == "." {
			continue
		}
		out = out + "/" + p
	}
	return out
}

func trimTrailingSlash(s string) string {
	for len(s) > 1 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
