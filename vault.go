package pdfembed

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Document is an opaque handle to a resolved source document.
type Document interface {
	// Path returns the vault-relative path, used as the stable cache identity.
	Path() string
}

// Vault is the capability boundary to the host file system. It resolves
// link text to documents and supplies their bytes. Implementations may be
// backed by a directory, an archive, or a test double.
type Vault interface {
	// ResolveLink maps link text to the best-matching document, using the
	// linking file's location for relative resolution. The boolean is false
	// when no match exists.
	ResolveLink(linkText, fromPath string) (Document, bool)

	// LookupPath looks up an exact vault-relative path.
	LookupPath(path string) (Document, bool)

	// ReadBytes returns the full content of a resolved document.
	ReadBytes(ctx context.Context, d Document) ([]byte, error)
}

// Resolve maps an embed's link text to a PDF document handle.
//
// Link resolution is attempted first (relative links, basename shorthand per
// vault semantics); a match is accepted only if its path looks like a PDF.
// Failing that, the link text is tried as an exact path. A miss is a
// recognized non-error outcome: many embeds reference non-PDF documents or
// unresolved links, and callers skip those silently.
func Resolve(v Vault, linkText, fromPath string) (Document, bool) {
	if d, ok := v.ResolveLink(linkText, fromPath); ok && pdfExtPattern.MatchString(d.Path()) {
		return d, true
	}
	if d, ok := v.LookupPath(linkText); ok && pdfExtPattern.MatchString(d.Path()) {
		return d, true
	}
	return nil, false
}

// fileDocument is the Document implementation for DirVault.
type fileDocument struct {
	relPath string // forward-slash, vault-relative
	absPath string
}

func (d *fileDocument) Path() string { return d.relPath }

// DirVault is a filesystem-backed Vault rooted at a directory.
//
// The file index is built once at construction; files added to the
// directory afterwards are not visible. Link resolution follows wiki-link
// semantics: a path relative to the linking file wins, then a root-relative
// path, then a unique-basename shorthand where the shortest matching path
// is preferred.
type DirVault struct {
	root   string
	files  map[string]string   // relative path -> absolute path
	byBase map[string][]string // basename -> relative paths
}

// NewDirVault indexes the directory tree rooted at root.
func NewDirVault(root string) (*DirVault, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	v := &DirVault{
		root:   absRoot,
		files:  make(map[string]string),
		byBase: make(map[string][]string),
	}

	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories (.git, .obsidian) are not addressable.
			if p != absRoot && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		v.files[rel] = p
		base := path.Base(rel)
		v.byBase[base] = append(v.byBase[base], rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Deterministic shorthand resolution: shortest path first, then lexical.
	for _, paths := range v.byBase {
		sort.Slice(paths, func(i, j int) bool {
			if len(paths[i]) != len(paths[j]) {
				return len(paths[i]) < len(paths[j])
			}
			return paths[i] < paths[j]
		})
	}

	return v, nil
}

// Root returns the absolute root directory of the vault.
func (v *DirVault) Root() string { return v.root }

// ResolveLink resolves link text relative to fromPath.
func (v *DirVault) ResolveLink(linkText, fromPath string) (Document, bool) {
	linkText = filepath.ToSlash(strings.TrimSpace(linkText))
	if linkText == "" {
		return nil, false
	}

	// Relative to the linking file's directory.
	if fromPath != "" {
		candidate := path.Clean(path.Join(path.Dir(filepath.ToSlash(fromPath)), linkText))
		if d, ok := v.lookup(candidate); ok {
			return d, true
		}
	}

	// Vault-root-relative.
	if d, ok := v.lookup(path.Clean(linkText)); ok {
		return d, true
	}

	// Basename shorthand for bare names like "doc.pdf".
	if !strings.Contains(linkText, "/") {
		if paths := v.byBase[linkText]; len(paths) > 0 {
			rel := paths[0]
			return &fileDocument{relPath: rel, absPath: v.files[rel]}, true
		}
	}

	return nil, false
}

// LookupPath looks up an exact vault-relative path.
func (v *DirVault) LookupPath(p string) (Document, bool) {
	return v.lookup(path.Clean(filepath.ToSlash(strings.TrimSpace(p))))
}

func (v *DirVault) lookup(rel string) (Document, bool) {
	abs, ok := v.files[rel]
	if !ok {
		return nil, false
	}
	return &fileDocument{relPath: rel, absPath: abs}, true
}

// ReadBytes reads the document's content from disk.
func (v *DirVault) ReadBytes(ctx context.Context, d Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fd, ok := d.(*fileDocument); ok {
		return os.ReadFile(fd.absPath)
	}
	return os.ReadFile(filepath.Join(v.root, filepath.FromSlash(d.Path())))
}

// Compile-time interface check.
var _ Vault = (*DirVault)(nil)
