package loader

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/highwayhash"
	"github.com/viant/afs"
)

// classEntry is one discovered .class payload awaiting parse, tagged with
// its originating archive so shadowed classes can be resolved deterministically.
type classEntry struct {
	fqn       string
	origin    string // directory path or archive URL this entry was read from
	data      []byte
	isLibrary bool
}

var hashKey = []byte("javalineage-shadow-resolution-00")

func contentHash(data []byte) uint64 {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0
	}
	_, _ = h.Write(data)
	return h.Sum64()
}

// resolveInput walks path (a directory, a plain archive, or a .war) and
// returns the deduplicated set of class entries to parse. Classes with the
// same fully qualified name discovered from more than one origin are
// resolved last-writer-wins: the entry encountered later in traversal order
// replaces the earlier one, recorded via a content hash so identical
// duplicates don't spuriously look like a conflict.
func resolveInput(ctx context.Context, inputPath string, cfg LoaderConfig) ([]classEntry, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("loader: input path does not exist: %s", inputPath)
	}

	var entries []classEntry
	seen := map[string]uint64{} // fqn -> content hash of the entry currently kept

	add := func(e classEntry) {
		hash := contentHash(e.data)
		if prevHash, ok := seen[e.fqn]; ok {
			if prevHash == hash {
				return
			}
			for i, existing := range entries {
				if existing.fqn == e.fqn {
					entries[i] = e
					break
				}
			}
			seen[e.fqn] = hash
			return
		}
		seen[e.fqn] = hash
		entries = append(entries, e)
	}

	switch {
	case info.IsDir():
		if err := walkClassDir(ctx, inputPath, inputPath, false, add); err != nil {
			return nil, err
		}
	case strings.EqualFold(filepath.Ext(inputPath), ".war"):
		if err := walkWar(ctx, inputPath, cfg, add); err != nil {
			return nil, err
		}
	default:
		if err := walkArchive(ctx, inputPath, inputPath, false, add); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// walkClassDir recursively walks a class directory root via afs, treating
// every .class file as belonging to the package implied by its path relative
// to root.
func walkClassDir(ctx context.Context, root, origin string, isLibrary bool, add func(classEntry)) error {
	fs := afs.New()
	visitor := func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".class") {
			return true, nil
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			return false, fmt.Errorf("loader: reading %s: %w", info.Name(), err)
		}
		fqn := classNameFromRelPath(path.Join(parent, info.Name()))
		add(classEntry{fqn: fqn, origin: origin, data: data, isLibrary: isLibrary})
		return true, nil
	}
	return fs.Walk(ctx, root, visitor)
}

// walkArchive reads every .class entry from a plain jar/zip-shaped archive.
func walkArchive(ctx context.Context, archivePath, origin string, isLibrary bool, add func(classEntry)) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("loader: opening archive %s: %w", archivePath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".class") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("loader: opening entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("loader: reading entry %s: %w", f.Name, err)
		}
		fqn := classNameFromRelPath(f.Name)
		add(classEntry{fqn: fqn, origin: origin, data: data, isLibrary: isLibrary})
	}
	return nil
}

// walkWar extracts the primary class root (WEB-INF/classes) plus, when
// IncludeLibraries is set, every library archive under WEB-INF/lib gated by
// LibraryFilters (glob on file name).
func walkWar(ctx context.Context, warPath string, cfg LoaderConfig, add func(classEntry)) error {
	zr, err := zip.OpenReader(warPath)
	if err != nil {
		return fmt.Errorf("loader: opening war %s: %w", warPath, err)
	}
	defer zr.Close()

	var libArchives []*zip.File
	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "WEB-INF/classes/") && strings.HasSuffix(f.Name, ".class"):
			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("loader: opening entry %s: %w", f.Name, err)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return fmt.Errorf("loader: reading entry %s: %w", f.Name, err)
			}
			rel := strings.TrimPrefix(f.Name, "WEB-INF/classes/")
			fqn := classNameFromRelPath(rel)
			add(classEntry{fqn: fqn, origin: warPath, data: data, isLibrary: false})
		case cfg.IncludeLibraries && strings.HasPrefix(f.Name, "WEB-INF/lib/") && strings.HasSuffix(f.Name, ".jar"):
			libArchives = append(libArchives, f)
		}
	}

	for _, lib := range libArchives {
		name := path.Base(lib.Name)
		if len(cfg.LibraryFilters) > 0 && !matchesAnyGlob(cfg.LibraryFilters, name) {
			continue
		}
		rc, err := lib.Open()
		if err != nil {
			return fmt.Errorf("loader: opening library %s: %w", lib.Name, err)
		}
		libBytes, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("loader: reading library %s: %w", lib.Name, err)
		}
		libZip, err := zip.NewReader(strings.NewReader(string(libBytes)), int64(len(libBytes)))
		if err != nil {
			return fmt.Errorf("loader: opening library archive %s: %w", lib.Name, err)
		}
		for _, cf := range libZip.File {
			if cf.FileInfo().IsDir() || !strings.HasSuffix(cf.Name, ".class") {
				continue
			}
			crc, err := cf.Open()
			if err != nil {
				return fmt.Errorf("loader: opening library entry %s: %w", cf.Name, err)
			}
			data, err := io.ReadAll(crc)
			crc.Close()
			if err != nil {
				return fmt.Errorf("loader: reading library entry %s: %w", cf.Name, err)
			}
			fqn := classNameFromRelPath(cf.Name)
			add(classEntry{fqn: fqn, origin: lib.Name, data: data, isLibrary: true})
		}
	}
	return nil
}

func classNameFromRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	rel = strings.TrimSuffix(rel, ".class")
	return strings.ReplaceAll(rel, "/", ".")
}

func matchesAnyGlob(globs []string, name string) bool {
	for _, g := range globs {
		if ok, err := filepath.Match(g, name); err == nil && ok {
			return true
		}
	}
	return false
}
