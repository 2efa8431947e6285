// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultExtension is the recognized script file extension.
	DefaultExtension = ".lua"
	// LibraryDirName is the prelude subdirectory inside a script directory.
	LibraryDirName = "lib"
)

type (
	// ScriptSource is a qualifying script file read from disk.
	ScriptSource struct {
		// FileName is the base name of the file (e.g., "incr_by.lua").
		FileName string
		// Path is the file's path as joined from the script directory.
		Path string
		// Identifier is FileName without the script extension.
		Identifier string
		// Contents is the raw file text.
		Contents string
	}

	// Result bundles the discovered sources with non-fatal diagnostics.
	Result struct {
		// Sources are ordered by file name.
		Sources []ScriptSource
		// Diagnostics lists skipped or suspicious entries.
		Diagnostics []Diagnostic
	}
)

// Identifier strips ext from name. The second result is false when name does
// not carry the extension.
func Identifier(name, ext string) (string, bool) {
	if !strings.HasSuffix(name, ext) {
		return "", false
	}
	return strings.TrimSuffix(name, ext), true
}

// Discover lists dir, selects every entry whose name ends in ext, and reads
// each into a ScriptSource. It fails if dir cannot be listed, if any selected
// file cannot be read, or if two identifiers collide under case folding.
func Discover(dir, ext string) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list script directory %s: %w", dir, err)
	}

	result := &Result{}
	seen := make(map[string]string) // folded identifier -> first file name

	for _, entry := range entries {
		name := entry.Name()
		id, ok := Identifier(name, ext)
		if !ok {
			continue
		}

		path := filepath.Join(dir, name)
		if id == "" {
			result.Diagnostics = append(result.Diagnostics, newDiagnostic(
				SeverityError, CodeIdentifierEmpty, path,
				"skipping %q: file name has no identifier before %q", name, ext))
			continue
		}

		folded := strings.ToLower(id)
		if first, dup := seen[folded]; dup {
			return nil, &ScriptCollisionError{
				Identifier: id,
				FirstFile:  filepath.Join(dir, first),
				SecondFile: path,
			}
		}
		seen[folded] = name

		if !IsValidIdentifier(id) {
			result.Diagnostics = append(result.Diagnostics, newDiagnostic(
				SeverityWarning, CodeIdentifierInvalid, path,
				"script identifier %q is not a bare identifier", id))
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read script %s: %w", path, err)
		}

		result.Sources = append(result.Sources, ScriptSource{
			FileName:   name,
			Path:       path,
			Identifier: id,
			Contents:   string(data),
		})
	}

	return result, nil
}
