// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ReadLibrary concatenates every file in dir whose name ends in ext, appending
// a single newline after each file's contents. A missing directory yields the
// empty prelude. Entries are taken in lexicographic order; any entry that
// cannot be read fails the whole call.
func ReadLibrary(dir, ext string) (string, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to list library directory %s: %w", dir, err)
	}

	var sb strings.Builder
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read library file %s: %w", path, err)
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}

	return sb.String(), nil
}

// Compose builds the body registered for a script: the prelude, one newline,
// then the script's own contents. The separator is written even when the
// prelude is empty so line numbers stay stable whether or not lib/ exists.
func Compose(prelude, contents string) string {
	return prelude + "\n" + contents
}
