package imaging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// stackExtensions are the recognized stack file formats, checked
// case-insensitively against directory entries in raw/.
var stackExtensions = map[string]bool{
	".tif":  true,
	".tiff": true,
	".npy":  true,
}

// FindStack locates the raw imaging stack for a recording: the first
// entry in <recordingPath>/raw/ with a recognized stack extension,
// taking entries in lexicographic filename order so repeated runs over
// the same directory always pick the same file.
//
// It returns ErrNoStackFound if raw/ is missing, empty, or contains no
// recognized file.
func FindStack(recordingPath string) (string, error) {
	rawDir := filepath.Join(recordingPath, "raw")

	entries, err := os.ReadDir(rawDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s does not exist", ErrNoStackFound, rawDir)
		}
		return "", fmt.Errorf("reading %s: %w", rawDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if stackExtensions[strings.ToLower(filepath.Ext(name))] {
			return filepath.Join(rawDir, name), nil
		}
	}
	return "", fmt.Errorf("%w: no supported stack file in %s", ErrNoStackFound, rawDir)
}

// LoadStack reads a stack file, dispatching on its extension. Supported
// formats are multi-page TIFF (.tif/.tiff) and NumPy array
// serialization (.npy).
func LoadStack(path string) (*Stack, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return ReadTIFF(path)
	case ".npy":
		return ReadNPY(path)
	default:
		return nil, fmt.Errorf("%w: unsupported stack format %q", ErrNoStackFound, filepath.Ext(path))
	}
}
