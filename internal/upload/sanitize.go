package upload

import (
	"path/filepath"
	"strings"
)

// SanitizeFilename reduces a client-supplied filename to a safe flat
// name. Path components, separators, NUL bytes, and leading/trailing
// dots are stripped before the name touches the filesystem; the
// extension is preserved when the name has to be truncated.
func SanitizeFilename(filename string) string {
	// Drop any client-supplied directory part, for either separator.
	filename = filepath.Base(filename)
	if i := strings.LastIndexByte(filename, '\\'); i >= 0 {
		filename = filename[i+1:]
	}

	filename = strings.ReplaceAll(filename, "/", "_")
	filename = strings.ReplaceAll(filename, "\\", "_")
	filename = strings.ReplaceAll(filename, "\x00", "")
	filename = strings.Trim(filename, " .")

	if len(filename) > 255 {
		ext := filepath.Ext(filename)
		name := filename[:len(filename)-len(ext)]
		filename = name[:255-len(ext)] + ext
	}

	return filename
}
