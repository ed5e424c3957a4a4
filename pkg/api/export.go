package api

import (
	"fmt"
	"regexp"
)

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ExportFilename builds "<name>_<unix-ms>.<format>" with every
// non-alphanumeric character of the name replaced by an underscore.
func ExportFilename(name string, ms int64, format ExportFormat) string {
	return fmt.Sprintf("%s_%d.%s", unsafeFilename.ReplaceAllString(name, "_"), ms, format)
}
