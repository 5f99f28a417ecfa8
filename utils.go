package filekeep

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var validFileNameRegex = regexp.MustCompile(`^[a-zA-Z0-9-_. ]+$`)

// IsValidFileName reports whether name only contains alphanumeric characters,
// spaces, dots, underscores and hyphens.
func IsValidFileName(name string) bool {
	return validFileNameRegex.MatchString(name)
}

// UploadPath returns the storage path for a new upload of fileName at time t:
// {prefix}/{epochMillis}_{fileName}. The file name is used as is.
func UploadPath(prefix string, t time.Time, fileName string) string {
	return fmt.Sprintf("%s/%d_%s", prefix, t.UnixMilli(), fileName)
}

// IsValidPath validates that a path string meets the requirements for a storage path.
// It checks that the path:
//   - is not empty, ".", or "/"
//   - is relative (does not start with "/")
//   - does not end with "/"
//   - does not contain ".." segments (path traversal); dots inside a name are fine
//   - does not contain "//" (empty segments)
//   - does not contain invalid characters: \ ? # ~
//   - is valid UTF-8
//   - does not contain "." segments (/., /./, or ending with /.)
//   - does not contain null bytes, control characters (< 0x20), DEL (0x7f), or whitespace other than a plain space
//
// Returns true if the path is valid, false otherwise.
func IsValidPath(p string) bool {
	if p == "" || p == "/" || p == "." {
		return false
	}

	if p[0] == '/' {
		return false
	}

	if strings.HasSuffix(p, "/") {
		return false
	}

	if p == ".." || strings.HasPrefix(p, "../") || strings.Contains(p, "/../") || strings.HasSuffix(p, "/..") {
		return false
	}

	if strings.Contains(p, "//") {
		return false
	}

	if strings.ContainsAny(p, `\?#~`) {
		return false
	}

	if !utf8.ValidString(p) {
		return false
	}

	if p == "/." || strings.Contains(p, "/./") || strings.HasSuffix(p, "/.") {
		return false
	}

	for _, r := range p {
		if r == ' ' {
			continue
		}
		if r == 0 || r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}
