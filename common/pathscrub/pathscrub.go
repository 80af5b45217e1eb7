// Package pathscrub maps arbitrary content names onto filesystem-safe strings.
package pathscrub

import (
	"regexp"
	"runtime"
	"strings"

	"torrent-info/common/errs"
)

type Convention string

const (
	Windows Convention = "windows"
	Mac     Convention = "mac"
	Linux   Convention = "linux"
)

type replacement struct {
	search  *regexp.Regexp
	replace string
}

// Order matters: trailing dots are stripped after illegal runs collapse.
var replacements = map[Convention][]replacement{
	Windows: {
		{regexp.MustCompile(`[:*?"<>|\s]+`), " "},
		{regexp.MustCompile(`[.\s]+([/\\]|$)`), "$1"},
	},
	Mac: {
		{regexp.MustCompile(`[:\s]+`), " "},
	},
	Linux: nil,
}

var drivePattern = regexp.MustCompile(`^[A-Za-z]:([/\\]|$)`)

// Detect returns the convention of the running platform.
func Detect() Convention {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin", "ios":
		return Mac
	default:
		return Linux
	}
}

// ParseConvention accepts windows, mac, linux, or auto/empty for Detect.
func ParseConvention(s string) (Convention, error) {
	switch c := Convention(strings.ToLower(strings.TrimSpace(s))); c {
	case Windows, Mac, Linux:
		return c, nil
	case "", "auto":
		return Detect(), nil
	default:
		return "", errs.Invalidf("unknown path convention %q", s)
	}
}

// Scrub strips characters that are illegal under c from dirty. With asFilename
// set, path separators are replaced with spaces first so the result is a single
// path component. A Windows drive prefix such as C:\ is kept as-is when
// scrubbing a path.
func Scrub(dirty string, c Convention, asFilename bool) (string, error) {
	rules, ok := replacements[c]
	if !ok {
		return "", errs.Invalidf("unknown path convention %q", c)
	}

	drive, path := "", dirty
	if c == Windows && !asFilename {
		drive, path = splitDrive(dirty)
	}
	if asFilename {
		path = strings.NewReplacer("/", " ", `\`, " ").Replace(path)
	}
	for _, r := range rules {
		path = r.search.ReplaceAllString(path, r.replace)
	}
	path = trimComponents(path, "/")
	if c == Windows {
		path = trimComponents(path, `\`)
	}
	path = strings.TrimSpace(path)

	if asFilename && dirty != "" && path == "" {
		return "", errs.Invalidf("nothing was left after stripping invalid characters from path %q", dirty)
	}
	return drive + path, nil
}

func splitDrive(p string) (string, string) {
	if drivePattern.MatchString(p) {
		return p[:2], p[2:]
	}
	return "", p
}

func trimComponents(path, sep string) string {
	parts := strings.Split(path, sep)
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return strings.Join(parts, sep)
}
