package locator

import (
	"runtime"
	"strings"
)

// Artifact filenames follow the convention
//
//	<platform-prefix><name>@<toolchain><platform-suffix>
//
// for example lib_foo@stable-2024-01-01.so on linux. The name may contain a
// literal '@' by escaping it with a backslash; the split happens at the
// first unescaped '@'.

// Prefix returns the shared-library filename prefix of the host platform.
func Prefix() string {
	if runtime.GOOS == "windows" {
		return ""
	}
	return "lib"
}

// Suffix returns the shared-library filename suffix of the host platform.
func Suffix() string {
	switch runtime.GOOS {
	case "windows":
		return ".dll"
	case "darwin":
		return ".dylib"
	default:
		return ".so"
	}
}

// Filename renders the artifact filename for a name and toolchain on the
// host platform, escaping any '@' in the name.
func Filename(name, toolchain string) string {
	escaped := strings.ReplaceAll(name, "@", `\@`)
	return Prefix() + escaped + "@" + toolchain + Suffix()
}

// ParseFilename splits an artifact filename into its name and toolchain.
// It reports ok=false for any filename that does not follow the convention;
// such entries are skipped by the scan, never treated as errors.
func ParseFilename(filename string) (name, toolchain string, ok bool) {
	prefix, suffix := Prefix(), Suffix()
	if !strings.HasPrefix(filename, prefix) || !strings.HasSuffix(filename, suffix) {
		return "", "", false
	}
	stem := filename[len(prefix) : len(filename)-len(suffix)]

	at := indexUnescapedAt(stem)
	if at < 0 {
		return "", "", false
	}
	name = strings.ReplaceAll(stem[:at], `\@`, "@")
	toolchain = stem[at+1:]
	if name == "" || toolchain == "" {
		return "", "", false
	}
	return name, toolchain, true
}

func indexUnescapedAt(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != '@' {
			continue
		}
		if i > 0 && s[i-1] == '\\' {
			continue
		}
		return i
	}
	return -1
}
