package config

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// windowsEnvRef matches %VAR% references.
var windowsEnvRef = regexp.MustCompile(`%([^%]+)%`)

// resolvePath expands p and anchors a relative result at root.
// An empty p stays empty so Validate can report it.
func resolvePath(p, root string) string {
	p = expandPath(p)
	if p == "" || root == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// expandPath expands $VAR references, %VAR% on Windows, and a leading ~
// for the current user's home directory.
func expandPath(p string) string {
	if p == "" {
		return ""
	}
	p = os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		p = windowsEnvRef.ReplaceAllStringFunc(p, func(ref string) string {
			if v, ok := os.LookupEnv(ref[1 : len(ref)-1]); ok {
				return v
			}
			return ref
		})
	}
	return expandHome(p)
}

// expandHome replaces "~" and "~/..." (also "~\..." on Windows). Other
// users' homes ("~bob") are left alone.
func expandHome(p string) string {
	rest, ok := strings.CutPrefix(p, "~")
	if !ok {
		return p
	}
	if rest != "" && !isHomeSep(rest[0]) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if rest == "" {
		return home
	}
	return filepath.Join(home, rest[1:])
}

func isHomeSep(c byte) bool {
	return c == '/' || (runtime.GOOS == "windows" && c == '\\')
}
