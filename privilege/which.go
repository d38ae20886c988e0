package privilege

import (
	"os"
	"path/filepath"
	"strings"

	"pezzo-go/errors"
)

// isExecutableFile reports whether path is a regular file with any execute
// bit set.
func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

// ResolveCommand turns the invoker's command word into the absolute,
// symlink-resolved path the policy engine matches against and exec receives.
// A bare name is searched on the sanitised PATH, never the invoker's.
func ResolveCommand(name string) (string, error) {
	return resolveCommand(name, SanitisedPath)
}

func resolveCommand(name, searchPath string) (string, error) {
	if name == "" {
		return "", errors.ErrCommandNotFound
	}

	var candidate string
	if strings.ContainsRune(name, '/') {
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", errors.Wrap(err, errors.KindConfig, "resolve")
		}
		candidate = abs
	} else {
		for _, dir := range filepath.SplitList(searchPath) {
			if dir == "" {
				continue
			}
			p := filepath.Join(dir, name)
			if isExecutableFile(p) {
				candidate = p
				break
			}
		}
		if candidate == "" {
			return "", errors.New(errors.KindConfig, "resolve", "command "+name+" not found")
		}
	}

	if !isExecutableFile(candidate) {
		return "", errors.New(errors.KindConfig, "resolve", "command "+name+" not found")
	}

	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return "", errors.Wrap(err, errors.KindConfig, "resolve")
	}
	return resolved, nil
}
