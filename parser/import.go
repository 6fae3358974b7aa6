package parser

import (
	"os/user"
	"path/filepath"
	"strings"
)

// ResolvePath of an imported file. The home directory is expanded from ~,
// and relative paths are resolved against dir, the directory of the
// importing file.
func ResolvePath(path, dir string) (string, error) {
	path, err := expandHome(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}
	return filepath.Abs(path)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	usr, err := user.Current()
	if err != nil {
		return "", err
	}
	dir := usr.HomeDir
	if path == "~" {
		return dir, nil
	}
	return filepath.Join(dir, path[2:]), nil
}
