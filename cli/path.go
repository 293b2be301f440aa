package cli

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/ardnew/mung"

	"github.com/ardnew/calc/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// configPathEnv returns the name of the environment variable holding extra
// configuration directories.
func configPathEnv() string { return pkg.EnvPrefix() + "_CONFIG_PATH" }

// searchPath returns the directories searched for configuration files. The
// directories listed in [configPathEnv] precede the user configuration
// directory; duplicates and empty entries are removed.
func searchPath() []string {
	list := mung.Make(
		mung.WithSubjectItems(pkg.ConfigDir()),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(filepath.SplitList(os.Getenv(configPathEnv()))...),
		mung.WithFilter(func(dir string) bool { return dir != "" }),
	).String()

	var dirs []string

	for _, dir := range filepath.SplitList(list) {
		dir = filepath.Clean(dir)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

// configFiles returns the candidate configuration file paths with the given
// extension, one per directory in [searchPath].
func configFiles(ext string) []string {
	dirs := searchPath()
	files := make([]string, len(dirs))

	for i, dir := range dirs {
		files[i] = filepath.Join(dir, baseConfig+ext)
	}

	return files
}

// configPath returns the path of the configuration file written by
// default, in the user configuration directory.
func configPath(ext string) string {
	return filepath.Join(pkg.ConfigDir(), baseConfig+ext)
}
