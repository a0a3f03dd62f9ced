package fs

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Stdin is the name used on the command line for standard input.
const Stdin = "-"

// CollectInputs expands the given paths into a list of input files.
// Files are returned as given; directories are walked and contribute every file whose name
// ends in one of the given suffixes (or every file, if there are none), sorted.
// Files named more than once are only returned the first time.
func CollectInputs(paths []string, suffixes []string) ([]string, error) {
	seen := map[string]bool{}
	ret := []string{}
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			ret = append(ret, path)
		}
	}
	for _, path := range paths {
		if path == Stdin {
			add(path)
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("invalid input %s: %w", path, err)
		} else if !info.IsDir() {
			add(path)
			continue
		}
		files := []string{}
		if err := Walk(path, func(name string, isDir bool) error {
			if !isDir && hasSuffix(name, suffixes) {
				files = append(files, name)
			}
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", path, err)
		}
		sort.Strings(files)
		log.Debug("Found %d inputs in %s", len(files), path)
		for _, file := range files {
			add(file)
		}
	}
	return ret, nil
}

func hasSuffix(name string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
