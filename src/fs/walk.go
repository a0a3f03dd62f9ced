package fs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"
)

// Walk calls the callback for every file and directory under rootPath, in lexical order.
// It's implemented over github.com/karrick/godirwalk but the callback doesn't expose that.
// Hidden directories (those whose names start with a dot) beneath the root are skipped.
func Walk(rootPath string, callback func(name string, isDir bool) error) error {
	// Compatibility with filepath.Walk which allows passing a file as the root argument.
	if info, err := os.Stat(rootPath); err != nil {
		return err
	} else if !info.IsDir() {
		return callback(rootPath, false)
	}
	root := filepath.Clean(rootPath)
	return godirwalk.Walk(rootPath, &godirwalk.Options{
		FollowSymbolicLinks: true,
		Callback: func(name string, info *godirwalk.Dirent) error {
			isDir, err := info.IsDirOrSymlinkToDir()
			if err != nil {
				return err
			}
			if isDir && filepath.Clean(name) != root && strings.HasPrefix(filepath.Base(name), ".") {
				return godirwalk.SkipThis
			}
			return callback(name, isDir)
		},
	})
}
