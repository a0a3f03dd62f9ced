package analyse

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thought-machine/analysis/src/fs"
	"github.com/thought-machine/analysis/src/issues"
	"github.com/thought-machine/analysis/src/report"
)

const debounceInterval = 50 * time.Millisecond

// Watch parses the given inputs, then watches them and parses each again whenever it changes.
// The callback is called with the results of every parse, from a single goroutine.
// It returns when the context is cancelled.
func (r *Runner) Watch(ctx context.Context, inputs []string, callback func(report.Input, *issues.Issues)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error setting up watcher: %w", err)
	}
	defer watcher.Close()
	// We watch the directories rather than the files themselves; lots of tools replace
	// their output files rather than writing to them in place.
	files := map[string]bool{}
	dirs := map[string]bool{}
	for _, input := range inputs {
		if input == fs.Stdin {
			return fmt.Errorf("can't watch standard input")
		}
		files[filepath.Clean(input)] = true
		if dir := filepath.Dir(input); !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			dirs[dir] = true
		}
	}
	for _, input := range inputs {
		callback(r.ParseOne(input))
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-watcher.Events:
			changed := map[string]bool{}
			addEvent(changed, files, event)
			// Quick debounce; gather up everything else that happens in the next brief period.
		outer:
			for {
				select {
				case event := <-watcher.Events:
					addEvent(changed, files, event)
				case <-time.After(debounceInterval):
					break outer
				}
			}
			for _, file := range sortedKeys(changed) {
				log.Notice("%s changed, parsing again", file)
				callback(r.ParseOne(file))
			}
		case err := <-watcher.Errors:
			log.Error("Error watching files: %s", err)
		}
	}
}

// addEvent records the file from the given event if it's one we care about.
func addEvent(changed, files map[string]bool, event fsnotify.Event) {
	name := filepath.Clean(event.Name)
	if !files[name] {
		return
	} else if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		log.Debug("Ignoring %s", event)
		return
	}
	changed[name] = true
}

func sortedKeys(m map[string]bool) []string {
	ret := make([]string, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
