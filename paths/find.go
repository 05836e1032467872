// Package paths locates the settings file and the SCML projects named on the
// command line.
package paths

import (
	"os"
	"path/filepath"

	"github.com/golang/glog"
)

// possibleDirs lists the directories Find searches, in order: the working
// directory, the executable's directory and ~/.config/kparser.
func possibleDirs() []string {
	dirs := []string{"."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "kparser"))
	}
	return dirs
}

// Find locates the passed file shortname and returns a path to find the file
// at, or "" if it is in none of the searched directories.
//
// For example, for "kparser.yml" it may return
// "/home/user/.config/kparser/kparser.yml".
func Find(fileName string) string {
	return find(fileName, possibleDirs())
}

func find(fileName string, dirs []string) string {
	for _, dir := range dirs {
		path := filepath.Join(dir, fileName)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			glog.V(1).Infof("paths.Find(%q)=%s", fileName, path)
			return path
		}
	}
	return ""
}
