package paths

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ExpandSCML turns command-line arguments into SCML file paths. Files are
// kept as given; a directory is replaced by the .scml files directly inside
// it, sorted by name.
func ExpandSCML(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrap(err, "looking for scml files")
		}
		if !st.IsDir() {
			out = append(out, arg)
			continue
		}
		list, err := os.ReadDir(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "listing %s", arg)
		}
		var found []string
		for _, de := range list {
			if !de.IsDir() && strings.EqualFold(filepath.Ext(de.Name()), ".scml") {
				found = append(found, filepath.Join(arg, de.Name()))
			}
		}
		if len(found) == 0 {
			return nil, errors.Errorf("no .scml files in %s", arg)
		}
		sort.Strings(found)
		out = append(out, found...)
	}
	return out, nil
}
