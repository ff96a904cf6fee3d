package layout

import (
	"fmt"
	"io"
	"os"
)

// Check prints the state of every managed path under the root. When fix is
// true, missing directories of the skeleton are created. It returns the number
// of problems that remain.
func Check(w io.Writer, l Layout, fix bool) (int, error) {
	fmt.Fprintf(w, "Install root: %s\n", l.Root)

	if _, err := os.Stat(l.Root); os.IsNotExist(err) {
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", l.Root)
		if !fix {
			fmt.Fprintln(w, "         Run the updater once with network access to install")
			return 1, nil
		}
	}

	problems := 0
	for _, dir := range l.Skeleton() {
		if checkDir(w, dir, fix) {
			problems++
		}
	}

	files := []struct {
		path string
		desc string
	}{
		{l.Launcher(), "launcher"},
		{l.ContentTool(), "content sync tool"},
		{l.Installer(), "loader installer"},
		{l.LocalState(), "installed version record"},
	}
	for _, f := range files {
		if Exists(f.path) {
			fmt.Fprintf(w, "  [ OK ] %s (%s)\n", f.path, f.desc)
			continue
		}
		fmt.Fprintf(w, "  [MISS] %s (%s)\n", f.path, f.desc)
		problems++
	}

	if Exists(l.SettingsMarker()) {
		fmt.Fprintln(w, "  [ OK ] first-run settings applied")
	} else {
		fmt.Fprintln(w, "  [INFO] first-run settings not applied yet")
	}
	return problems, nil
}

// Skeleton lists the directories created on first run.
func (l Layout) Skeleton() []string {
	return []string{
		l.Game(),
		l.Mods(),
		l.Game() + string(os.PathSeparator) + ConfigDir,
		l.Updater(),
	}
}

// checkDir reports whether dir is still a problem after the optional fix.
func checkDir(w io.Writer, dir string, fix bool) bool {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Fprintf(w, "  [ OK ] %s\n", dir)
		return false
	}
	if err == nil {
		fmt.Fprintf(w, "  [FAIL] %s is not a directory\n", dir)
		return true
	}
	if !fix {
		fmt.Fprintf(w, "  [MISS] %s\n", dir)
		return true
	}
	if mkErr := os.MkdirAll(dir, DirPerm); mkErr != nil {
		fmt.Fprintf(w, "  [FAIL] creating %s: %v\n", dir, mkErr)
		return true
	}
	fmt.Fprintf(w, "  [FIX ] created %s\n", dir)
	return false
}
