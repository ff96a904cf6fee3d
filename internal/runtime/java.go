package runtime

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/failure"
	"github.com/chenjicheng/upmc/internal/layout"
)

// FindJava locates a java executable. The bundled runtime under the install
// root wins, then JAVA_HOME, then PATH. When none is found the error is
// classified ComponentRuntimeMissing and its hint names downloadURL.
func FindJava(l layout.Layout, downloadURL string) (string, error) {
	candidates := []struct {
		source string
		path   string
	}{
		{"bundled", l.BundledJava()},
	}
	if home := os.Getenv("JAVA_HOME"); home != "" {
		candidates = append(candidates, struct {
			source string
			path   string
		}{"JAVA_HOME", filepath.Join(home, layout.JavaBinary())})
	}

	for _, c := range candidates {
		if info, err := os.Stat(c.path); err == nil && !info.IsDir() {
			log.WithField("source", c.source).Debugf("using java at %s", c.path)
			return c.path, nil
		}
	}

	if p, err := exec.LookPath("java"); err == nil {
		log.WithField("source", "PATH").Debugf("using java at %s", p)
		return p, nil
	}

	return "", &failure.Error{
		Kind: failure.ComponentRuntimeMissing,
		Op:   "locating java",
		Err:  fmt.Errorf("no Java runtime found in %s, JAVA_HOME or PATH", l.Runtime()),
		Hint: "install Java 21 from " + downloadURL,
	}
}
