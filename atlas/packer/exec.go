package packer

import (
	"os"
	"os/exec"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Exec runs an external packer. The placeholders {input}, {output} and
// {name} are substituted in Args.
type Exec struct {
	Command string
	Args    []string
}

// Pack implements Packer.
func (e *Exec) Pack(inputDir, outputDir, name string) (*Result, error) {
	r := strings.NewReplacer("{input}", inputDir, "{output}", outputDir, "{name}", name)
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = r.Replace(a)
	}

	glog.V(1).Infof("packer: running %s %s", e.Command, strings.Join(args, " "))
	out, err := exec.Command(e.Command, args...).CombinedOutput()
	if len(out) > 0 {
		glog.V(2).Infof("packer output:\n%s", out)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "running packer %s: %s", e.Command, strings.TrimSpace(string(out)))
	}

	res := resultFor(outputDir, name)
	for _, p := range []string{res.Image, res.Manifest} {
		if _, err := os.Stat(p); err != nil {
			return nil, errors.Wrapf(err, "packer %s did not produce %s", e.Command, p)
		}
	}
	return res, nil
}
