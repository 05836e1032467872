// Package packer produces a texture atlas from a directory of sprite images:
// one page image plus the text manifest read by package atlas.
//
// Builtin packs in-process. Exec hands the job to an external tool such as
// the libGDX texture packer.
package packer

import (
	"image"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Result names the files a packer produced.
type Result struct {
	Image    string
	Manifest string
}

// Packer packs every sprite in inputDir into <outputDir>/<name>.png and
// <outputDir>/<name>.atlas.
type Packer interface {
	Pack(inputDir, outputDir, name string) (*Result, error)
}

func resultFor(outputDir, name string) *Result {
	return &Result{
		Image:    filepath.Join(outputDir, name+".png"),
		Manifest: filepath.Join(outputDir, name+".atlas"),
	}
}

// ImageSize returns the pixel dimensions of an image file without decoding
// its pixels.
func ImageSize(path string) (w, h int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, errors.Wrap(err, "opening packed image")
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "reading size of %s", path)
	}
	return cfg.Width, cfg.Height, nil
}
