package main

import (
	"image"
	_ "image/png"
	"os"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/skairunner/kparserX/imageprint"
)

func previewAtlas(path string, mode imageprint.Mode) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return errors.Wrap(err, "decoding atlas page")
	}

	if *downsize {
		if ts, err := getTermSize(); err == nil {
			if ts.xPixel != 0 && ts.yPixel != 0 && (mode == imageprint.ModeRasTerm || mode == imageprint.ModeITerm) {
				// Images are shown at pixel size; cells need two columns per pixel.
				img = resize.Thumbnail(ts.xPixel/2, ts.yPixel/2, img, resize.Lanczos3)
			} else if ts.cols != 0 && ts.rows != 0 {
				img = resize.Thumbnail(ts.cols/2, ts.rows, img, resize.Lanczos3)
			}
		}
	}
	return imageprint.Print(os.Stdout, img, mode, *blanks)
}
