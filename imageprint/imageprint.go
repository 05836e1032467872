// Package imageprint prints images on terminal, for previewing packed atlas
// pages.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"

	"github.com/gookit/color"
	"github.com/pkg/errors"
	"github.com/vincent-petithory/dataurl"
)

// Mode selects how pixels reach the terminal.
type Mode string

const (
	// Mode24Bit changes the background with 24-bit color escapes.
	Mode24Bit Mode = "24bit"
	// Mode256 leaves the color rendering to gookit/color, which falls back
	// to the 256 color palette where true color is not available.
	Mode256 Mode = "256"
	// ModeNone prints ASCII shades only.
	ModeNone Mode = "none"
	// ModeITerm uses iTerm2's inline image escape.
	ModeITerm Mode = "iterm"
	// ModeRasTerm picks Kitty, iTerm or Sixel, whichever the terminal
	// supports.
	ModeRasTerm Mode = "rasterm"
	// ModeDataURL prints the image as a PNG data: URL.
	ModeDataURL Mode = "dataurl"
)

// Modes lists every supported mode.
var Modes = []Mode{Mode24Bit, Mode256, ModeNone, ModeITerm, ModeRasTerm, ModeDataURL}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.Errorf("unknown preview mode %q (want one of %v)", s, Modes)
}

// Print draws i on w. blanks only affects the character modes: it prints
// spaces instead of brightness shades.
func Print(w io.Writer, i image.Image, mode Mode, blanks bool) error {
	switch mode {
	case Mode24Bit, Mode256, ModeNone:
		return printCells(w, i, mode, blanks)
	case ModeITerm:
		return printITerm(w, i, "atlas.png")
	case ModeRasTerm:
		return printRasTerm(w, i)
	case ModeDataURL:
		var buf bytes.Buffer
		if err := png.Encode(&buf, i); err != nil {
			return errors.Wrap(err, "encoding preview")
		}
		byt, err := dataurl.New(buf.Bytes(), "image/png").MarshalText()
		if err != nil {
			return errors.Wrap(err, "failed to encode data url")
		}
		_, err = fmt.Fprintf(w, "%s\n", byt)
		return err
	}
	return errors.Errorf("unknown preview mode %q", mode)
}

func printCells(w io.Writer, i image.Image, mode Mode, blanks bool) error {
	var buf bytes.Buffer
	for y := i.Bounds().Min.Y; y < i.Bounds().Max.Y; y++ {
		for x := i.Bounds().Min.X; x < i.Bounds().Max.X; x++ {
			shade(&buf, i.At(x, y), mode, blanks)
		}
		if mode != ModeNone {
			buf.WriteString("\x1b[0m")
		}
		buf.WriteString("\n")
	}
	_, err := buf.WriteTo(w)
	return err
}

func shade(buf *bytes.Buffer, col ic.Color, mode Mode, blanks bool) {
	cR, cG, cB, cA := col.RGBA()
	if cA == 0 {
		if mode != ModeNone {
			buf.WriteString("\x1b[0m")
		}
		buf.WriteString("  ")
		return
	}

	cell := "  "
	if !blanks {
		a := ((cR + cG + cB) / 3) >> 8
		switch {
		case a < 32:
			cell = ".."
		case a < 64:
			cell = "--"
		case a < 128:
			cell = "=="
		default:
			cell = "##"
		}
	}

	r, g, b := uint8(cR>>8), uint8(cG>>8), uint8(cB>>8)
	switch mode {
	case Mode24Bit:
		fmt.Fprintf(buf, "\x1b[48;2;%d;%d;%dm%s\x1b[0m", r, g, b, cell)
	case Mode256:
		buf.WriteString(color.RGB(r, g, b, true).Sprint(cell))
	default:
		buf.WriteString(cell)
	}
}

// printITerm draws an image using iTerm2's escape sequences.
//
// https://www.iterm2.com/documentation-images.html
func printITerm(w io.Writer, i image.Image, fn string) error {
	if !isTermItermWez() {
		return errors.New("terminal does not support iTerm inline images")
	}
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	b := &bytes.Buffer{}
	bEnc := base64.NewEncoder(base64.StdEncoding, b)
	if err := png.Encode(bEnc, i); err != nil {
		return errors.Wrap(err, "encoding preview")
	}
	bEnc.Close()
	_, err := fmt.Fprintf(w, "\n\033]1337;File=name=%s;inline=1;size=%d,width=%dpx;height=%dpx:%s\a\n", name, b.Len(), i.Bounds().Size().X, i.Bounds().Size().Y, b.String())
	return err
}
