//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package main

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/golang/glog"
	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/sys/unix"
)

type termSize struct {
	rows, cols     uint
	xPixel, yPixel uint
}

var kittyReply = regexp.MustCompile(`\[4;(\d+);(\d+)t`)

func getTermSize() (termSize, error) {
	f, err := os.OpenFile("/dev/tty", unix.O_NOCTTY|unix.O_CLOEXEC|unix.O_NDELAY|unix.O_RDWR, 0666)
	if err == nil {
		defer f.Close()
		// https://sw.kovidgoyal.net/kitty/graphics-protocol/#getting-the-window-size
		if sz, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ); err == nil {
			ts := termSize{rows: uint(sz.Row), cols: uint(sz.Col), xPixel: uint(sz.Xpixel), yPixel: uint(sz.Ypixel)}
			if ts.xPixel == 0 && ts.yPixel == 0 && os.Getenv("TERM") == "xterm-kitty" {
				ts.xPixel, ts.yPixel = kittyPixels(f)
			}
			return ts, nil
		}
	}
	w, h, err := terminal.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		return termSize{}, err
	}
	return termSize{rows: uint(h), cols: uint(w)}, nil
}

// kittyPixels asks the terminal for its size in pixels with CSI 14 t. The
// reply is <ESC>[4;<height>;<width>t. There is no timeout on the read.
func kittyPixels(tty *os.File) (w, h uint) {
	state, err := terminal.MakeRaw(int(tty.Fd()))
	if err != nil {
		return 0, 0
	}
	defer terminal.Restore(int(tty.Fd()), state)

	fmt.Printf("\033[14t")
	reader := bufio.NewReader(os.Stdin)
	if b, err := reader.ReadByte(); err != nil || b != 033 {
		return 0, 0
	}
	s, err := reader.ReadString('t')
	if err != nil {
		return 0, 0
	}
	m := kittyReply.FindStringSubmatch(s)
	if len(m) != 3 {
		glog.V(1).Infof("unexpected reply to window size query: %q", s)
		return 0, 0
	}
	height, errH := strconv.Atoi(m[1])
	width, errW := strconv.Atoi(m[2])
	if errH != nil || errW != nil {
		return 0, 0
	}
	return uint(width), uint(height)
}
