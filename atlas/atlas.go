package atlas

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bradfitz/iter"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const (
	preambleLines = 6
	recordLines   = 7
)

// Entry is one packed sprite placement.
type Entry struct {
	Name             string
	Rotated          bool
	X, Y             int
	W, H             int
	OriginX, OriginY int
	OffsetX, OffsetY int
	Index            int
}

// Key identifies an entry; the same base name appears once per frame.
type Key struct {
	Name  string
	Index int
}

func (e Entry) Key() Key {
	return Key{Name: e.Name, Index: e.Index}
}

func (e Entry) String() string {
	return fmt.Sprintf("[atlas entry %q:%d]", e.Name, e.Index)
}

// Page is the header of the (single) page described by the manifest. It is
// informational; nothing downstream depends on it.
type Page struct {
	Image         string
	Width, Height int
	Format        string
	Filter        string
	Repeat        string
}

// Manifest is a parsed atlas manifest.
type Manifest struct {
	Page    Page
	Entries []Entry

	// Skipped counts records that could not be parsed.
	Skipped int
}

// ParseFile opens and parses the manifest at path.
func ParseFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening atlas manifest")
	}
	defer f.Close()
	m, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing atlas manifest %s", path)
	}
	return m, nil
}

// Parse reads a manifest. Only I/O errors are returned; malformed records are
// counted in Manifest.Skipped.
func Parse(r io.Reader) (*Manifest, error) {
	sc := bufio.NewScanner(r)
	m := &Manifest{}

	var pre []string
	for range iter.N(preambleLines) {
		line, ok := nextLine(sc)
		if !ok {
			break
		}
		pre = append(pre, line)
	}
	m.Page = parsePage(pre)

	for {
		lines := make([]string, 0, recordLines)
		for range iter.N(recordLines) {
			line, ok := nextLine(sc)
			if !ok {
				break
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			break
		}
		e, err := parseRecord(lines)
		if err != nil {
			glog.Warningf("atlas: skipping record %d (%q): %v", len(m.Entries)+m.Skipped, lines[0], err)
			m.Skipped++
			continue
		}
		glog.V(3).Infof("atlas: %v at %d,%d size %dx%d", e, e.X, e.Y, e.W, e.H)
		m.Entries = append(m.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading atlas manifest")
	}
	return m, nil
}

func nextLine(sc *bufio.Scanner) (string, bool) {
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimRight(sc.Text(), "\r"), true
}

func parseRecord(lines []string) (Entry, error) {
	if len(lines) < recordLines {
		return Entry{}, errors.Errorf("truncated record: %d of %d lines", len(lines), recordLines)
	}
	e := Entry{Name: lines[0]}
	e.Rotated = strings.EqualFold(one(lines[1]), "true")

	var err error
	if e.X, e.Y, err = pair(lines[2]); err != nil {
		return Entry{}, errors.Wrap(err, "xy")
	}
	if e.W, e.H, err = pair(lines[3]); err != nil {
		return Entry{}, errors.Wrap(err, "size")
	}
	if e.OriginX, e.OriginY, err = pair(lines[4]); err != nil {
		return Entry{}, errors.Wrap(err, "orig")
	}
	if e.OffsetX, e.OffsetY, err = pair(lines[5]); err != nil {
		return Entry{}, errors.Wrap(err, "offset")
	}
	if e.Index, err = strconv.Atoi(one(lines[6])); err != nil {
		return Entry{}, errors.Wrap(err, "index")
	}
	return e, nil
}

// one returns the trimmed text after the last colon.
func one(line string) string {
	return strings.TrimSpace(line[strings.LastIndex(line, ":")+1:])
}

// fields splits the text after the last colon on commas.
func fields(line string) []string {
	parts := strings.Split(line[strings.LastIndex(line, ":")+1:], ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func pair(line string) (int, int, error) {
	parts := fields(line)
	if len(parts) < 2 {
		return 0, 0, errors.Errorf("expected two values in %q", line)
	}
	first, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, err
	}
	second, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return first, second, nil
}

func parsePage(lines []string) Page {
	var p Page
	for i, line := range lines {
		switch {
		case i == 1:
			p.Image = strings.TrimSpace(line)
		case strings.HasPrefix(line, "size:"):
			p.Width, p.Height, _ = pair(line)
		case strings.HasPrefix(line, "format:"):
			p.Format = one(line)
		case strings.HasPrefix(line, "filter:"):
			p.Filter = strings.Join(fields(line), ",")
		case strings.HasPrefix(line, "repeat:"):
			p.Repeat = one(line)
		}
	}
	return p
}

// Write emits a manifest in the format Parse reads.
func Write(w io.Writer, page Page, entries []Entry) error {
	bw := bufio.NewWriter(w)
	format, filter, repeat := page.Format, page.Filter, page.Repeat
	if format == "" {
		format = "RGBA8888"
	}
	if filter == "" {
		filter = "Nearest,Nearest"
	}
	if repeat == "" {
		repeat = "none"
	}
	fmt.Fprintf(bw, "\n%s\n", page.Image)
	fmt.Fprintf(bw, "size: %d, %d\n", page.Width, page.Height)
	fmt.Fprintf(bw, "format: %s\n", format)
	fmt.Fprintf(bw, "filter: %s\n", strings.Replace(filter, ",", ", ", -1))
	fmt.Fprintf(bw, "repeat: %s\n", repeat)
	for _, e := range entries {
		fmt.Fprintf(bw, "%s\n", e.Name)
		fmt.Fprintf(bw, "  rotate: %t\n", e.Rotated)
		fmt.Fprintf(bw, "  xy: %d, %d\n", e.X, e.Y)
		fmt.Fprintf(bw, "  size: %d, %d\n", e.W, e.H)
		fmt.Fprintf(bw, "  orig: %d, %d\n", e.OriginX, e.OriginY)
		fmt.Fprintf(bw, "  offset: %d, %d\n", e.OffsetX, e.OffsetY)
		fmt.Fprintf(bw, "  index: %d\n", e.Index)
	}
	return errors.Wrap(bw.Flush(), "writing atlas manifest")
}
