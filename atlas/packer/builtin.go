package packer

import (
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"

	"github.com/skairunner/kparserX/atlas"
)

const defaultMaxSize = 2048

// Builtin packs sprites onto a single square power-of-two page, row by row.
// Sprites are never rotated.
type Builtin struct {
	// Padding is the gap in pixels between sprites.
	Padding int
	// MaxSize bounds the page side. Zero means 2048.
	MaxSize int
	// Scale resizes every sprite before packing. Zero means 1.
	Scale float64
}

type sprite struct {
	name  string
	index int
	img   image.Image
	x, y  int
}

func (s *sprite) w() int { return s.img.Bounds().Dx() }
func (s *sprite) h() int { return s.img.Bounds().Dy() }

// Pack implements Packer.
func (b *Builtin) Pack(inputDir, outputDir, name string) (*Result, error) {
	sprites, err := b.load(inputDir)
	if err != nil {
		return nil, err
	}
	side, err := b.place(sprites)
	if err != nil {
		return nil, errors.Wrapf(err, "packing %s", inputDir)
	}

	page := image.NewNRGBA(image.Rect(0, 0, side, side))
	entries := make([]atlas.Entry, 0, len(sprites))
	for _, s := range sprites {
		dst := image.Rect(s.x, s.y, s.x+s.w(), s.y+s.h())
		draw.Draw(page, dst, s.img, s.img.Bounds().Min, draw.Src)
		entries = append(entries, atlas.Entry{
			Name:    s.name,
			X:       s.x,
			Y:       s.y,
			W:       s.w(),
			H:       s.h(),
			OriginX: s.w(),
			OriginY: s.h(),
			Index:   s.index,
		})
	}

	res := resultFor(outputDir, name)
	if err := writePNG(res.Image, page); err != nil {
		return nil, err
	}
	f, err := os.Create(res.Manifest)
	if err != nil {
		return nil, errors.Wrap(err, "creating atlas manifest")
	}
	defer f.Close()
	if err := atlas.Write(f, atlas.Page{Image: filepath.Base(res.Image), Width: side, Height: side}, entries); err != nil {
		return nil, err
	}
	glog.V(1).Infof("packer: %d sprites from %s on a %dx%d page", len(sprites), inputDir, side, side)
	return res, errors.Wrap(f.Close(), "closing atlas manifest")
}

// load decodes every PNG in dir, ordered by name and then frame index.
func (b *Builtin) load(dir string) ([]*sprite, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "listing sprites")
	}
	var sprites []*sprite
	for _, fi := range files {
		if fi.IsDir() || !strings.EqualFold(filepath.Ext(fi.Name()), ".png") {
			continue
		}
		img, err := readPNG(filepath.Join(dir, fi.Name()))
		if err != nil {
			return nil, err
		}
		if b.Scale > 0 && b.Scale != 1 {
			w := uint(float64(img.Bounds().Dx())*b.Scale + 0.5)
			h := uint(float64(img.Bounds().Dy())*b.Scale + 0.5)
			img = resize.Resize(w, h, img, resize.Lanczos3)
		}
		name, index := SpriteName(fi.Name())
		sprites = append(sprites, &sprite{name: name, index: index, img: img})
	}
	sort.SliceStable(sprites, func(i, j int) bool {
		if sprites[i].name != sprites[j].name {
			return sprites[i].name < sprites[j].name
		}
		return sprites[i].index < sprites[j].index
	})
	return sprites, nil
}

// place assigns positions and returns the page side.
func (b *Builtin) place(sprites []*sprite) (int, error) {
	limit := b.MaxSize
	if limit <= 0 {
		limit = defaultMaxSize
	}
	side := 1
	for _, s := range sprites {
		for side < s.w() || side < s.h() {
			side *= 2
		}
	}
	for ; side <= limit; side *= 2 {
		if b.fits(sprites, side) {
			return side, nil
		}
	}
	return 0, errors.Errorf("%d sprites do not fit on a %dx%d page", len(sprites), limit, limit)
}

func (b *Builtin) fits(sprites []*sprite, side int) bool {
	x, y, shelf := 0, 0, 0
	for _, s := range sprites {
		if x > 0 && x+s.w() > side {
			x, y, shelf = 0, y+shelf+b.Padding, 0
		}
		if x+s.w() > side || y+s.h() > side {
			return false
		}
		s.x, s.y = x, y
		x += s.w() + b.Padding
		if s.h() > shelf {
			shelf = s.h()
		}
	}
	return true
}

// SpriteName splits a sprite file name the way the texture packer names
// regions: "body_3.png" is region "body" with index 3. Names without a
// numeric suffix get index -1.
func SpriteName(file string) (name string, index int) {
	base := strings.TrimSuffix(file, filepath.Ext(file))
	if i := strings.LastIndex(base, "_"); i >= 0 {
		if n, err := strconv.Atoi(base[i+1:]); err == nil {
			return base[:i], n
		}
	}
	return base, -1
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening sprite")
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return img, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating page image")
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	return errors.Wrap(f.Close(), "closing page image")
}
