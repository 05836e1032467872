package bild

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/skairunner/kparserX/atlas"
	"github.com/skairunner/kparserX/kbin"
	"github.com/skairunner/kparserX/khash"
	"github.com/skairunner/kparserX/symtab"
)

const (
	Magic   = "BILD"
	Version = 10
)

// Build is the in-memory BILD asset.
type Build struct {
	Version     int32
	SymbolCount int32
	FrameCount  int32
	Name        string
	Symbols     []*Symbol
}

// Symbol is a run of frames sharing a base sprite name.
type Symbol struct {
	Hash       int32
	Path       int32
	Color      int32
	Flags      int32
	FrameCount int32
	Frames     []Frame
}

// Frame places one sprite frame on the texture page.
type Frame struct {
	SourceFrame int32
	Duration    int32
	BuildImage  int32

	PivotX, PivotY float32
	PivotW, PivotH float32

	U1, V1, U2, V2 float32
}

// New builds the symbol directory from the atlas entries, in atlas order. A
// new symbol starts whenever an entry's name differs from the previous
// entry's; frames are grouped by contiguous run, not by name. imgW and imgH
// are the packed page's pixel dimensions.
func New(name string, entries []atlas.Entry, tab *symtab.Table, imgW, imgH int) (*Build, error) {
	if imgW <= 0 || imgH <= 0 {
		return nil, errors.Errorf("bild: invalid packed image size %dx%d", imgW, imgH)
	}
	b := &Build{
		Version: Version,
		Name:    name,
	}

	var sym *Symbol
	lastName := ""
	for i, e := range entries {
		if sym == nil || e.Name != lastName {
			h := tab.Hash(e.Name)
			sym = &Symbol{
				Hash:       h,
				Path:       h,
				FrameCount: int32(tab.Count(e.Name)),
			}
			b.Symbols = append(b.Symbols, sym)
			lastName = e.Name
		}

		src, err := tab.Source(e)
		if err != nil {
			return nil, errors.Wrap(err, "all sprites must be included in the scml file")
		}
		pivotX, pivotY, err := src.Pivot()
		if err != nil {
			return nil, errors.Wrapf(err, "bild: %v", e)
		}

		f := Frame{
			SourceFrame: int32(e.Index),
			Duration:    1,
			U1:          float32(e.X) / float32(imgW),
			V1:          float32(e.Y) / float32(imgH),
			U2:          float32(e.X+e.W) / float32(imgW),
			V2:          float32(e.Y+e.H) / float32(imgH),
			PivotW:      float32(e.W * 2),
			PivotH:      float32(e.H * 2),
		}
		f.PivotX = -(pivotX - 0.5) * f.PivotW
		f.PivotY = (pivotY - 0.5) * f.PivotH
		glog.V(3).Infof("bild: entry %d %v -> uv (%g,%g)-(%g,%g) pivot (%g,%g)", i, e, f.U1, f.V1, f.U2, f.V2, f.PivotX, f.PivotY)
		sym.Frames = append(sym.Frames, f)
	}
	return b, nil
}

// NamingError reports a sprite file that does not follow name_<n>.png.
type NamingError struct {
	File string
}

func (e *NamingError) Error() string {
	return "improperly formatted texture name " + e.File + ". Filenames should end in _[number], e.g. body_0.png"
}

// FrameIndex splits a sprite file name such as "body_3.png" into its base
// name and frame index.
func FrameIndex(file string) (base string, index int, err error) {
	stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	i := strings.LastIndex(stem, "_")
	if i < 0 {
		return "", 0, &NamingError{File: filepath.Base(file)}
	}
	index, err = strconv.Atoi(stem[i+1:])
	if err != nil {
		return "", 0, &NamingError{File: filepath.Base(file)}
	}
	return stem[:i], index, nil
}

// ScanSourceDir counts sprite frames and symbols in dir: every .png is a
// frame, and every frame with index 0 starts a symbol. ignore names a file
// (normally the packer's output page) that is skipped.
func ScanSourceDir(dir, ignore string) (symbols, frames int32, err error) {
	list, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, errors.Wrap(err, "scanning sprite directory")
	}
	ignoreAbs := ""
	if ignore != "" {
		if ignoreAbs, err = filepath.Abs(ignore); err != nil {
			return 0, 0, errors.Wrap(err, "resolving ignored file")
		}
	}
	for _, de := range list {
		if de.IsDir() || filepath.Ext(de.Name()) != ".png" {
			continue
		}
		path := filepath.Join(dir, de.Name())
		if abs, err := filepath.Abs(path); err == nil && abs == ignoreAbs {
			glog.V(2).Infof("bild: found file named %s, ignoring", de.Name())
			continue
		}
		frames++
		_, index, err := FrameIndex(de.Name())
		if err != nil {
			return 0, 0, err
		}
		if index == 0 {
			symbols++
		}
	}
	return symbols, frames, nil
}

// Encode writes the BILD layout followed by the name hash table.
func (b *Build) Encode(w io.Writer, hashes *khash.Table) error {
	kw := kbin.NewWriter(w)
	kw.WriteMagic(Magic)
	kw.WriteInt32(b.Version)
	kw.WriteInt32(b.SymbolCount)
	kw.WriteInt32(b.FrameCount)
	kw.WriteString(b.Name)
	for _, s := range b.Symbols {
		kw.WriteInt32(s.Hash)
		kw.WriteInt32(s.Path)
		kw.WriteInt32(s.Color)
		kw.WriteInt32(s.Flags)
		kw.WriteInt32(s.FrameCount)
		for _, f := range s.Frames {
			kw.WriteInt32(f.SourceFrame)
			kw.WriteInt32(f.Duration)
			kw.WriteInt32(f.BuildImage)
			kw.WriteFloat32(f.PivotX)
			kw.WriteFloat32(f.PivotY)
			kw.WriteFloat32(f.PivotW)
			kw.WriteFloat32(f.PivotH)
			kw.WriteFloat32(f.U1)
			kw.WriteFloat32(f.V1)
			kw.WriteFloat32(f.U2)
			kw.WriteFloat32(f.V2)
		}
	}
	kw.WriteHashTable(hashes)
	return errors.Wrap(kw.Flush(), "encoding bild")
}

// Decode reads a BILD asset the way the engine does: SymbolCount symbols,
// each followed by FrameCount frames, then the hash table. Assets whose
// header counts disagree with their contents do not decode.
func Decode(r io.Reader) (*Build, *khash.Table, error) {
	kr := kbin.NewReader(r)
	kr.ReadMagic(Magic)
	b := &Build{
		Version:     kr.ReadInt32(),
		SymbolCount: kr.ReadInt32(),
		FrameCount:  kr.ReadInt32(),
	}
	b.Name = kr.ReadString()
	if err := kr.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "decoding bild header")
	}
	for i := int32(0); i < b.SymbolCount && kr.Err() == nil; i++ {
		s := &Symbol{
			Hash:       kr.ReadInt32(),
			Path:       kr.ReadInt32(),
			Color:      kr.ReadInt32(),
			Flags:      kr.ReadInt32(),
			FrameCount: kr.ReadInt32(),
		}
		n := s.FrameCount
		if n < 0 {
			return nil, nil, errors.Errorf("decoding bild: symbol %d has %d frames", i, n)
		}
		for j := int32(0); j < n && kr.Err() == nil; j++ {
			s.Frames = append(s.Frames, Frame{
				SourceFrame: kr.ReadInt32(),
				Duration:    kr.ReadInt32(),
				BuildImage:  kr.ReadInt32(),
				PivotX:      kr.ReadFloat32(),
				PivotY:      kr.ReadFloat32(),
				PivotW:      kr.ReadFloat32(),
				PivotH:      kr.ReadFloat32(),
				U1:          kr.ReadFloat32(),
				V1:          kr.ReadFloat32(),
				U2:          kr.ReadFloat32(),
				V2:          kr.ReadFloat32(),
			})
		}
		b.Symbols = append(b.Symbols, s)
	}
	hashes := kr.ReadHashTable()
	if err := kr.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "decoding bild")
	}
	return b, hashes, nil
}
