package anim

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/skairunner/kparserX/kbin"
	"github.com/skairunner/kparserX/khash"
	"github.com/skairunner/kparserX/scml"
	"github.com/skairunner/kparserX/symtab"
)

const (
	Magic   = "ANIM"
	Version = 5

	msPerSecond = 1000
	// defaultInterval applies when an animation has no usable interval.
	defaultInterval = 33
)

// Anim is the in-memory ANIM asset.
type Anim struct {
	Version          int32
	ElementsReserved int32
	FramesReserved   int32
	Banks            []*Bank

	MaxVisibleSymbolFrames int32
}

// Bank is one compiled animation.
type Bank struct {
	Name   string
	Hash   int32
	Rate   float32
	Frames []*Frame
}

// Frame is one mainline keyframe. X, Y is the center of the frame's bounding
// box and W, H its size.
type Frame struct {
	X, Y, W, H float32
	Elements   []Element
}

// Element places one sprite frame.
type Element struct {
	Image int32
	Index int32
	Layer int32
	Flags int32

	A, B, G, R float32

	M1, M2, M3, M4, M5, M6 float32

	Order float32

	zIndex int
}

// Stats counts elements that were left out of the output.
type Stats struct {
	// Dropped counts object refs whose timeline or timeline key does not
	// exist.
	Dropped int
	// Skipped counts elements with a malformed numeric attribute.
	Skipped int
}

// New builds the ANIM asset for the document's entity. hashes must already
// hold the sprite names of the build; animation names are appended to it.
func New(doc *scml.Document, hashes *khash.Table) (*Anim, *Stats, error) {
	entity, err := doc.Entity()
	if err != nil {
		return nil, nil, err
	}
	anims, err := entity.Animations()
	if err != nil {
		return nil, nil, err
	}
	files, err := doc.Files()
	if err != nil {
		return nil, nil, err
	}

	for _, a := range anims {
		hashes.Add(a.Name)
	}

	out := &Anim{Version: Version}
	stats := &Stats{}
	for _, a := range anims {
		bank, maxVisible, err := newBank(a, files, hashes, stats)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "animation %q", a.Name)
		}
		if maxVisible > out.MaxVisibleSymbolFrames {
			out.MaxVisibleSymbolFrames = maxVisible
		}
		out.Banks = append(out.Banks, bank)
	}
	if stats.Dropped > 0 || stats.Skipped > 0 {
		glog.Warningf("anim: %s: dropped %d elements with missing timeline keys, skipped %d with malformed attributes", entity.Name, stats.Dropped, stats.Skipped)
	}
	return out, stats, nil
}

func newBank(a *scml.Animation, files map[int]*scml.File, hashes *khash.Table, stats *Stats) (*Bank, int32, error) {
	interval, ok := a.Interval()
	if !ok {
		interval = defaultInterval
	}
	h, _ := hashes.Lookup(a.Name)
	bank := &Bank{
		Name: a.Name,
		Hash: h,
		Rate: float32(msPerSecond) / float32(interval),
	}

	mainline, err := a.Mainline()
	if err != nil {
		return nil, 0, err
	}
	timelines, err := a.Timelines()
	if err != nil {
		return nil, 0, err
	}
	keys, err := mainline.Keys()
	if err != nil {
		return nil, 0, err
	}

	var maxVisible int32
	state := timelineState{}
	for k, key := range keys {
		refs, err := key.ObjectRefs()
		if err != nil {
			return nil, 0, err
		}
		if n := int32(len(refs)); n > maxVisible {
			maxVisible = n
		}

		frame := &Frame{}
		box := newBounds()
		for _, ref := range refs {
			el, res, err := newElement(ref, timelines, files, hashes, state, box)
			if err != nil {
				return nil, 0, errors.Wrapf(err, "mainline key %d", k)
			}
			switch res {
			case kept:
				frame.Elements = append(frame.Elements, el)
			case skipped:
				stats.Skipped++
			case dropped:
				glog.V(2).Infof("anim: %s key %d: no data for timeline %d key %d, dropping element", a.Name, k, ref.Timeline, ref.Key)
				stats.Dropped++
			}
		}

		sort.SliceStable(frame.Elements, func(i, j int) bool {
			return frame.Elements[i].zIndex > frame.Elements[j].zIndex
		})
		frame.X, frame.Y, frame.W, frame.H = box.rect()
		bank.Frames = append(bank.Frames, frame)
	}
	return bank, maxVisible, nil
}

type outcome int

const (
	kept outcome = iota
	// dropped: the ref points at a timeline or key that does not exist.
	dropped
	// skipped: a numeric attribute did not parse.
	skipped
)

// newElement resolves one object ref and adds it to the frame's bounds.
func newElement(ref scml.ObjectRef, timelines map[int]*scml.Timeline, files map[int]*scml.File, hashes *khash.Table, state timelineState, box *bounds) (Element, outcome, error) {
	tl, ok := timelines[ref.Timeline]
	if !ok {
		return Element{}, dropped, nil
	}
	obj, ok, err := tl.Object(ref.Key)
	if err != nil {
		return Element{}, dropped, err
	}
	if !ok {
		return Element{}, dropped, nil
	}

	fileID, err := strconv.Atoi(strings.TrimSpace(obj.File()))
	if err != nil {
		glog.V(2).Infof("anim: found invalid file reference %q - skipping", obj.File())
		return Element{}, skipped, nil
	}
	file, ok := files[fileID]
	if !ok {
		return Element{}, dropped, &symtab.UnresolvedError{What: "file id", Name: strconv.Itoa(fileID)}
	}
	imageName := file.BaseName()
	sep := strings.LastIndex(imageName, "_")
	if sep < 0 {
		return Element{}, dropped, &symtab.UnresolvedError{What: "image", Name: imageName}
	}
	image, ok := hashes.Lookup(imageName[:sep])
	if !ok {
		return Element{}, dropped, &symtab.UnresolvedError{What: "image", Name: imageName[:sep]}
	}
	index, err := strconv.Atoi(imageName[sep+1:])
	if err != nil {
		glog.V(2).Infof("anim: invalid frame index in %q - skipping", imageName)
		return Element{}, skipped, nil
	}

	t, err := state.resolve(ref.Timeline, obj)
	if err != nil {
		glog.V(2).Infof("anim: timeline %d: %v - skipping", ref.Timeline, err)
		return Element{}, skipped, nil
	}

	el := Element{
		Image:  image,
		Index:  int32(index),
		Layer:  image,
		A:      1,
		B:      1,
		G:      1,
		R:      1,
		zIndex: ref.ZIndex,
	}
	el.M1, el.M2, el.M3, el.M4, el.M5, el.M6 = t.matrix()

	pivotX, pivotY, err := file.Pivot()
	if err != nil {
		glog.V(2).Infof("anim: %v - skipping", err)
		return Element{}, skipped, nil
	}
	width, height, err := file.Size()
	if err != nil {
		glog.V(2).Infof("anim: %v - skipping", err)
		return Element{}, skipped, nil
	}
	box.addSprite(t, pivotX, pivotY, width, height)
	return el, kept, nil
}

// Encode writes the ANIM layout followed by the name hash table.
func (a *Anim) Encode(w io.Writer, hashes *khash.Table) error {
	kw := kbin.NewWriter(w)
	kw.WriteMagic(Magic)
	kw.WriteInt32(a.Version)
	kw.WriteInt32(a.ElementsReserved)
	kw.WriteInt32(a.FramesReserved)
	kw.WriteInt32(int32(len(a.Banks)))
	for _, b := range a.Banks {
		kw.WriteString(b.Name)
		kw.WriteInt32(b.Hash)
		kw.WriteFloat32(b.Rate)
		kw.WriteInt32(int32(len(b.Frames)))
		for _, f := range b.Frames {
			kw.WriteFloat32(f.X)
			kw.WriteFloat32(f.Y)
			kw.WriteFloat32(f.W)
			kw.WriteFloat32(f.H)
			kw.WriteInt32(int32(len(f.Elements)))
			for _, e := range f.Elements {
				kw.WriteInt32(e.Image)
				kw.WriteInt32(e.Index)
				kw.WriteInt32(e.Layer)
				kw.WriteInt32(e.Flags)
				kw.WriteFloat32(e.A)
				kw.WriteFloat32(e.B)
				kw.WriteFloat32(e.G)
				kw.WriteFloat32(e.R)
				kw.WriteFloat32(e.M1)
				kw.WriteFloat32(e.M2)
				kw.WriteFloat32(e.M3)
				kw.WriteFloat32(e.M4)
				kw.WriteFloat32(e.M5)
				kw.WriteFloat32(e.M6)
				kw.WriteFloat32(e.Order)
			}
		}
	}
	kw.WriteInt32(a.MaxVisibleSymbolFrames)
	kw.WriteHashTable(hashes)
	return errors.Wrap(kw.Flush(), "encoding anim")
}

// Decode reads an ANIM asset.
func Decode(r io.Reader) (*Anim, *khash.Table, error) {
	kr := kbin.NewReader(r)
	kr.ReadMagic(Magic)
	a := &Anim{
		Version:          kr.ReadInt32(),
		ElementsReserved: kr.ReadInt32(),
		FramesReserved:   kr.ReadInt32(),
	}
	nBanks := kr.Count("bank")
	for i := 0; i < nBanks && kr.Err() == nil; i++ {
		b := &Bank{Name: kr.ReadString(), Hash: kr.ReadInt32(), Rate: kr.ReadFloat32()}
		nFrames := kr.Count("frame")
		for j := 0; j < nFrames && kr.Err() == nil; j++ {
			f := &Frame{X: kr.ReadFloat32(), Y: kr.ReadFloat32(), W: kr.ReadFloat32(), H: kr.ReadFloat32()}
			nElements := kr.Count("element")
			for k := 0; k < nElements && kr.Err() == nil; k++ {
				f.Elements = append(f.Elements, Element{
					Image: kr.ReadInt32(), Index: kr.ReadInt32(), Layer: kr.ReadInt32(), Flags: kr.ReadInt32(),
					A: kr.ReadFloat32(), B: kr.ReadFloat32(), G: kr.ReadFloat32(), R: kr.ReadFloat32(),
					M1: kr.ReadFloat32(), M2: kr.ReadFloat32(), M3: kr.ReadFloat32(),
					M4: kr.ReadFloat32(), M5: kr.ReadFloat32(), M6: kr.ReadFloat32(),
					Order: kr.ReadFloat32(),
				})
			}
			b.Frames = append(b.Frames, f)
		}
		a.Banks = append(a.Banks, b)
	}
	a.MaxVisibleSymbolFrames = kr.ReadInt32()
	hashes := kr.ReadHashTable()
	if err := kr.Err(); err != nil {
		return nil, nil, errors.Wrap(err, "decoding anim")
	}
	return a, hashes, nil
}

// bounds accumulates the bounding box of a frame. The initial extremes are
// kept as they are for frames without elements.
type bounds struct {
	minX, minY, maxX, maxY float32
}

func newBounds() *bounds {
	return &bounds{
		minX: math.MaxFloat32,
		minY: math.MaxFloat32,
		maxX: -math.MaxFloat32,
		maxY: -math.MaxFloat32,
	}
}

func (b *bounds) add(x, y float32) {
	if x < b.minX {
		b.minX = x
	}
	if x > b.maxX {
		b.maxX = x
	}
	if y < b.minY {
		b.minY = y
	}
	if y > b.maxY {
		b.maxY = y
	}
}

// rect returns center and size.
func (b *bounds) rect() (x, y, w, h float32) {
	return 0.5 * (b.minX + b.maxX), 0.5 * (b.minY + b.maxY), b.maxX - b.minX, b.maxY - b.minY
}

// addSprite adds the four corners of a sprite placed at the transform's
// offset, rotated and scaled about its pivot. The rectangle's bottom edge is
// offset by the sprite's width, not its height, as in the existing tool.
func (b *bounds) addSprite(t transform, pivotX, pivotY float32, width, height int) {
	cx := pivotX*float32(width) + t.x
	cy := pivotY*float32(height) + t.y
	x1, y1 := t.x, t.y
	x2 := x1 + float32(width)
	y2 := y1 + float32(width)

	angle := float32(t.radians())
	for _, p := range [4][2]float32{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}} {
		b.add(rotateAbout(cx, cy, angle, p[0], p[1], t.scaleX, t.scaleY))
	}
}

// rotateAbout translates the pivot to the origin, rotates, scales and
// translates back.
func rotateAbout(pivotX, pivotY, angle, x, y, scaleX, scaleY float32) (float32, float32) {
	sin := float32(math.Sin(float64(angle)))
	cos := float32(math.Cos(float64(angle)))
	x, y = x-pivotX, y-pivotY
	x, y = x*cos-y*sin, x*sin+y*cos
	x, y = x*scaleX, y*scaleY
	return x + pivotX, y + pivotY
}
