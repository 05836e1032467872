// Package convert runs the whole pipeline for one SCML project: pack the
// sprites next to it, build and write the BILD file, then build and write the
// ANIM file.
package convert

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/skairunner/kparserX/anim"
	"github.com/skairunner/kparserX/atlas"
	"github.com/skairunner/kparserX/atlas/packer"
	"github.com/skairunner/kparserX/bild"
	"github.com/skairunner/kparserX/config"
	"github.com/skairunner/kparserX/khash"
	"github.com/skairunner/kparserX/scml"
	"github.com/skairunner/kparserX/symtab"
)

// Sink receives both encoded streams of every converted entity.
type Sink interface {
	Put(entity string, build, anim []byte) error
}

// Converter converts SCML projects. Packer and Sink may be nil; Packer then
// defaults to the one described by Settings.
type Converter struct {
	Settings *config.Settings
	Packer   packer.Packer
	Sink     Sink
}

// Result describes one finished conversion.
type Result struct {
	Entity    string
	Atlas     *packer.Result
	BuildPath string
	AnimPath  string
	BuildSize int
	AnimSize  int

	// SkippedRecords counts unreadable atlas manifest records.
	SkippedRecords int
	// Dropped and Skipped count animation elements left out; see anim.Stats.
	Dropped int
	Skipped int
}

// NewPacker returns the packer the settings select.
func NewPacker(ps config.PackerSettings) packer.Packer {
	if ps.Kind == config.PackerExec {
		return &packer.Exec{Command: ps.Command, Args: ps.Args}
	}
	return &packer.Builtin{Padding: ps.Padding, MaxSize: ps.MaxSize, Scale: ps.Scale}
}

func (c *Converter) packer() packer.Packer {
	if c.Packer != nil {
		return c.Packer
	}
	return NewPacker(c.Settings.Packer)
}

// Convert converts the project at scmlPath. Its sprites are the PNG files in
// the same directory.
func (c *Converter) Convert(scmlPath string) (*Result, error) {
	doc, err := scml.DecodeFile(scmlPath)
	if err != nil {
		return nil, err
	}
	name, err := doc.EntityName()
	if err != nil {
		return nil, err
	}
	inputDir := filepath.Dir(scmlPath)
	outputDir, err := filepath.Abs(c.Settings.OutputDir)
	if err != nil {
		return nil, errors.Wrap(err, "resolving output directory")
	}
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		glog.Infof("Creating output directory %s.", outputDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}

	res := &Result{Entity: name}
	hashes := khash.NewTable()

	glog.Infof("%s: packing texture...", name)
	if res.Atlas, err = c.packer().Pack(inputDir, outputDir, name); err != nil {
		return nil, errors.Wrapf(err, "%s: packing", name)
	}
	build, err := c.encodeBuild(doc, name, inputDir, res, hashes)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: BILD", name)
	}

	glog.Infof("%s: packing animation...", name)
	animBytes, err := c.encodeAnim(doc, res, hashes)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: ANIM", name)
	}

	if c.Sink != nil {
		if err := c.Sink.Put(name, build, animBytes); err != nil {
			return nil, err
		}
	}
	glog.Infof("%s: done, wrote %s build and %s anim.", name, humanize.Bytes(uint64(res.BuildSize)), humanize.Bytes(uint64(res.AnimSize)))
	return res, nil
}

func (c *Converter) encodeBuild(doc *scml.Document, name, inputDir string, res *Result, hashes *khash.Table) ([]byte, error) {
	manifest, err := atlas.ParseFile(res.Atlas.Manifest)
	if err != nil {
		return nil, err
	}
	res.SkippedRecords = manifest.Skipped
	files, err := doc.Folder()
	if err != nil {
		return nil, err
	}
	tab := symtab.New(manifest.Entries, hashes, files)

	w, h, err := packer.ImageSize(res.Atlas.Image)
	if err != nil {
		return nil, err
	}
	b, err := bild.New(name, manifest.Entries, tab, w, h)
	if err != nil {
		return nil, err
	}
	if b.SymbolCount, b.FrameCount, err = bild.ScanSourceDir(inputDir, res.Atlas.Image); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := b.Encode(&buf, tab.Hashes()); err != nil {
		return nil, err
	}
	res.BuildPath = filepath.Join(filepath.Dir(res.Atlas.Image), name+"_build.bytes")
	res.BuildSize = buf.Len()
	if err := os.WriteFile(res.BuildPath, buf.Bytes(), 0o644); err != nil {
		return nil, errors.Wrap(err, "writing build file")
	}
	glog.V(1).Infof("%s: %d symbols, %d frames on a %dx%d page", name, len(b.Symbols), len(manifest.Entries), w, h)
	return buf.Bytes(), nil
}

// encodeAnim re-reads the manifest the BILD pass packed so both files carry
// the same sprite names, in the same order, ahead of the animation names.
func (c *Converter) encodeAnim(doc *scml.Document, res *Result, hashes *khash.Table) ([]byte, error) {
	manifest, err := atlas.ParseFile(res.Atlas.Manifest)
	if err != nil {
		return nil, err
	}
	for _, e := range manifest.Entries {
		hashes.Add(e.Name)
	}
	name, err := doc.EntityName()
	if err != nil {
		return nil, err
	}

	a, stats, err := anim.New(doc, hashes)
	if err != nil {
		return nil, err
	}
	res.Dropped, res.Skipped = stats.Dropped, stats.Skipped

	var buf bytes.Buffer
	if err := a.Encode(&buf, hashes); err != nil {
		return nil, err
	}
	res.AnimPath = filepath.Join(filepath.Dir(res.Atlas.Image), name+"_anim.bytes")
	res.AnimSize = buf.Len()
	if err := os.WriteFile(res.AnimPath, buf.Bytes(), 0o644); err != nil {
		return nil, errors.Wrap(err, "writing anim file")
	}
	glog.V(1).Infof("%s: %d animations, at most %d visible symbol frames", name, len(a.Banks), a.MaxVisibleSymbolFrames)
	return buf.Bytes(), nil
}

// ConvertAll converts independent projects, at most jobs at a time. Results
// are in the order of paths. After the first error, conversions that have
// not started yet are skipped.
func (c *Converter) ConvertAll(paths []string, jobs int) ([]*Result, error) {
	if jobs < 1 {
		jobs = 1
	}
	results := make([]*Result, len(paths))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(jobs)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res, err := c.Convert(p)
			if err != nil {
				return errors.Wrap(err, p)
			}
			results[i] = res
			return nil
		})
	}
	return results, g.Wait()
}
