// Command kparser converts Spriter SCML projects into BILD and ANIM asset
// pairs.
//
//	kparser [flags] project.scml|dir ...
//	kparser -dump ball_build.bytes ball_anim.bytes
package main

import (
	"flag"
	"fmt"
	"os"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"

	"github.com/skairunner/kparserX/config"
	"github.com/skairunner/kparserX/convert"
	"github.com/skairunner/kparserX/imageprint"
	"github.com/skairunner/kparserX/paths"
	"github.com/skairunner/kparserX/resfile"
)

var (
	outputDir     = flag.String("output_dir", "", "directory receiving the .bytes files and the packed atlas; overrides the settings file")
	resourceFile  = flag.String("resource_file", "", "bbolt resource file that also receives the converted assets; overrides the settings file")
	jobs          = flag.Int("jobs", 0, "number of projects converted in parallel; overrides the settings file")
	packerKind    = flag.String("packer", "", "texture packer: builtin or exec; overrides the settings file")
	packerCommand = flag.String("packer_command", "", "external packer command, for -packer=exec")
	scale         = flag.Float64("scale", 0, "scale applied to sprites by the builtin packer")
	preview       = flag.String("preview", "", "print every packed atlas page on the terminal: 24bit, 256, none, iterm, rasterm or dataurl")
	blanks        = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art in -preview")
	downsize      = flag.Bool("downsize", true, "whether to fit -preview output to the terminal")
	dump          = flag.Bool("dump", false, "decode the .bytes files given as arguments and print their contents")
	version       = flag.Bool("version", false, "print the banner and exit")

	configPath string
)

func settings() (*config.Settings, error) {
	s, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if *outputDir != "" {
		s.OutputDir = *outputDir
	}
	if *resourceFile != "" {
		s.ResourceFile = *resourceFile
	}
	if *jobs != 0 {
		s.Jobs = *jobs
	}
	if *packerKind != "" {
		s.Packer.Kind = *packerKind
	}
	if *packerCommand != "" {
		s.Packer.Command = *packerCommand
	}
	if *scale != 0 {
		s.Packer.Scale = *scale
	}
	return s, s.Validate()
}

func run() error {
	if *dump {
		for _, path := range flag.Args() {
			if err := dumpFile(os.Stdout, path); err != nil {
				return err
			}
		}
		return nil
	}

	var mode imageprint.Mode
	if *preview != "" {
		var err error
		if mode, err = imageprint.ParseMode(*preview); err != nil {
			return err
		}
	}

	s, err := settings()
	if err != nil {
		return err
	}
	projects, err := paths.ExpandSCML(flag.Args())
	if err != nil {
		return err
	}

	c := &convert.Converter{Settings: s}
	if s.ResourceFile != "" {
		rf, err := resfile.Open(s.ResourceFile)
		if err != nil {
			return err
		}
		defer rf.Close()
		c.Sink = rf
	}

	results, err := c.ConvertAll(projects, s.Jobs)
	if err != nil {
		return err
	}
	for _, res := range results {
		glog.Infof("%s: %s, %s (%d manifest records skipped, %d elements dropped, %d skipped)", res.Entity, res.BuildPath, res.AnimPath, res.SkippedRecords, res.Dropped, res.Skipped)
		if mode != "" {
			if err := previewAtlas(res.Atlas.Image, mode); err != nil {
				glog.Warningf("previewing %s: %v", res.Atlas.Image, err)
			}
		}
	}
	return nil
}

func main() {
	paths.SetupFilePathFlag(config.FileName, "config", "path to the "+config.FileName+" settings file", &configPath)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] project.scml|dir ...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	if *version {
		figure.NewFigure("kparser", "", true).Print()
		return
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(); err != nil {
		glog.Errorf("kparser: %v", err)
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}
