package scml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// FormatError reports a structural violation of the expected SCML layout.
type FormatError struct {
	Where string
	Msg   string
}

func (e *FormatError) Error() string {
	if e.Where == "" {
		return "scml format error: " + e.Msg
	}
	return fmt.Sprintf("scml format error in %s: %s", e.Where, e.Msg)
}

func formatErrorf(where, format string, args ...interface{}) error {
	return &FormatError{Where: where, Msg: fmt.Sprintf(format, args...)}
}

type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []*node    `xml:",any"`
}

func (n *node) tag() string {
	return n.XMLName.Local
}

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) intAttr(where, name string) (int, error) {
	v, ok := n.attr(name)
	if !ok {
		return 0, formatErrorf(where, "<%s> is missing attribute %q", n.tag(), name)
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, formatErrorf(where, "<%s> attribute %s=%q is not an integer", n.tag(), name, v)
	}
	return i, nil
}

// find returns the first element named tag in document order, n included.
func (n *node) find(tag string) *node {
	if n.tag() == tag {
		return n
	}
	for _, c := range n.Nodes {
		if found := c.find(tag); found != nil {
			return found
		}
	}
	return nil
}

// Document is a decoded SCML file.
type Document struct {
	root *node
}

// Decode parses an SCML document.
func Decode(r io.Reader) (*Document, error) {
	root := &node{}
	if err := xml.NewDecoder(r).Decode(root); err != nil {
		return nil, errors.Wrap(err, "decoding scml")
	}
	return &Document{root: root}, nil
}

// DecodeFile opens and parses the SCML document at path.
func DecodeFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening scml")
	}
	defer f.Close()
	return Decode(f)
}

// Entity returns the first entity of the document.
func (d *Document) Entity() (*Entity, error) {
	n := d.root.find("entity")
	if n == nil {
		return nil, formatErrorf("", "no <entity> element")
	}
	name, _ := n.attr("name")
	return &Entity{node: n, Name: name}, nil
}

// EntityName returns the name of the first entity.
func (d *Document) EntityName() (string, error) {
	e, err := d.Entity()
	if err != nil {
		return "", err
	}
	return e.Name, nil
}

// Folder returns the file elements of the first folder, in document order.
func (d *Document) Folder() ([]*File, error) {
	n := d.root.find("folder")
	if n == nil {
		return nil, formatErrorf("", "no <folder> element")
	}
	files := make([]*File, 0, len(n.Nodes))
	for _, c := range n.Nodes {
		if c.tag() != "file" {
			return nil, formatErrorf("folder", "all children of <folder> must be <file>, got <%s>", c.tag())
		}
		id, err := c.intAttr("folder", "id")
		if err != nil {
			return nil, err
		}
		f := &File{ID: id}
		f.Name, _ = c.attr("name")
		f.pivotX, _ = c.attr("pivot_x")
		f.pivotY, _ = c.attr("pivot_y")
		f.width, _ = c.attr("width")
		f.height, _ = c.attr("height")
		files = append(files, f)
	}
	return files, nil
}

// Files returns the folder's files keyed by id.
func (d *Document) Files() (map[int]*File, error) {
	list, err := d.Folder()
	if err != nil {
		return nil, err
	}
	files := make(map[int]*File, len(list))
	for _, f := range list {
		files[f.ID] = f
	}
	return files, nil
}

// Entity is the animated object; its children are the animations.
type Entity struct {
	node *node
	Name string
}

// Animations returns the entity's animations in document order. Every child
// of the entity must be an animation.
func (e *Entity) Animations() ([]*Animation, error) {
	anims := make([]*Animation, 0, len(e.node.Nodes))
	for _, c := range e.node.Nodes {
		if c.tag() != "animation" {
			return nil, formatErrorf("entity "+e.Name, "all children of <entity> must be <animation>, got <%s>", c.tag())
		}
		name, _ := c.attr("name")
		anims = append(anims, &Animation{node: c, Name: name})
	}
	return anims, nil
}

// Animation is a single named animation of the entity.
type Animation struct {
	node *node
	Name string
}

func (a *Animation) where() string {
	return "animation " + a.Name
}

// Interval returns the animation's frame interval in milliseconds. ok is false
// if the attribute is absent or not an integer.
func (a *Animation) Interval() (ms int, ok bool) {
	v, present := a.node.attr("interval")
	if !present {
		return 0, false
	}
	ms, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return ms, true
}

// Mainline returns the animation's mainline.
func (a *Animation) Mainline() (*Mainline, error) {
	for _, c := range a.node.Nodes {
		if c.tag() == "mainline" {
			return &Mainline{node: c, anim: a}, nil
		}
	}
	return nil, formatErrorf(a.where(), "no <mainline> child of <animation>")
}

// Timelines returns the animation's timelines keyed by id.
func (a *Animation) Timelines() (map[int]*Timeline, error) {
	timelines := make(map[int]*Timeline)
	for _, c := range a.node.Nodes {
		if c.tag() != "timeline" {
			continue
		}
		id, err := c.intAttr(a.where(), "id")
		if err != nil {
			return nil, err
		}
		timelines[id] = &Timeline{node: c, anim: a, ID: id}
	}
	return timelines, nil
}

// Mainline lists which timeline objects are visible at each keyframe.
type Mainline struct {
	node *node
	anim *Animation
}

// Keys returns the mainline keyframes in document order.
func (m *Mainline) Keys() ([]*MainlineKey, error) {
	keys := make([]*MainlineKey, 0, len(m.node.Nodes))
	for _, c := range m.node.Nodes {
		if c.tag() != "key" {
			return nil, formatErrorf(m.anim.where(), "all children of <mainline> must be <key>, got <%s>", c.tag())
		}
		keys = append(keys, &MainlineKey{node: c, anim: m.anim})
	}
	return keys, nil
}

// MainlineKey is one keyframe of the mainline.
type MainlineKey struct {
	node *node
	anim *Animation
}

// Len returns the number of child elements of the key.
func (k *MainlineKey) Len() int {
	return len(k.node.Nodes)
}

// ObjectRef points at the data of one object at one keyframe.
type ObjectRef struct {
	ZIndex   int
	Timeline int
	Key      int
}

// ObjectRefs returns the key's object references in document order.
func (k *MainlineKey) ObjectRefs() ([]ObjectRef, error) {
	where := k.anim.where()
	refs := make([]ObjectRef, 0, len(k.node.Nodes))
	for _, c := range k.node.Nodes {
		if c.tag() != "object_ref" {
			return nil, formatErrorf(where, "all children of mainline <key> must be <object_ref>, got <%s>", c.tag())
		}
		var ref ObjectRef
		var err error
		if ref.ZIndex, err = c.intAttr(where, "z_index"); err != nil {
			return nil, err
		}
		if ref.Timeline, err = c.intAttr(where, "timeline"); err != nil {
			return nil, err
		}
		if ref.Key, err = c.intAttr(where, "key"); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Timeline holds the sparse keys of a single object.
type Timeline struct {
	node *node
	anim *Animation
	ID   int
}

// Object returns the object data of the timeline key with the given id. ok is
// false when the timeline has no such key, or when the scan reaches a child
// that is not a key with an integer id before finding it.
func (t *Timeline) Object(frame int) (obj *Object, ok bool, err error) {
	where := fmt.Sprintf("timeline %d of %s", t.ID, t.anim.where())
	for _, c := range t.node.Nodes {
		if c.tag() != "key" {
			glog.V(2).Infof("scml: %s: unexpected <%s> before key %d", where, c.tag(), frame)
			return nil, false, nil
		}
		id, err := c.intAttr(where, "id")
		if err != nil {
			glog.V(2).Infof("scml: %v", err)
			return nil, false, nil
		}
		if id != frame {
			continue
		}
		var o *node
		for _, oc := range c.Nodes {
			if o = oc.find("object"); o != nil {
				break
			}
		}
		if o == nil {
			return nil, false, formatErrorf(where, "key %d has no <object>", frame)
		}
		return &Object{node: o}, true, nil
	}
	return nil, false, nil
}

// Object is the transform data of one object at one timeline key. Transform
// attributes may be omitted, in which case the previous key's value applies.
type Object struct {
	node *node
}

// File returns the raw file attribute.
func (o *Object) File() string {
	v, _ := o.node.attr("file")
	return v
}

// Float returns the named attribute. present is false if it is omitted.
func (o *Object) Float(name string) (v float32, present bool, err error) {
	s, present := o.node.attr(name)
	if !present {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	if err != nil {
		return 0, true, errors.Wrapf(err, "object attribute %s", name)
	}
	return float32(f), true, nil
}

// File is a sprite image referenced by the project.
type File struct {
	ID   int
	Name string

	pivotX, pivotY string
	width, height  string
}

// Pivot returns the normalized pivot, origin at the sprite's top-left.
func (f *File) Pivot() (x, y float32, err error) {
	px, err := strconv.ParseFloat(strings.TrimSpace(f.pivotX), 32)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "file %q pivot_x", f.Name)
	}
	py, err := strconv.ParseFloat(strings.TrimSpace(f.pivotY), 32)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "file %q pivot_y", f.Name)
	}
	return float32(px), float32(py), nil
}

// Size returns the sprite's pixel dimensions.
func (f *File) Size() (w, h int, err error) {
	if w, err = strconv.Atoi(strings.TrimSpace(f.width)); err != nil {
		return 0, 0, errors.Wrapf(err, "file %q width", f.Name)
	}
	if h, err = strconv.Atoi(strings.TrimSpace(f.height)); err != nil {
		return 0, 0, errors.Wrapf(err, "file %q height", f.Name)
	}
	return w, h, nil
}

// BaseName strips the .png extension, if any.
func (f *File) BaseName() string {
	return strings.TrimSuffix(f.Name, ".png")
}
