package scml

import (
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/skairunner/kparserX/ttesting"
)

const project = `<?xml version="1.0" encoding="UTF-8"?>
<spriter_data scml_version="1.0" generator="BrashMonkey Spriter">
	<folder id="0">
		<file id="0" name="body_0.png" width="64" height="32" pivot_x="0.5" pivot_y="0.25"/>
		<file id="1" name="head_0" width="16" height="16" pivot_x="0" pivot_y="1"/>
	</folder>
	<entity id="0" name="hero">
		<animation id="0" name="idle" length="1000" interval="100">
			<mainline>
				<key id="0">
					<object_ref id="0" timeline="0" key="0" z_index="1"/>
					<object_ref id="1" timeline="1" key="0" z_index="0"/>
				</key>
				<key id="1" time="500">
					<object_ref id="0" timeline="0" key="1" z_index="1"/>
				</key>
			</mainline>
			<timeline id="0" name="body">
				<key id="0" spin="0">
					<object folder="0" file="0" x="10" y="5" angle="0"/>
				</key>
				<key id="1" time="500">
					<object folder="0" file="0" angle="90"/>
				</key>
			</timeline>
			<timeline id="1" name="head">
				<key id="0"><object folder="0" file="1"/></key>
			</timeline>
		</animation>
		<animation id="1" name="walk"><mainline/></animation>
	</entity>
</spriter_data>`

func decode(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return doc
}

func TestAccessors(t *testing.T) {
	doc := decode(t, project)

	name, err := doc.EntityName()
	if err != nil {
		t.Fatalf("EntityName: %v", err)
	}
	ttesting.AssertEqualString(t, "entity name", name, "hero")

	files, err := doc.Files()
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	ttesting.AssertEqualInt(t, "file count", len(files), 2)
	ttesting.AssertEqualString(t, "file 1 base name", files[1].BaseName(), "head_0")
	ttesting.AssertEqualString(t, "file 0 base name", files[0].BaseName(), "body_0")
	px, py, err := files[0].Pivot()
	if err != nil {
		t.Fatalf("Pivot: %v", err)
	}
	ttesting.AssertEqualFloat32(t, "pivot x", px, 0.5)
	ttesting.AssertEqualFloat32(t, "pivot y", py, 0.25)
	w, h, err := files[0].Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	ttesting.AssertEqualInt(t, "width", w, 64)
	ttesting.AssertEqualInt(t, "height", h, 32)

	entity, _ := doc.Entity()
	anims, err := entity.Animations()
	if err != nil {
		t.Fatalf("Animations: %v", err)
	}
	ttesting.AssertEqualInt(t, "animation count", len(anims), 2)
	ttesting.AssertEqualString(t, "first animation", anims[0].Name, "idle")

	ms, ok := anims[0].Interval()
	if !ok || ms != 100 {
		t.Errorf("Interval() = %d, %v; want 100, true", ms, ok)
	}
	if _, ok := anims[1].Interval(); ok {
		t.Errorf("walk has no interval but Interval reported one")
	}

	mainline, err := anims[0].Mainline()
	if err != nil {
		t.Fatalf("Mainline: %v", err)
	}
	keys, err := mainline.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	ttesting.AssertEqualInt(t, "mainline keys", len(keys), 2)

	refs, err := keys[0].ObjectRefs()
	if err != nil {
		t.Fatalf("ObjectRefs: %v", err)
	}
	ttesting.AssertEqualInt(t, "refs in key 0", len(refs), 2)
	if refs[1] != (ObjectRef{ZIndex: 0, Timeline: 1, Key: 0}) {
		t.Errorf("refs[1] = %+v", refs[1])
	}

	timelines, err := anims[0].Timelines()
	if err != nil {
		t.Fatalf("Timelines: %v", err)
	}
	ttesting.AssertEqualInt(t, "timelines", len(timelines), 2)

	obj, ok, err := timelines[0].Object(1)
	if err != nil || !ok {
		t.Fatalf("Object(1) = %v, %v, %v", obj, ok, err)
	}
	ttesting.AssertEqualString(t, "object file", obj.File(), "0")
	if _, present, _ := obj.Float("x"); present {
		t.Errorf("x reported present on a key that omits it")
	}
	angle, present, err := obj.Float("angle")
	if err != nil || !present {
		t.Fatalf("angle: %v %v", present, err)
	}
	ttesting.AssertEqualFloat32(t, "angle", angle, 90)

	if _, ok, err := timelines[0].Object(7); ok || err != nil {
		t.Errorf("Object(7) = %v, %v; want a miss without error", ok, err)
	}
}

func TestTimelineObjectStopsAtUnreadableChild(t *testing.T) {
	doc := decode(t, `<spriter_data><entity name="x"><animation name="a">
		<timeline id="0"><key id="0"><object file="0"/></key><meta/><key id="1"><object file="0"/></key></timeline>
		<timeline id="1"><key id="first"><object file="0"/></key><key id="1"><object file="0"/></key></timeline>
	</animation></entity></spriter_data>`)
	entity, _ := doc.Entity()
	anims, err := entity.Animations()
	if err != nil {
		t.Fatalf("Animations: %v", err)
	}
	timelines, err := anims[0].Timelines()
	if err != nil {
		t.Fatalf("Timelines: %v", err)
	}
	if _, ok, err := timelines[0].Object(0); !ok || err != nil {
		t.Errorf("Object(0) before <meta> = %v, %v; want a hit", ok, err)
	}
	if _, ok, err := timelines[0].Object(1); ok || err != nil {
		t.Errorf("Object(1) after <meta> = %v, %v; want a miss without error", ok, err)
	}
	if _, ok, err := timelines[1].Object(1); ok || err != nil {
		t.Errorf("Object(1) after non-integer id = %v, %v; want a miss without error", ok, err)
	}
}

func assertFormatError(t *testing.T, name string, err error) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("got %v; want *FormatError", err)
		}
	})
}

func TestFormatErrors(t *testing.T) {
	doc := decode(t, `<spriter_data><folder><image id="0"/></folder><entity name="x"><obj_info/></entity></spriter_data>`)
	_, err := doc.Files()
	assertFormatError(t, "non-file child of folder", err)
	entity, err := doc.Entity()
	if err != nil {
		t.Fatalf("Entity: %v", err)
	}
	_, err = entity.Animations()
	assertFormatError(t, "non-animation child of entity", err)

	doc = decode(t, `<spriter_data><entity name="x"><animation name="a"><timeline id="0"/></animation></entity></spriter_data>`)
	entity, _ = doc.Entity()
	anims, err := entity.Animations()
	if err != nil {
		t.Fatalf("Animations: %v", err)
	}
	_, err = anims[0].Mainline()
	assertFormatError(t, "missing mainline", err)
	_, err = doc.Folder()
	assertFormatError(t, "missing folder", err)

	doc = decode(t, `<spriter_data><entity name="x"><animation name="a"><mainline><key><object_ref timeline="0" key="0"/></key><frame/></mainline><timeline id="0"><key id="0"/><bone/></timeline></animation></entity></spriter_data>`)
	entity, _ = doc.Entity()
	anims, _ = entity.Animations()
	mainline, err := anims[0].Mainline()
	if err != nil {
		t.Fatalf("Mainline: %v", err)
	}
	_, err = mainline.Keys()
	assertFormatError(t, "non-key child of mainline", err)

	key := &MainlineKey{node: mainline.node.Nodes[0], anim: anims[0]}
	_, err = key.ObjectRefs()
	assertFormatError(t, "object_ref without z_index", err)

	timelines, err := anims[0].Timelines()
	if err != nil {
		t.Fatalf("Timelines: %v", err)
	}
	_, _, err = timelines[0].Object(0)
	assertFormatError(t, "timeline key without object", err)

	doc = decode(t, `<spriter_data><folder/></spriter_data>`)
	_, err = doc.EntityName()
	assertFormatError(t, "missing entity", err)
}
