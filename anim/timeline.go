package anim

import (
	"math"

	"github.com/skairunner/kparserX/scml"
)

// transform is the resolved placement of an object at one key.
type transform struct {
	x, y, angle    float32
	scaleX, scaleY float32
}

var identity = transform{scaleX: 1, scaleY: 1}

func (t transform) radians() float64 {
	return float64(t.angle) * (math.Pi / 180)
}

// matrix returns the 2x2 rotation/scale part followed by the translation.
// Translation is doubled and y flipped for the engine's coordinate space.
func (t transform) matrix() (m1, m2, m3, m4, m5, m6 float32) {
	sin, cos := math.Sincos(t.radians())
	sx, sy := float64(t.scaleX), float64(t.scaleY)
	m1 = float32(sx * cos)
	m2 = float32(sx * -sin)
	m3 = float32(sy * sin)
	m4 = float32(sy * cos)
	m5 = t.x * 2
	m6 = -t.y * 2
	return
}

// timelineState remembers the last resolved transform of every timeline in
// one animation. Spriter only writes attributes that changed, so omitted
// ones are taken from here. A fresh state is used for every animation.
type timelineState map[int]transform

// resolve fills in the object's omitted attributes from the timeline's last
// transform (or the identity) and records the result.
func (s timelineState) resolve(timeline int, obj *scml.Object) (transform, error) {
	last, ok := s[timeline]
	if !ok {
		last = identity
	}
	t := last
	for _, f := range []struct {
		name string
		dst  *float32
	}{
		{"scale_x", &t.scaleX},
		{"scale_y", &t.scaleY},
		{"angle", &t.angle},
		{"x", &t.x},
		{"y", &t.y},
	} {
		v, present, err := obj.Float(f.name)
		if err != nil {
			return transform{}, err
		}
		if present {
			*f.dst = v
		}
	}
	s[timeline] = t
	return t, nil
}
