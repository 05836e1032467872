// Package anim builds, encodes and decodes the ANIM stream: one bank per SCML
// animation, one frame per mainline key, and one element per visible sprite
// carrying its affine transform.
//
// Layout, all values little-endian int32 unless noted:
//
//	"ANIM" version elements frames banks
//	bank*: name(string) hash rate(float32) numFrames
//	  frame*: x y w h (float32) numElements
//	    element*: image index layer flags
//	              a b g r m1 m2 m3 m4 m5 m6 order (float32)
//	maxVisibleSymbolFrames
//	hashCount (hash name(string))*
package anim
