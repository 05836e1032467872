// Package bild builds, encodes and decodes the BILD sprite directory: the
// list of symbols (named groups of sprite frames) with the UV rectangle and
// pivot of every frame on the packed texture page.
//
// Layout, all values little-endian int32 unless noted:
//
//	"BILD" version symbols frames name(string)
//	symbol*: hash path color flags numFrames
//	  frame*: sourceFrame duration buildImage
//	          pivotX pivotY pivotW pivotH u1 v1 u2 v2 (float32)
//	hashCount (hash name(string))*
package bild
