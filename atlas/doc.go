// Package atlas reads and writes the text manifest emitted by the texture
// packer alongside the packed page image.
//
// The manifest starts with a six line page header, followed by one seven
// line record per packed sprite:
//
//	body
//	  rotate: false
//	  xy: 2, 2
//	  size: 64, 32
//	  orig: 64, 32
//	  offset: 0, 0
//	  index: 0
//
// Records are positional. A record that cannot be parsed is skipped as a
// whole and reading continues with the next one.
package atlas
