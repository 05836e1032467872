// Package scml reads the subset of Spriter's SCML project format needed to
// rebuild symbols, frames and animation banks: the entity, its animations
// with their mainline keys and timelines, and the sprite files of the folder.
//
// The document is kept as an ordered element tree. Typed accessors check the
// structure as they walk it and report violations as *FormatError.
package scml
