// Package khash implements the name hash used by the target engine to refer
// to symbols, layers and animation banks in BILD and ANIM files.
//
// The hash must match the engine bit for bit, so all arithmetic is done on
// int32 and relies on two's complement wraparound.
package khash
