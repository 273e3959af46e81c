// Package bytesutil provides small byte-slice helpers used throughout the
// block/attestation pipeline, mirroring the teacher's shared/bytesutil
// package (ToBytes32, ToBytes4, and the padded-graffiti helper spec.md §6
// requires).
package bytesutil

// ToBytes32 copies the first 32 bytes of b into a fixed-size array, zero
// padding if b is shorter.
func ToBytes32(b []byte) [32]byte {
	var out [32]byte
	copy(out[:], b)
	return out
}

// ToBytes4 copies the first 4 bytes of b into a fixed-size array.
func ToBytes4(b []byte) [4]byte {
	var out [4]byte
	copy(out[:], b)
	return out
}

// PadTo32 truncates or zero-pads s to exactly 32 bytes, used for the
// graffiti field spec.md §6 describes.
func PadTo32(s string) [32]byte {
	var out [32]byte
	copy(out[:], s)
	return out
}

// DefaultGraffiti is the default 32-byte graffiti embedded in produced
// blocks when the caller supplies none (spec.md §6).
var DefaultGraffiti = PadTo32("beaconcore")
