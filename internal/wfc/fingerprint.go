package wfc

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/lawnchairsociety/terraingen/internal/terrain"
	"golang.org/x/crypto/blake2b"
)

// unresolvedMarker stands in for cells without a type when hashing.
const unresolvedMarker = 0xFF

// Fingerprint is a BLAKE2b-256 digest of the grid's dimensions and resolved
// types in row-major order. Equal maps have equal fingerprints.
func Fingerprint(g *Grid) string {
	buf := fingerprintHeader(g.Width, g.Height, len(g.tiles))
	for t := range g.AllTiles() {
		if tt, ok := t.Type(); ok {
			buf = append(buf, byte(tt))
		} else {
			buf = append(buf, unresolvedMarker)
		}
	}
	return digest(buf)
}

// FingerprintTypes hashes a map given as rows, matching Fingerprint for a
// fully resolved grid of the same content.
func FingerprintTypes(rows [][]terrain.Type) string {
	width := 0
	if len(rows) > 0 {
		width = len(rows[0])
	}
	buf := fingerprintHeader(width, len(rows), width*len(rows))
	for _, row := range rows {
		for _, tt := range row {
			buf = append(buf, byte(tt))
		}
	}
	return digest(buf)
}

func fingerprintHeader(width, height, cells int) []byte {
	buf := make([]byte, 8, 8+cells)
	binary.BigEndian.PutUint32(buf[0:4], uint32(width))
	binary.BigEndian.PutUint32(buf[4:8], uint32(height))
	return buf
}

func digest(buf []byte) string {
	sum := blake2b.Sum256(buf)
	return hex.EncodeToString(sum[:])
}

// SeedFromPhrase derives a seed from a free-form phrase, so maps can be
// shared as words instead of numbers.
func SeedFromPhrase(phrase string) int64 {
	sum := blake2b.Sum256([]byte(phrase))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
