// Package snapshot persists node positions: a compact binary flattening of
// id/x/y triples, text-armored for embedding in a shareable link, plus a
// named on-disk store.
package snapshot

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

// Point is a rounded layout position. Snapshots carry integers: sub-unit
// precision is invisible on screen and halves the encoded size.
type Point struct {
	X, Y int
}

// Positions maps node id to its saved position.
type Positions map[string]Point

// Round converts float coordinates to a snapshot point.
func Round(x, y float64) Point {
	return Point{X: int(math.Round(x)), Y: int(math.Round(y))}
}

const maxIDLen = 1 << 12

// Encode flattens positions to the binary wire form: entry count, then for
// each entry the id (length-prefixed) and zigzag-varint x, y.
func Encode(p Positions) []byte {
	buf := make([]byte, 0, 16*len(p))
	buf = binary.AppendUvarint(buf, uint64(len(p)))
	for id, pt := range p {
		buf = binary.AppendUvarint(buf, uint64(len(id)))
		buf = append(buf, id...)
		buf = binary.AppendVarint(buf, int64(pt.X))
		buf = binary.AppendVarint(buf, int64(pt.Y))
	}
	return buf
}

// Decode parses the binary form. Malformed input fails closed with an
// error; it never panics. Callers treat any error as "no saved positions".
func Decode(data []byte) (Positions, error) {
	count, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, fmt.Errorf("snapshot: truncated header")
	}
	data = data[n:]

	if count > uint64(len(data)) {
		// Each entry needs at least 3 bytes; an absurd count is garbage.
		return nil, fmt.Errorf("snapshot: implausible entry count %d", count)
	}

	p := make(Positions, count)
	for i := uint64(0); i < count; i++ {
		idLen, n := binary.Uvarint(data)
		if n <= 0 || idLen > maxIDLen || uint64(len(data[n:])) < idLen {
			return nil, fmt.Errorf("snapshot: truncated id at entry %d", i)
		}
		data = data[n:]
		id := string(data[:idLen])
		data = data[idLen:]

		x, n := binary.Varint(data)
		if n <= 0 {
			return nil, fmt.Errorf("snapshot: truncated x at entry %d", i)
		}
		data = data[n:]

		y, n := binary.Varint(data)
		if n <= 0 {
			return nil, fmt.Errorf("snapshot: truncated y at entry %d", i)
		}
		data = data[n:]

		p[id] = Point{X: int(x), Y: int(y)}
	}
	return p, nil
}

// EncodeText armors the binary form for a shareable link.
func EncodeText(p Positions) string {
	return base64.RawURLEncoding.EncodeToString(Encode(p))
}

// DecodeText is the tolerant inverse of EncodeText.
func DecodeText(s string) (Positions, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot: decode text: %w", err)
	}
	return Decode(data)
}

// Covers reports whether every id in want has a saved position. The
// renderer applies a snapshot only when coverage is complete; a partial
// snapshot falls back to simulation.
func (p Positions) Covers(ids []string) bool {
	for _, id := range ids {
		if _, ok := p[id]; !ok {
			return false
		}
	}
	return true
}
