// Package x25 implements the 16-bit X.25 checksum (MCRF4XX variant of
// CRC-16-CCITT) used for frame validation and message signature bytes.
package x25

// Init is the seed value for a fresh checksum.
const Init uint16 = 0xFFFF

// Hash is a running 16-bit checksum accumulator. The zero value is not
// usable; obtain one with New.
type Hash struct {
	sum uint16
}

// New returns a Hash seeded with Init.
func New() *Hash {
	return &Hash{sum: Init}
}

// Reset restores the accumulator to its seed state.
func (h *Hash) Reset() {
	h.sum = Init
}

// WriteByte folds a single byte into the checksum.
func (h *Hash) WriteByte(b byte) error {
	tmp := uint16(b) ^ (h.sum & 0xFF)
	tmp = (tmp ^ (tmp << 4)) & 0xFF
	h.sum = (h.sum >> 8) ^ (tmp << 8) ^ (tmp << 3) ^ (tmp >> 4)
	return nil
}

// Write folds p into the checksum. It implements io.Writer and never
// returns an error.
func (h *Hash) Write(p []byte) (int, error) {
	for _, b := range p {
		h.WriteByte(b)
	}
	return len(p), nil
}

// WriteString folds each byte of s into the checksum.
func (h *Hash) WriteString(s string) {
	for i := 0; i < len(s); i++ {
		h.WriteByte(s[i])
	}
}

// Sum16 returns the current checksum value.
func (h *Hash) Sum16() uint16 {
	return h.sum
}

// Checksum returns the X.25 checksum of data in one call.
func Checksum(data []byte) uint16 {
	h := New()
	h.Write(data)
	return h.Sum16()
}
