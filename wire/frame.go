package wire

// Version tags the protocol variant of a frame.
type Version uint8

const (
	V1 Version = 1
	V2 Version = 2
)

// Magic returns the start marker byte for the version.
func (v Version) Magic() byte {
	if v == V2 {
		return MagicV2
	}
	return MagicV1
}

func (v Version) String() string {
	if v == V2 {
		return "v2"
	}
	return "v1"
}

// Frame is one complete header+payload+checksum unit, transient and
// caller-owned. The parser only emits frames whose recomputed checksum
// matches the received one.
type Frame struct {
	Version       Version
	Len           uint8
	IncompatFlags uint8 // extended header only
	CompatFlags   uint8 // extended header only
	Seq           uint8
	SysID         uint8
	CompID        uint8
	MsgID         uint32
	Payload       []byte
	Checksum      uint16 // as received, low byte first on the wire
	Computed      uint16 // recomputed over header+payload+crc_extra
	Signature     []byte // 13-byte trailer when signed; never verified here
}

// Valid reports whether the received checksum matches the recomputed one.
func (f *Frame) Valid() bool {
	return f.Checksum == f.Computed
}

// Signed reports whether the frame carries a signature trailer.
func (f *Frame) Signed() bool {
	return f.Version == V2 && f.IncompatFlags&IncompatFlagSigned != 0
}
