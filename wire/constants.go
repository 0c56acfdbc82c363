package wire

// Start markers select the protocol variant for the frame that follows.
const (
	MagicV1 byte = 0xFE // base header, 1-byte message id
	MagicV2 byte = 0xFD // extended header, 3-byte message id, flags
)

const (
	// MaxPayloadLen is the largest payload a length byte can describe.
	MaxPayloadLen = 255

	// SignatureLen is the size of the signature trailer that follows the
	// checksum when IncompatFlagSigned is set.
	SignatureLen = 13
)

// Incompatibility flags (extended header only). The parser interprets
// only the signature bit, which adds a trailer after the checksum; other
// bits are carried through on the frame untouched.
const (
	IncompatFlagSigned byte = 0x01
)

// Header lengths excluding the start marker.
const (
	headerLenV1 = 5 // len seq sysid compid msgid
	headerLenV2 = 9 // len incompat compat seq sysid compid msgid[3]
)
