package wire

import (
	"sync/atomic"

	"github.com/DanWilson00/mavwire/dialect"
	"github.com/DanWilson00/mavwire/x25"
)

// parseState enumerates the byte-stream state machine. States are strictly
// sequential with no backtracking; ordering here matters because the
// checksum accumulates every consumed byte from stateLen through
// statePayload.
type parseState uint8

const (
	stateWaitStart parseState = iota
	stateLen
	stateIncompatFlags
	stateCompatFlags
	stateSeq
	stateSysID
	stateCompID
	stateMsgIDLow
	stateMsgIDMid
	stateMsgIDHigh
	statePayload
	stateCrcLow
	stateCrcHigh
	stateSignature
)

// Stats are the parser's running counters. Dropped frames are observable
// only here; the stream itself never reports per-frame failures.
type Stats struct {
	FramesReceived  uint64
	CrcErrors       uint64
	UnknownMessages uint64
}

// Parser reconstructs frames from arbitrary input chunks and validates
// each against the registry. State persists across Push calls, so a frame
// split across any chunk boundaries parses identically to one contiguous
// buffer.
//
// A Parser owns private mutable state and must be driven by exactly one
// byte stream; give each independent stream its own Parser. The compiled
// registry itself is immutable and may back any number of parsers. The
// counters are atomic, so Stats may be read from other goroutines while
// the stream goroutine pushes.
type Parser struct {
	reg        *dialect.Registry
	hash       *x25.Hash
	frame      *Frame
	state      parseState
	payloadIdx int
	crcLow     byte

	framesReceived  atomic.Uint64
	crcErrors       atomic.Uint64
	unknownMessages atomic.Uint64
}

// NewParser creates a parser validating against reg.
func NewParser(reg *dialect.Registry) *Parser {
	return &Parser{
		reg:  reg,
		hash: x25.New(),
	}
}

// Push consumes a chunk of raw bytes and returns the validated frames it
// completed, in stream order. Purely synchronous; never blocks.
func (p *Parser) Push(chunk []byte) []*Frame {
	var out []*Frame
	for _, b := range chunk {
		if f := p.feed(b); f != nil {
			out = append(out, f)
		}
	}
	return out
}

// Stats returns a snapshot of the running counters.
func (p *Parser) Stats() Stats {
	return Stats{
		FramesReceived:  p.framesReceived.Load(),
		CrcErrors:       p.crcErrors.Load(),
		UnknownMessages: p.unknownMessages.Load(),
	}
}

func (p *Parser) feed(b byte) *Frame {
	// Every header and payload byte past the start marker participates in
	// the checksum. Relies on state ordering above.
	if p.state >= stateLen && p.state <= statePayload {
		p.hash.WriteByte(b)
	}

	switch p.state {
	case stateWaitStart:
		// Any byte that is not a start marker is discarded; this is how
		// the parser resynchronizes after garbage or a dropped frame.
		switch b {
		case MagicV2:
			p.begin(V2)
		case MagicV1:
			p.begin(V1)
		}

	case stateLen:
		p.frame.Len = b
		if p.frame.Version == V2 {
			p.state = stateIncompatFlags
		} else {
			p.state = stateSeq
		}

	case stateIncompatFlags:
		p.frame.IncompatFlags = b
		p.state = stateCompatFlags

	case stateCompatFlags:
		p.frame.CompatFlags = b
		p.state = stateSeq

	case stateSeq:
		p.frame.Seq = b
		p.state = stateSysID

	case stateSysID:
		p.frame.SysID = b
		p.state = stateCompID

	case stateCompID:
		p.frame.CompID = b
		p.state = stateMsgIDLow

	case stateMsgIDLow:
		p.frame.MsgID = uint32(b)
		if p.frame.Version == V2 {
			p.state = stateMsgIDMid
		} else {
			p.beginPayload()
		}

	case stateMsgIDMid:
		p.frame.MsgID |= uint32(b) << 8
		p.state = stateMsgIDHigh

	case stateMsgIDHigh:
		p.frame.MsgID |= uint32(b) << 16
		p.beginPayload()

	case statePayload:
		p.frame.Payload[p.payloadIdx] = b
		p.payloadIdx++
		if p.payloadIdx == int(p.frame.Len) {
			p.state = stateCrcLow
		}

	case stateCrcLow:
		p.crcLow = b
		p.state = stateCrcHigh

	case stateCrcHigh:
		return p.finish(uint16(p.crcLow) | uint16(b)<<8)

	case stateSignature:
		p.frame.Signature = append(p.frame.Signature, b)
		if len(p.frame.Signature) == SignatureLen {
			return p.emit()
		}
	}

	return nil
}

func (p *Parser) begin(v Version) {
	p.frame = &Frame{Version: v}
	p.hash.Reset()
	p.payloadIdx = 0
	p.state = stateLen
}

func (p *Parser) beginPayload() {
	if p.frame.Len == 0 {
		p.frame.Payload = []byte{}
		p.state = stateCrcLow
		return
	}
	p.frame.Payload = make([]byte, p.frame.Len)
	p.state = statePayload
}

// finish runs at the second checksum byte: look up the message, fold in
// its integrity byte, and compare. Absence of metadata is a policy
// decision, not a parse failure, so an unknown id only bumps a counter.
func (p *Parser) finish(received uint16) *Frame {
	f := p.frame

	msg, ok := p.reg.Message(f.MsgID)
	if !ok {
		p.unknownMessages.Add(1)
		p.reset()
		return nil
	}

	p.hash.WriteByte(msg.CRCExtra)
	f.Checksum = received
	f.Computed = p.hash.Sum16()

	if !f.Valid() {
		p.crcErrors.Add(1)
		p.reset()
		return nil
	}

	if f.Signed() {
		f.Signature = make([]byte, 0, SignatureLen)
		p.state = stateSignature
		return nil
	}
	return p.emit()
}

func (p *Parser) emit() *Frame {
	f := p.frame
	p.framesReceived.Add(1)
	p.reset()
	return f
}

func (p *Parser) reset() {
	p.frame = nil
	p.state = stateWaitStart
}
