package codec_test

import (
	"context"
	stderrors "errors"
	"math"
	"reflect"
	"testing"

	"github.com/DanWilson00/mavwire/codec"
	"github.com/DanWilson00/mavwire/dialect"
	"github.com/DanWilson00/mavwire/errors"
	"github.com/DanWilson00/mavwire/wire"
	"github.com/DanWilson00/mavwire/x25"
)

const fixtureXML = `<?xml version="1.0"?>
<mavlink>
  <enums>
    <enum name="MAV_STATE">
      <entry value="0" name="MAV_STATE_UNINIT"/>
      <entry value="3" name="MAV_STATE_STANDBY"/>
      <entry value="4" name="MAV_STATE_ACTIVE"/>
    </enum>
  </enums>
  <messages>
    <message id="0" name="HEARTBEAT">
      <field type="uint8_t" name="type"/>
      <field type="uint8_t" name="autopilot"/>
      <field type="uint8_t" name="base_mode"/>
      <field type="uint32_t" name="custom_mode"/>
      <field type="uint8_t" name="system_status" enum="MAV_STATE"/>
      <field type="uint8_t_mavlink_version" name="mavlink_version"/>
    </message>
    <message id="1" name="SYS_STATUS">
      <field type="uint32_t" name="onboard_control_sensors_present"/>
      <field type="uint16_t" name="load"/>
      <field type="int8_t" name="battery_remaining"/>
      <extensions/>
      <field type="uint32_t" name="onboard_control_sensors_present_extended"/>
    </message>
    <message id="30" name="ATTITUDE">
      <field type="uint32_t" name="time_boot_ms"/>
      <field type="float" name="roll"/>
      <field type="float" name="pitch"/>
      <field type="float" name="yaw"/>
      <field type="float" name="rollspeed"/>
      <field type="float" name="pitchspeed"/>
      <field type="float" name="yawspeed"/>
    </message>
    <message id="140" name="ACTUATOR_CONTROL_TARGET">
      <field type="uint64_t" name="time_usec"/>
      <field type="uint8_t" name="group_mlx"/>
      <field type="float[8]" name="controls"/>
    </message>
    <message id="250" name="DEBUG_VECT">
      <field type="char[10]" name="name"/>
      <field type="uint64_t" name="time_usec"/>
      <field type="float" name="x"/>
      <field type="float" name="y"/>
      <field type="float" name="z"/>
    </message>
  </messages>
</mavlink>`

func testRegistry(t *testing.T) *dialect.Registry {
	t.Helper()
	c := dialect.NewCompiler(dialect.MapResolver{"fixture.xml": []byte(fixtureXML)})
	d, err := c.Compile(context.Background(), "fixture.xml")
	if err != nil {
		t.Fatalf("compile fixture: %v", err)
	}
	return dialect.NewRegistry(d)
}

// rawFrame builds a validated-looking frame directly, bypassing parser and
// builder, so decode behavior on arbitrary payload lengths can be probed.
func rawFrame(id uint32, payload []byte) *wire.Frame {
	return &wire.Frame{
		Version: wire.V2,
		Len:     uint8(len(payload)),
		Seq:     1,
		SysID:   1,
		CompID:  1,
		MsgID:   id,
		Payload: payload,
	}
}

func encodeParse(t *testing.T, reg *dialect.Registry, name string, values map[string]any) *wire.Frame {
	t.Helper()
	out, err := wire.NewBuilder(reg, 1, 1).Encode(name, values)
	if err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	frames := wire.NewParser(reg).Push(out)
	if len(frames) != 1 {
		t.Fatalf("encoded %s did not parse", name)
	}
	return frames[0]
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	reg := testRegistry(t)
	dec := codec.NewDecoder(reg)

	tests := []struct {
		msg    string
		values map[string]any
		want   map[string]any
	}{
		{
			msg: "HEARTBEAT",
			values: map[string]any{
				"type":            10,
				"custom_mode":     uint32(0xDEADBEEF),
				"system_status":   4,
				"mavlink_version": 3,
			},
			want: map[string]any{
				"type":            uint8(10),
				"autopilot":       uint8(0), // unsupplied fields decode as zero
				"base_mode":       uint8(0),
				"custom_mode":     uint32(0xDEADBEEF),
				"system_status":   uint8(4),
				"mavlink_version": uint8(3),
			},
		},
		{
			msg: "ATTITUDE",
			values: map[string]any{
				"time_boot_ms": uint32(123456),
				"roll":         float32(0.5),
				"pitch":        float32(-0.25),
				"yaw":          float32(math.Pi),
			},
			want: map[string]any{
				"time_boot_ms": uint32(123456),
				"roll":         float32(0.5),
				"pitch":        float32(-0.25),
				"yaw":          float32(math.Pi),
				"rollspeed":    float32(0),
				"pitchspeed":   float32(0),
				"yawspeed":     float32(0),
			},
		},
		{
			msg: "ACTUATOR_CONTROL_TARGET",
			values: map[string]any{
				"time_usec": uint64(987654321),
				"group_mlx": 2,
				"controls":  []float32{1, -1, 0.5, 0, 0, 0, 0, 0.125},
			},
			want: map[string]any{
				"time_usec": uint64(987654321),
				"group_mlx": uint8(2),
				"controls":  []float32{1, -1, 0.5, 0, 0, 0, 0, 0.125},
			},
		},
		{
			msg: "DEBUG_VECT",
			values: map[string]any{
				"name":      "vibe_x",
				"time_usec": uint64(42),
				"x":         float32(9.81),
			},
			want: map[string]any{
				"name":      "vibe_x",
				"time_usec": uint64(42),
				"x":         float32(9.81),
				"y":         float32(0),
				"z":         float32(0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			f := encodeParse(t, reg, tt.msg, tt.values)
			msg, err := dec.Decode(f)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if msg.Name != tt.msg {
				t.Errorf("name = %s", msg.Name)
			}
			if !reflect.DeepEqual(msg.Fields, tt.want) {
				t.Errorf("fields = %#v\nwant %#v", msg.Fields, tt.want)
			}
		})
	}
}

func TestDecodeHeaderPassThrough(t *testing.T) {
	reg := testRegistry(t)
	f := encodeParse(t, reg, "HEARTBEAT", nil)
	f.Seq, f.SysID, f.CompID = 9, 42, 200

	msg, err := codec.NewDecoder(reg).Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Seq != 9 || msg.SysID != 42 || msg.CompID != 200 {
		t.Errorf("source header = %d/%d/%d", msg.Seq, msg.SysID, msg.CompID)
	}
	if msg.ID != 0 || msg.Meta == nil {
		t.Errorf("metadata not attached: %+v", msg)
	}
}

func TestDecodeUnknownMessage(t *testing.T) {
	reg := testRegistry(t)
	if _, err := codec.NewDecoder(reg).Decode(rawFrame(31337, []byte{1})); err == nil {
		t.Fatal("expected error for unregistered id")
	}
}

func TestDecodeZeroTrimmedPayload(t *testing.T) {
	reg := testRegistry(t)
	dec := codec.NewDecoder(reg)

	// DEBUG_VECT with a short name leaves 8 trailing zero bytes.
	full := encodeParse(t, reg, "DEBUG_VECT", map[string]any{
		"name":      "ab",
		"time_usec": uint64(7),
		"x":         float32(1),
		"y":         float32(2),
		"z":         float32(3),
	})

	wantTrim := 8
	for i := 0; i < wantTrim; i++ {
		if full.Payload[len(full.Payload)-1-i] != 0 {
			t.Fatalf("expected %d trailing zero bytes, found nonzero at -%d", wantTrim, i)
		}
	}
	trimmed := rawFrame(250, full.Payload[:len(full.Payload)-wantTrim])

	fullMsg, err := dec.Decode(full)
	if err != nil {
		t.Fatalf("decode full: %v", err)
	}
	trimMsg, err := dec.Decode(trimmed)
	if err != nil {
		t.Fatalf("decode trimmed: %v", err)
	}
	if !reflect.DeepEqual(fullMsg.Fields, trimMsg.Fields) {
		t.Errorf("trimmed decode differs:\n%#v\n%#v", trimMsg.Fields, fullMsg.Fields)
	}
}

func TestDecodeTruncationBoundaryRule(t *testing.T) {
	reg := testRegistry(t)
	dec := codec.NewDecoder(reg)

	// ATTITUDE layout: time_boot_ms@0, roll@4, pitch@8, ...
	// Six received bytes: time_boot_ms complete, roll starts inside and
	// reads zero padding, pitch starts at the boundary and is absent.
	payload := []byte{0x10, 0x20, 0x30, 0x40, 0x00, 0x00}
	msg, err := dec.Decode(rawFrame(30, payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got := msg.Fields["time_boot_ms"]; got != uint32(0x40302010) {
		t.Errorf("time_boot_ms = %v", got)
	}
	if got, ok := msg.Fields["roll"]; !ok || got != float32(0) {
		t.Errorf("roll = %v (present %v), want zero from padding", got, ok)
	}
	if _, ok := msg.Fields["pitch"]; ok {
		t.Error("pitch starts at the received-length boundary and must be absent")
	}
	if _, ok := msg.Fields["yawspeed"]; ok {
		t.Error("yawspeed is wholly beyond the received bytes and must be absent")
	}
}

func TestDecodeEmptyPayloadHasNoFields(t *testing.T) {
	reg := testRegistry(t)
	msg, err := codec.NewDecoder(reg).Decode(rawFrame(0, nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(msg.Fields) != 0 {
		t.Errorf("fields = %#v, want none", msg.Fields)
	}
}

func TestDecodeExtensionFields(t *testing.T) {
	reg := testRegistry(t)
	dec := codec.NewDecoder(reg)
	m, _ := reg.MessageNamed("SYS_STATUS")

	// Base payload only: extension fields are absent, not zero.
	base := make([]byte, m.EncodedLength)
	msg, err := dec.Decode(rawFrame(1, base))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := msg.Fields["onboard_control_sensors_present_extended"]; ok {
		t.Error("extension field decoded from base-length payload")
	}

	// A sender that knows the extension ships a longer payload.
	extended := make([]byte, m.WireLength())
	extended[m.EncodedLength] = 0x2A
	msg, err = dec.Decode(rawFrame(1, extended))
	if err != nil {
		t.Fatalf("decode extended: %v", err)
	}
	if got := msg.Fields["onboard_control_sensors_present_extended"]; got != uint32(0x2A) {
		t.Errorf("extension field = %v, want 42", got)
	}
}

func TestDecodeEnumResolution(t *testing.T) {
	reg := testRegistry(t)

	frame := func(status byte) *wire.Frame {
		payload := []byte{0, 0, 0, 0, 0, 0, 0, status, 0}
		return rawFrame(0, payload)
	}

	plain, err := codec.NewDecoder(reg).Decode(frame(4))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := plain.Fields["system_status"]; got != uint8(4) {
		t.Errorf("without option: system_status = %v, want raw 4", got)
	}

	named := codec.NewDecoder(reg, codec.WithEnumNames())
	resolved, err := named.Decode(frame(4))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := resolved.Fields["system_status"]; got != "MAV_STATE_ACTIVE" {
		t.Errorf("with option: system_status = %v, want MAV_STATE_ACTIVE", got)
	}

	// Values with no entry pass through as raw integers.
	unresolved, err := named.Decode(frame(200))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := unresolved.Fields["system_status"]; got != uint8(200) {
		t.Errorf("unresolved value = %v, want raw 200", got)
	}
}

func TestDecodeSignedIntegers(t *testing.T) {
	reg := testRegistry(t)
	m, _ := reg.MessageNamed("SYS_STATUS")

	payload := make([]byte, m.EncodedLength)
	battery := m.Field("battery_remaining")
	payload[battery.Offset] = 0xFF // -1

	msg, err := codec.NewDecoder(reg).Decode(rawFrame(1, payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := msg.Fields["battery_remaining"]; got != int8(-1) {
		t.Errorf("battery_remaining = %v, want -1", got)
	}
}

// checksumSanity pins the frame checksum recipe end to end: the builder,
// the parser and this hand computation must agree byte for byte.
func TestChecksumRecipeAgreement(t *testing.T) {
	reg := testRegistry(t)
	m, _ := reg.MessageNamed("HEARTBEAT")

	out, err := wire.NewBuilder(reg, 1, 1).Encode("HEARTBEAT", map[string]any{"type": 6})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	h := x25.New()
	h.Write(out[1 : len(out)-2])
	h.WriteByte(m.CRCExtra)
	want := h.Sum16()

	got := uint16(out[len(out)-2]) | uint16(out[len(out)-1])<<8
	if got != want {
		t.Errorf("trailing checksum %#04x, recomputed %#04x", got, want)
	}
}

func TestDecodeRejectsChecksumMismatch(t *testing.T) {
	reg := testRegistry(t)
	dec := codec.NewDecoder(reg)

	f := encodeParse(t, reg, "HEARTBEAT", map[string]any{"type": 1})
	f.Checksum ^= 0x0001

	_, err := dec.Decode(f)
	if err == nil {
		t.Fatal("mismatched checksums must not decode")
	}
	var structured *errors.Error
	if !stderrors.As(err, &structured) || structured.Kind != errors.KindCrcMismatch {
		t.Errorf("unexpected error: %v", err)
	}
}
