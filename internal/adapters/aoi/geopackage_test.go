package aoi

import (
	"encoding/binary"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

// encodeGPB builds a GeoPackage geometry blob without an envelope,
// mirroring the header layout decodeGPB strips.
func encodeGPB(g orb.Geometry, srsID int32) ([]byte, error) {
	payload, err := wkb.Marshal(g, binary.LittleEndian)
	if err != nil {
		return nil, err
	}

	header := make([]byte, gpbHeaderSize)
	header[0], header[1] = 'G', 'P'
	header[2] = 0    // version
	header[3] = 0x01 // little-endian header, no envelope
	binary.LittleEndian.PutUint32(header[4:], uint32(srsID))

	return append(header, payload...), nil
}

func TestGPBRoundTrip(t *testing.T) {
	poly := orb.Polygon{{{13.0, 52.0}, {13.1, 52.0}, {13.1, 52.1}, {13.0, 52.1}, {13.0, 52.0}}}

	blob, err := encodeGPB(poly, 4326)
	if err != nil {
		t.Fatalf("encodeGPB() error = %v", err)
	}

	got, err := decodeGPB(blob)
	if err != nil {
		t.Fatalf("decodeGPB() error = %v", err)
	}
	if !orb.Equal(got, poly) {
		t.Errorf("round trip mismatch: %v", got)
	}
}

func TestDecodeGPBErrors(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{"empty blob", nil},
		{"wrong magic", []byte("XXxxxxxxxxxxxxxx")},
		{"truncated header", []byte("GP")},
		{"empty geometry flag", []byte{'G', 'P', 0, 0x21, 0, 0, 0, 0}},
		{"invalid envelope indicator", []byte{'G', 'P', 0, 0x0A, 0, 0, 0, 0, 1, 2}},
		{"truncated envelope", []byte{'G', 'P', 0, 0x03, 0, 0, 0, 0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeGPB(tt.blob); err == nil {
				t.Error("decodeGPB() expected error, got nil")
			}
		})
	}
}

func TestEnvelopeSize(t *testing.T) {
	tests := []struct {
		flags byte
		want  int
	}{
		{0x00, 0},
		{0x02, 32},
		{0x04, 48},
		{0x06, 48},
		{0x08, 64},
	}

	for _, tt := range tests {
		got, err := envelopeSize(tt.flags)
		if err != nil {
			t.Errorf("envelopeSize(%#x) error = %v", tt.flags, err)
			continue
		}
		if got != tt.want {
			t.Errorf("envelopeSize(%#x) = %d, want %d", tt.flags, got, tt.want)
		}
	}
}
