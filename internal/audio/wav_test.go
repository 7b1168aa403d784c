package audio

import (
	"encoding/binary"
	"testing"
)

func TestEncodeWAVHeader(t *testing.T) {
	samples := []int16{0, 1, -1, 12345}
	data := EncodeWAV(samples, SampleRate, Channels)

	if len(data) != 44+len(samples)*2 {
		t.Fatalf("encoded length = %d, want %d", len(data), 44+len(samples)*2)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE magic")
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != SampleRate {
		t.Errorf("sample rate = %d, want %d", got, SampleRate)
	}
	if got := binary.LittleEndian.Uint16(data[22:24]); got != Channels {
		t.Errorf("channels = %d, want %d", got, Channels)
	}
	if got := binary.LittleEndian.Uint32(data[28:32]); got != SampleRate*Channels*2 {
		t.Errorf("byte rate = %d, want %d", got, SampleRate*Channels*2)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(len(samples)*2) {
		t.Errorf("data chunk size = %d, want %d", got, len(samples)*2)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	original := []int16{0, 1, -1, 32767, -32768, 12345, -6789}
	data := EncodeWAV(original, SampleRate, Channels)

	buf, err := DecodeWAV(data)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if buf.SampleRate != SampleRate || buf.Channels != Channels {
		t.Errorf("format = %dHz/%dch, want %d/%d", buf.SampleRate, buf.Channels, SampleRate, Channels)
	}
	if len(buf.Samples) != len(original) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Samples), len(original))
	}
	for i, v := range original {
		if buf.Samples[i] != v {
			t.Errorf("sample[%d] = %d, want %d", i, buf.Samples[i], v)
		}
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("not audio at all"),
		make([]byte, 44), // zeroed header, no RIFF magic
	}
	for i, data := range cases {
		if _, err := DecodeWAV(data); err == nil {
			t.Errorf("case %d: DecodeWAV accepted invalid input", i)
		}
	}
}

func TestDecodeWAVRejectsNonPCM(t *testing.T) {
	data := EncodeWAV([]int16{1, 2, 3}, SampleRate, Channels)
	binary.LittleEndian.PutUint16(data[20:22], 3) // IEEE float format tag
	if _, err := DecodeWAV(data); err == nil {
		t.Error("DecodeWAV accepted non-PCM format")
	}
}

func TestDecodeWAVSkipsUnknownChunks(t *testing.T) {
	// Some encoders put a LIST chunk between fmt and data.
	base := EncodeWAV([]int16{10, 20, 30}, SampleRate, Channels)
	fmtChunk := base[12:36]
	dataChunk := base[36:]

	list := append([]byte("LIST"), 0, 0, 0, 0)
	binary.LittleEndian.PutUint32(list[4:8], 4)
	list = append(list, []byte("INFO")...)

	out := append([]byte{}, base[0:12]...)
	out = append(out, fmtChunk...)
	out = append(out, list...)
	out = append(out, dataChunk...)
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))

	buf, err := DecodeWAV(out)
	if err != nil {
		t.Fatalf("DecodeWAV with LIST chunk: %v", err)
	}
	if len(buf.Samples) != 3 || buf.Samples[1] != 20 {
		t.Errorf("decoded samples = %v, want [10 20 30]", buf.Samples)
	}
}
