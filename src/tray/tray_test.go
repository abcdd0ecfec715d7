package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"

	"copypolish/src/eventloop"
	"copypolish/src/listener"
)

func TestIconImage(t *testing.T) {
	img := IconImage()
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Fatalf("Expected 64x64, got %v", img.Bounds())
	}
	tests := []struct {
		x, y  int
		frame bool
	}{
		{0, 0, false},
		{32, 32, false},
		{12, 12, true},
		{14, 30, true},
		{52, 52, true},
		{15, 15, false},
		{53, 53, false},
	}
	for _, tt := range tests {
		got := img.RGBAAt(tt.x, tt.y)
		want := iconFill
		if tt.frame {
			want = iconFrame
		}
		if got != want {
			t.Errorf("Pixel (%d,%d): expected %v, got %v", tt.x, tt.y, want, got)
		}
	}
}

func TestIconIsICOWrappedPNG(t *testing.T) {
	data := Icon()
	if len(data) < 22 {
		t.Fatalf("Icon too short: %d bytes", len(data))
	}
	var header [3]uint16
	binary.Read(bytes.NewReader(data[:6]), binary.LittleEndian, &header)
	if header != [3]uint16{0, 1, 1} {
		t.Errorf("Unexpected ICONDIR %v", header)
	}
	if data[6] != 64 || data[7] != 64 {
		t.Errorf("Expected 64x64 entry, got %dx%d", data[6], data[7])
	}
	size := binary.LittleEndian.Uint32(data[14:18])
	offset := binary.LittleEndian.Uint32(data[18:22])
	if offset != 22 || int(size) != len(data)-22 {
		t.Errorf("Unexpected size/offset %d/%d for %d bytes", size, offset, len(data))
	}
	if _, err := png.Decode(bytes.NewReader(data[22:])); err != nil {
		t.Errorf("Embedded image is not a PNG: %v", err)
	}
}

func TestTooltip(t *testing.T) {
	if Tooltip(true) != "CopyPolish - processing..." || Tooltip(false) != "CopyPolish" {
		t.Errorf("Unexpected tooltips %q / %q", Tooltip(true), Tooltip(false))
	}
}

func TestStateBeforeReadyIsCached(t *testing.T) {
	var posted []eventloop.Command
	tr := New(func(c eventloop.Command) { posted = append(posted, c) })
	tr.SetListening(listener.Listening)
	tr.SetBusy(true)
	if !tr.listening || !tr.busy {
		t.Errorf("Expected cached state, got listening=%v busy=%v", tr.listening, tr.busy)
	}
	if len(posted) != 0 {
		t.Errorf("Expected no commands, got %v", posted)
	}
}
