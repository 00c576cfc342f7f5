package pca9685

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

// recordingTransport captures every frame and serves register reads from a
// fixed map.
type recordingTransport struct {
	frames [][]byte // Write frames, [addr, payload...]
	reads  [][]byte // WriteRead write-halves
	regs   map[byte]byte
	err    error
}

func (m *recordingTransport) Write(buf []byte) error {
	if m.err != nil {
		return m.err
	}
	f := make([]byte, len(buf))
	copy(f, buf)
	m.frames = append(m.frames, f)
	return nil
}

func (m *recordingTransport) WriteRead(w, r []byte) error {
	if m.err != nil {
		return m.err
	}
	f := make([]byte, len(w))
	copy(f, w)
	m.reads = append(m.reads, f)
	for i := range r {
		r[i] = m.regs[w[0]+byte(i)]
	}
	return nil
}

// captureLogger collects warning lines.
type captureLogger struct {
	lines []string
}

func (l *captureLogger) Printf(format string, v ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

func newTestDev() (*Dev, *recordingTransport, *captureLogger) {
	tr := &recordingTransport{regs: map[byte]byte{}}
	lg := &captureLogger{}
	return New(tr, WithLogger(lg)), tr, lg
}

func TestSetPWMWriteOrder(t *testing.T) {
	d, tr, _ := newTestDev()
	if err := d.SetPWM(3, 1024, 3192); err != nil {
		t.Fatal(err)
	}
	// Channel 3 block starts at 0x12. High bytes first.
	want := [][]byte{
		{0x13, 0x04}, // ON_H
		{0x15, 0x0C}, // OFF_H
		{0x12, 0x00}, // ON_L
		{0x14, 0x78}, // OFF_L
	}
	if !reflect.DeepEqual(tr.frames, want) {
		t.Errorf("frames = %X, want %X", tr.frames, want)
	}
}

func TestSetChannelValueMatchesSetPWM(t *testing.T) {
	d1, tr1, _ := newTestDev()
	d2, tr2, _ := newTestDev()
	if err := d1.SetChannelValue(5, 1024, 0); err != nil {
		t.Fatal(err)
	}
	if err := d2.SetPWM(5, 0, 1024); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tr1.frames, tr2.frames) {
		t.Errorf("SetChannelValue frames = %X, SetPWM frames = %X", tr1.frames, tr2.frames)
	}
}

func TestSetChannelValueClamping(t *testing.T) {
	testCases := []struct {
		name    string
		onTime  int
		wantOff uint16
	}{
		{"below range", -5, 0},
		{"above range", 5000, 4095},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, tr, lg := newTestDev()
			if err := d.SetChannelValue(2, tc.onTime, 0); err != nil {
				t.Fatal(err)
			}
			ref, refTr, _ := newTestDev()
			if err := ref.SetPWM(2, 0, tc.wantOff); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(tr.frames, refTr.frames) {
				t.Errorf("frames = %X, want %X", tr.frames, refTr.frames)
			}
			if len(lg.lines) != 1 {
				t.Fatalf("got %d warnings, want 1: %v", len(lg.lines), lg.lines)
			}
			if want := "channel 2"; !strings.Contains(lg.lines[0], want) {
				t.Errorf("warning %q does not name %q", lg.lines[0], want)
			}
		})
	}
}

func TestSetChannelValueInRangeDoesNotWarn(t *testing.T) {
	d, _, lg := newTestDev()
	if err := d.SetChannelValue(0, 4095, 0); err != nil {
		t.Fatal(err)
	}
	if len(lg.lines) != 0 {
		t.Errorf("unexpected warnings: %v", lg.lines)
	}
}

func TestSetChannelValueOffsetWraps(t *testing.T) {
	d1, tr1, _ := newTestDev()
	d2, tr2, _ := newTestDev()
	if err := d1.SetChannelValue(7, 100, 4096); err != nil {
		t.Fatal(err)
	}
	if err := d2.SetChannelValue(7, 100, 0); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tr1.frames, tr2.frames) {
		t.Errorf("offset 4096 frames = %X, offset 0 frames = %X", tr1.frames, tr2.frames)
	}
}

func TestSetChannelValueOffsetStaggers(t *testing.T) {
	d, tr, _ := newTestDev()
	if err := d.SetChannelValue(0, 100, 1000); err != nil {
		t.Fatal(err)
	}
	// ON = offset, OFF = (onTime+offset) mod 4096.
	want := [][]byte{
		{0x07, 0x03}, // ON_H: 1000 >> 8
		{0x09, 0x04}, // OFF_H: 1100 >> 8
		{0x06, 0xE8}, // ON_L: 1000 & 0xFF
		{0x08, 0x4C}, // OFF_L: 1100 & 0xFF
	}
	if !reflect.DeepEqual(tr.frames, want) {
		t.Errorf("frames = %X, want %X", tr.frames, want)
	}
}

func TestSetFullOn(t *testing.T) {
	d, tr, _ := newTestDev()
	if err := d.SetFullOn(0); err != nil {
		t.Fatal(err)
	}
	want := [][]byte{
		{0x07, 0x10}, // ON_H: full-on flag
		{0x06, 0x00},
		{0x09, 0x00},
		{0x08, 0x00},
	}
	if !reflect.DeepEqual(tr.frames, want) {
		t.Errorf("frames = %X, want %X", tr.frames, want)
	}
}

func TestSetFullOff(t *testing.T) {
	d, tr, _ := newTestDev()
	if err := d.SetFullOff(0); err != nil {
		t.Fatal(err)
	}
	want := [][]byte{
		{0x09, 0x10}, // OFF_H: full-off flag
		{0x07, 0x00},
		{0x06, 0x00},
		{0x08, 0x00},
	}
	if !reflect.DeepEqual(tr.frames, want) {
		t.Errorf("frames = %X, want %X", tr.frames, want)
	}
}

func TestSetAllPWM(t *testing.T) {
	d, tr, _ := newTestDev()
	if err := d.SetAllPWM(0, 0); err != nil {
		t.Fatal(err)
	}
	want := [][]byte{
		{0xFB, 0x00},
		{0xFD, 0x00},
		{0xFA, 0x00},
		{0xFC, 0x00},
	}
	if !reflect.DeepEqual(tr.frames, want) {
		t.Errorf("frames = %X, want %X", tr.frames, want)
	}
}

func TestSetDefaultMode(t *testing.T) {
	d, tr, _ := newTestDev()
	if err := d.SetDefaultMode(); err != nil {
		t.Fatal(err)
	}
	want := [][]byte{
		{0x00, 0x00},
		{0x01, 0x04},
	}
	if !reflect.DeepEqual(tr.frames, want) {
		t.Errorf("frames = %X, want %X", tr.frames, want)
	}
}

func TestChannelRangeChecked(t *testing.T) {
	d, tr, _ := newTestDev()
	for _, ch := range []int{-1, 16, 100} {
		if err := d.SetPWM(ch, 0, 0); err == nil {
			t.Errorf("SetPWM(%d): expected error", ch)
		}
		if err := d.SetChannelValue(ch, 0, 0); err == nil {
			t.Errorf("SetChannelValue(%d): expected error", ch)
		}
		if err := d.SetFullOn(ch); err == nil {
			t.Errorf("SetFullOn(%d): expected error", ch)
		}
		if err := d.SetFullOff(ch); err == nil {
			t.Errorf("SetFullOff(%d): expected error", ch)
		}
	}
	if len(tr.frames) != 0 {
		t.Errorf("out-of-range channel still wrote frames: %X", tr.frames)
	}
}

func TestTransportErrorPassesThrough(t *testing.T) {
	busErr := errors.New("bus gone")
	d := New(&recordingTransport{err: busErr}, WithLogger(&captureLogger{}))
	if err := d.SetPWM(0, 0, 0); err != busErr {
		t.Errorf("got %v, want the transport's own error", err)
	}
	if _, err := d.SetFrequency(50); err != busErr {
		t.Errorf("got %v, want the transport's own error", err)
	}
}

func TestReadRegWritesAddressFirst(t *testing.T) {
	d, tr, _ := newTestDev()
	tr.regs[0xFE] = 0x79
	if _, err := d.Frequency(); err != nil {
		t.Fatal(err)
	}
	if len(tr.reads) != 1 || len(tr.reads[0]) != 1 || tr.reads[0][0] != 0xFE {
		t.Errorf("read write-half = %X, want [FE]", tr.reads)
	}
}

func TestDebugTraceGoesThroughLogger(t *testing.T) {
	tr := &recordingTransport{regs: map[byte]byte{}}
	lg := &captureLogger{}
	d := New(tr, WithLogger(lg), WithDebug())
	if err := d.SetDefaultMode(); err != nil {
		t.Fatal(err)
	}
	if len(lg.lines) != 2 {
		t.Errorf("got %d trace lines, want 2: %v", len(lg.lines), lg.lines)
	}
}
