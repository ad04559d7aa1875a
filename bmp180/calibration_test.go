package bmp180

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestParseCalibration_Datasheet(t *testing.T) {
	raw := [22]byte{
		0x01, 0x98, // AC1 408
		0xFF, 0xB8, // AC2 -72
		0xC7, 0xD1, // AC3 -14383
		0x7F, 0xE5, // AC4 32741
		0x7F, 0xF5, // AC5 32757
		0x5A, 0x71, // AC6 23153
		0x18, 0x2E, // B1 6190
		0x00, 0x04, // B2 4
		0x80, 0x00, // MB -32768
		0xDD, 0xF9, // MC -8711
		0x0B, 0x34, // MD 2868
	}
	if diff := cmp.Diff(datasheetCal, parseCalibration(raw)); diff != "" {
		t.Errorf("parseCalibration() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCalibration_Sign(t *testing.T) {
	fields := []struct {
		name     string
		get      func(CalibrationData) int64
		unsigned bool
	}{
		{"AC1", func(c CalibrationData) int64 { return int64(c.AC1) }, false},
		{"AC2", func(c CalibrationData) int64 { return int64(c.AC2) }, false},
		{"AC3", func(c CalibrationData) int64 { return int64(c.AC3) }, false},
		{"AC4", func(c CalibrationData) int64 { return int64(c.AC4) }, true},
		{"AC5", func(c CalibrationData) int64 { return int64(c.AC5) }, true},
		{"AC6", func(c CalibrationData) int64 { return int64(c.AC6) }, true},
		{"B1", func(c CalibrationData) int64 { return int64(c.B1) }, false},
		{"B2", func(c CalibrationData) int64 { return int64(c.B2) }, false},
		{"MB", func(c CalibrationData) int64 { return int64(c.MB) }, false},
		{"MC", func(c CalibrationData) int64 { return int64(c.MC) }, false},
		{"MD", func(c CalibrationData) int64 { return int64(c.MD) }, false},
	}
	pairs := [][2]byte{{0x00, 0x00}, {0x12, 0x34}, {0x7F, 0xFF}, {0x80, 0x00}, {0xFF, 0xFE}}

	for i, f := range fields {
		for _, p := range pairs {
			var raw [22]byte
			raw[2*i], raw[2*i+1] = p[0], p[1]
			want := int64(p[0])*256 + int64(p[1])
			if !f.unsigned && want >= 0x8000 {
				want -= 0x10000
			}
			if got := f.get(parseCalibration(raw)); got != want {
				t.Errorf("%s from %x = %d, want %d", f.name, p, got, want)
			}
		}
	}
}

func TestReadCalibration_Order(t *testing.T) {
	bus := &i2ctest.Playback{Ops: calOps(datasheetCal), DontPanic: true}
	tr, err := NewI2CTransport(bus, Address)
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	c, err := readCalibration(tr)
	if err != nil {
		t.Fatalf("readCalibration() error = %v", err)
	}
	if diff := cmp.Diff(datasheetCal, c); diff != "" {
		t.Errorf("readCalibration() mismatch (-want +got):\n%s", diff)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("playback not fully consumed: %v", err)
	}
}

func TestReadCalibration_Failure(t *testing.T) {
	for i := 0; i < len(calibrationRegs); i++ {
		f := newFake()
		f.failAfter = i
		f.err = errors.New("nack")
		c, err := readCalibration(f)
		if !errors.Is(err, ErrCalibrationRead) {
			t.Errorf("read %d: error = %v, want ErrCalibrationRead", i, err)
		}
		if c != (CalibrationData{}) {
			t.Errorf("read %d: got partial calibration %v", i, c)
		}
	}
}

type shortTransport struct{ fakeTransport }

func (s *shortTransport) WriteThenRead(reg byte, n int) ([]byte, error) {
	return []byte{0x01}, nil
}

func TestReadCalibration_ShortRead(t *testing.T) {
	_, err := readCalibration(&shortTransport{})
	if !errors.Is(err, ErrCalibrationRead) {
		t.Fatalf("error = %v, want ErrCalibrationRead", err)
	}
}
