package bmp180

import (
	"fmt"
	"strings"
	"time"
)

// Mode is the pressure oversampling setting.
//
// The higher the mode, the more internal samples the device averages per
// pressure measurement and the longer the conversion takes.
type Mode uint8

// Possible oversampling modes.
const (
	UltraLowPower       Mode = 0
	Standard            Mode = 1
	HighResolution      Mode = 2
	UltraHighResolution Mode = 3
)

const modeName = "UltraLowPowerStandardHighResolutionUltraHighResolution"

var modeIndex = [...]uint8{0, 13, 21, 35, 54}

func (m Mode) String() string {
	if m >= Mode(len(modeIndex)-1) {
		return fmt.Sprintf("Mode(%d)", m)
	}
	return modeName[modeIndex[m]:modeIndex[m+1]]
}

// Valid reports whether m is one of the four oversampling modes.
func (m Mode) Valid() bool {
	return m <= UltraHighResolution
}

// modeSettings is the (command, settle delay, result length) triple for one
// oversampling mode.
type modeSettings struct {
	cmd   byte
	delay time.Duration
	n     int
}

var modes = [...]modeSettings{
	UltraLowPower:       {0x34, 5 * time.Millisecond, 3},
	Standard:            {0x74, 8 * time.Millisecond, 3},
	HighResolution:      {0xB4, 14 * time.Millisecond, 3},
	UltraHighResolution: {0xF4, 26 * time.Millisecond, 3},
}

// Temperature conversion does not depend on the mode.
const (
	tempCommand   byte = 0x2E
	tempDelay          = 5 * time.Millisecond
	tempResultLen      = 2
)

// settings returns the zero triple for an invalid mode.
func (m Mode) settings() modeSettings {
	if !m.Valid() {
		return modeSettings{}
	}
	return modes[m]
}

// Command returns the byte written to the control register to start a
// pressure conversion in this mode, or 0 if m is not valid.
func (m Mode) Command() byte {
	return m.settings().cmd
}

// Delay returns the conversion time to wait before the result can be read,
// or 0 if m is not valid.
func (m Mode) Delay() time.Duration {
	return m.settings().delay
}

// ResultLen returns the number of result bytes read after the conversion.
//
// All modes read MSB, LSB and XLSB; the extra resolution bits of the higher
// modes in XLSB are not decoded.
func (m Mode) ResultLen() int {
	return modes[m].n
}

// ParseMode returns the Mode named s. Matching is case insensitive and also
// accepts the short names ulp, std, hr and uhr, or the oversampling setting
// 0 to 3.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ultralowpower", "ulp", "0":
		return UltraLowPower, nil
	case "standard", "std", "1":
		return Standard, nil
	case "highresolution", "hr", "2":
		return HighResolution, nil
	case "ultrahighresolution", "uhr", "3":
		return UltraHighResolution, nil
	default:
		return 0, fmt.Errorf("bmp180: unknown mode %q", s)
	}
}
