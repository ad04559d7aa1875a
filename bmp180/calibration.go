package bmp180

import (
	"encoding/binary"
	"fmt"
)

// CalibrationData holds the eleven coefficients programmed into the device's
// EEPROM at manufacture time.
//
// It identifies one physical unit and never changes after being read.
type CalibrationData struct {
	AC1, AC2, AC3 int16
	AC4, AC5, AC6 uint16
	B1, B2        int16
	MB, MC, MD    int16
}

func (c CalibrationData) String() string {
	return fmt.Sprintf("AC1=%d AC2=%d AC3=%d AC4=%d AC5=%d AC6=%d B1=%d B2=%d MB=%d MC=%d MD=%d",
		c.AC1, c.AC2, c.AC3, c.AC4, c.AC5, c.AC6, c.B1, c.B2, c.MB, c.MC, c.MD)
}

// calibrationRegs lists the MSB register of each coefficient, in read order.
var calibrationRegs = [...]byte{
	AddrAC1, AddrAC2, AddrAC3, AddrAC4, AddrAC5, AddrAC6,
	AddrB1, AddrB2, AddrMB, AddrMC, AddrMD,
}

// parseCalibration maps the 22 bytes of the calibration block (0xAA through
// 0xBF, MSB first) to the coefficients.
func parseCalibration(raw [2 * len(calibrationRegs)]byte) (c CalibrationData) {
	getUint16 := func(i int) uint16 {
		return binary.BigEndian.Uint16(raw[2*i : 2*i+2])
	}
	getInt16 := func(i int) int16 {
		return int16(getUint16(i))
	}

	c.AC1 = getInt16(0)
	c.AC2 = getInt16(1)
	c.AC3 = getInt16(2)
	c.AC4 = getUint16(3)
	c.AC5 = getUint16(4)
	c.AC6 = getUint16(5)
	c.B1 = getInt16(6)
	c.B2 = getInt16(7)
	c.MB = getInt16(8)
	c.MC = getInt16(9)
	c.MD = getInt16(10)
	return c
}

// readCalibration reads every coefficient with its own 2 byte register read.
//
// Any failure discards what was read so far.
func readCalibration(t Transport) (CalibrationData, error) {
	var raw [2 * len(calibrationRegs)]byte
	for i, reg := range calibrationRegs {
		b, err := t.WriteThenRead(reg, 2)
		if err != nil {
			return CalibrationData{}, fmt.Errorf("%w: register 0x%02X: %w", ErrCalibrationRead, reg, err)
		}
		if len(b) != 2 {
			return CalibrationData{}, fmt.Errorf("%w: register 0x%02X: short read of %d bytes", ErrCalibrationRead, reg, len(b))
		}
		copy(raw[2*i:], b)
	}
	return parseCalibration(raw), nil
}
