package bmp180

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// RawSample is the uncompensated output of one read cycle, kept verbatim.
type RawSample struct {
	// Temperature is the 2 byte result of the temperature conversion (MSB, LSB).
	Temperature [tempResultLen]byte
	// Pressure is the 3 byte result of the pressure conversion (MSB, LSB, XLSB).
	Pressure [3]byte
}

// UT returns the uncompensated temperature.
func (r RawSample) UT() int32 {
	return int32(binary.BigEndian.Uint16(r.Temperature[:]))
}

// UP returns the uncompensated pressure as MSB*256 + LSB + XLSB/256.
func (r RawSample) UP() float64 {
	return float64(r.Pressure[0])*256 + float64(r.Pressure[1]) + float64(r.Pressure[2])/256
}

// Reading is a compensated measurement.
type Reading struct {
	// Mode is the oversampling mode the pressure was acquired with.
	Mode Mode
	// TempTenths is the temperature in tenths of °C as computed by the
	// integer stage.
	TempTenths int32
	// Temperature is in °C.
	Temperature float64
	// Pressure is in Pa.
	Pressure float64
	Raw      RawSample
}

func (r Reading) String() string {
	return fmt.Sprintf("%.1f°C %.0fPa (%s)", r.Temperature, r.Pressure, r.Mode)
}

// Env converts the reading to periph units. Humidity is left at zero.
func (r Reading) Env() physic.Env {
	return physic.Env{
		Temperature: physic.Temperature(r.TempTenths)*100*physic.MilliKelvin + physic.ZeroCelsius,
		Pressure:    physic.Pressure(r.Pressure * float64(physic.Pascal)),
	}
}
