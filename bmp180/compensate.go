package bmp180

import "math"

// DerivedConstants are the floating point coefficients of the pressure
// polynomial, derived once from CalibrationData.
//
// X, Y and P are the quadratic coefficients (constant, linear, square) of
// the offset correction, the scale correction and the final pressure
// polynomial. P does not depend on the unit.
type DerivedConstants struct {
	C3, C4, B1, C5, C6, MC, MD float64

	X0, X1, X2 float64
	Y0, Y1, Y2 float64
	P0, P1, P2 float64
}

// DeriveConstants scales the calibration integers to floating point.
//
// It is a pure function of c.
func DeriveConstants(c CalibrationData) DerivedConstants {
	var k DerivedConstants
	k.C3 = 160 * math.Pow(2, -15) * float64(c.AC3)
	k.C4 = math.Pow(10, -3) * math.Pow(2, -15) * float64(c.AC4)
	k.B1 = 160 * 160 * math.Pow(2, -30) * float64(c.B1)
	k.C5 = (math.Pow(2, -15) / 160) * float64(c.AC5)
	k.C6 = float64(c.AC6)
	k.MC = (math.Pow(2, 11) / (160 * 160)) * float64(c.MC)
	k.MD = float64(c.MD) / 160

	k.X0 = float64(c.AC1)
	k.X1 = 160 * math.Pow(2, -13) * float64(c.AC2)
	k.X2 = 160 * 160 * math.Pow(2, -25) * float64(c.B2)

	k.Y0 = k.C4 * math.Pow(2, 15)
	k.Y1 = k.C4 * k.C3
	k.Y2 = k.C4 * k.B1

	k.P0 = (3791.0 - 8.0) / 1600.0
	k.P1 = 1.0 - 7357.0*math.Pow(2, -20)
	k.P2 = 3038.0 * 100.0 * math.Pow(2, -36)
	return k
}

// computeB5 runs the integer part of the temperature compensation as the
// device's fixed point engine does. Shifts on int32 are arithmetic.
func computeB5(ut int32, c CalibrationData) int32 {
	x1 := ((ut - int32(c.AC6)) * int32(c.AC5)) >> 15
	d := x1 + int32(c.MD)
	if d == 0 {
		// Only reachable with a corrupted calibration block.
		return x1
	}
	x2 := (int32(c.MC) << 11) / d
	return x1 + x2
}

// compensateTemp returns the temperature in tenths of °C.
func compensateTemp(ut int32, c CalibrationData) int32 {
	return (computeB5(ut, c) + 8) >> 4
}

// compensatePressure returns the pressure in hPa for a temperature in °C.
//
// temp must come from the same read cycle as up.
func compensatePressure(up, temp float64, k DerivedConstants) float64 {
	s := temp - 25.0
	x := k.X2*s*s + k.X1*s + k.X0
	y := k.Y2*s*s + k.Y1*s + k.Y0
	z := (up - x) / y
	return k.P2*z*z + k.P1*z + k.P0
}

// Compensate converts a raw sample into a Reading.
//
// Temperature is always computed first since the pressure polynomial depends
// on it. Both halves of raw must have been acquired in the same read cycle;
// the engine has no way of telling if they were not.
func Compensate(raw RawSample, c CalibrationData, k DerivedConstants) Reading {
	t := compensateTemp(raw.UT(), c)
	temp := float64(t) / 10.0
	hPa := compensatePressure(raw.UP(), temp, k)
	return Reading{
		TempTenths:  t,
		Temperature: temp,
		Pressure:    hPa * 100,
		Raw:         raw,
	}
}
