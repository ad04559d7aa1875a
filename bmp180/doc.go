// Package bmp180 controls a Bosch BMP180 (BMP085 compatible) barometric
// pressure and temperature sensor over I²C.
//
// A Dev reads the eleven calibration coefficients once at Init, then each
// ReadSample runs a temperature conversion followed by a pressure conversion
// in the requested oversampling Mode and compensates both. The package has
// no polling loop of its own; callers pick the cadence.
//
// # Datasheet
//
// https://cdn-shop.adafruit.com/datasheets/BST-BMP180-DS000-09.pdf
//
// # Compensation
//
// The temperature stage is the datasheet's integer algorithm. The pressure
// stage uses the floating point form of the same polynomials, with the
// coefficients rescaled once by DeriveConstants. With the datasheet example
// (ut=27898, up=23843 at UltraLowPower) it gives 15.0°C and 69963 Pa against
// the 69964 Pa quoted, which was itself computed with rounded intermediates.
package bmp180
