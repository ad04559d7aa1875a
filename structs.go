package main

import (
	"encoding/hex"
	"time"

	"BaroServer/bmp180"
)

type SensorReading struct {
	Temperature float64   `json:"temperature"`
	Pressure    float64   `json:"pressure"`
	PressurePa  float64   `json:"pressure_pa"`
	Mode        string    `json:"mode"`
	RawTemp     string    `json:"raw_temperature"`
	RawPress    string    `json:"raw_pressure"`
	Updated     time.Time `json:"-"`
	UpdatedStr  string    `json:"updated"`
}

func NewSensorReading(date time.Time) SensorReading {
	return SensorReading{
		Updated:    date,
		UpdatedStr: date.Format("2006-01-02 15:04:05"), // ISO 8601 without timezone
	}
}

// fromReading fills the sensor fields of s. Pressure is reported in hPa.
func (s SensorReading) fromReading(r bmp180.Reading) SensorReading {
	s.Temperature = r.Temperature
	s.Pressure = r.Pressure / HectoPascal
	s.PressurePa = r.Pressure
	s.Mode = r.Mode.String()
	s.RawTemp = hex.EncodeToString(r.Raw.Temperature[:])
	s.RawPress = hex.EncodeToString(r.Raw.Pressure[:])
	return s
}

type CalibrationInfo struct {
	AC1 int16  `json:"ac1"`
	AC2 int16  `json:"ac2"`
	AC3 int16  `json:"ac3"`
	AC4 uint16 `json:"ac4"`
	AC5 uint16 `json:"ac5"`
	AC6 uint16 `json:"ac6"`
	B1  int16  `json:"b1"`
	B2  int16  `json:"b2"`
	MB  int16  `json:"mb"`
	MC  int16  `json:"mc"`
	MD  int16  `json:"md"`
}

func NewCalibrationInfo(c bmp180.CalibrationData) CalibrationInfo {
	return CalibrationInfo{
		AC1: c.AC1, AC2: c.AC2, AC3: c.AC3,
		AC4: c.AC4, AC5: c.AC5, AC6: c.AC6,
		B1: c.B1, B2: c.B2,
		MB: c.MB, MC: c.MC, MD: c.MD,
	}
}
