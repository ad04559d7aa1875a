package bmp180

import (
	"errors"
	"fmt"
	"strings"
	"syscall"
)

// Error kinds returned by the driver. Test with errors.Is; the returned
// errors wrap one of these together with the underlying cause.
var (
	// ErrTransportUnavailable is returned by Init when no usable I²C bus
	// could be opened.
	ErrTransportUnavailable = errors.New("transport unavailable")
	// ErrAddressInUse is returned by Init when the device address is already
	// claimed on the bus.
	ErrAddressInUse = errors.New("address in use")
	// ErrCalibrationRead is returned by Init when any of the eleven
	// calibration coefficients could not be read.
	ErrCalibrationRead = errors.New("calibration read failure")
	// ErrTransportIO is returned by ReadSample when a bus transaction failed.
	// The session stays usable and the read can be retried.
	ErrTransportIO = errors.New("transport i/o error")
	// ErrTransportLost is returned when the bus adapter went away. The
	// session moves to Failed.
	ErrTransportLost = errors.New("transport lost")
	// ErrInvalidState is returned when an operation is not allowed in the
	// session's current state.
	ErrInvalidState = errors.New("invalid state")
)

// isLost reports whether err means the bus adapter is gone for good.
//
// ENXIO is not in the list: on Linux it is an address NACK, which usually
// clears on the next transaction.
func isLost(err error) bool {
	return errors.Is(err, ErrTransportLost) || errors.Is(err, syscall.ENODEV)
}

// busError maps an error from a periph bus to the driver's error kinds.
//
// The sysfs driver formats the ioctl errno with %v, so the errno only
// survives as text.
func busError(err error) error {
	if err == nil || isLost(err) {
		return err
	}
	if strings.HasSuffix(err.Error(), syscall.ENODEV.Error()) {
		return fmt.Errorf("%w: %v", ErrTransportLost, err)
	}
	return err
}
