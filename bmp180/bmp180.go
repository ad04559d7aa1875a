package bmp180

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Address is the fixed 7-bit I²C address of the BMP180.
const Address uint16 = 0x77

const (
	AddrChipID  byte = 0xD0 // read-only, should contain 0x55
	AddrReset   byte = 0xE0
	AddrControl byte = 0xF4 // write-only
	AddrResult  byte = 0xF6 // MSB, LSB, XLSB at 0xF6..0xF8

	// calibration block, 2 bytes each, MSB first

	AddrAC1 byte = 0xAA
	AddrAC2 byte = 0xAC
	AddrAC3 byte = 0xAE
	AddrAC4 byte = 0xB0
	AddrAC5 byte = 0xB2
	AddrAC6 byte = 0xB4
	AddrB1  byte = 0xB6
	AddrB2  byte = 0xB8
	AddrMB  byte = 0xBA
	AddrMC  byte = 0xBC
	AddrMD  byte = 0xBE
)

const (
	chipID       byte = 0x55
	resetCommand byte = 0xB6
)

// State is the lifecycle state of a Dev.
type State uint8

const (
	Uninitialized State = iota
	Initialized
	// Failed is terminal: the bus went away.
	Failed
	// Closed is terminal: Halt was called.
	Closed
)

var stateNames = [...]string{"Uninitialized", "Initialized", "Failed", "Closed"}

func (s State) String() string {
	if int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", s)
	}
	return stateNames[s]
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Mode: Standard,
}

// Opts defines the options for the device.
type Opts struct {
	// Mode is the oversampling mode used by Read and Sense.
	Mode Mode
	// Sleep waits for a conversion to complete. It defaults to time.Sleep;
	// tests replace it to avoid real waits.
	Sleep func(time.Duration)
	// Logger receives debug and warning messages. It defaults to
	// slog.Default().
	Logger *slog.Logger
}

// New returns an uninitialized session that acquires its transport with
// open. Call Init before reading.
func New(open Opener, opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	d := &Dev{open: open, opts: *opts, sleep: opts.Sleep, log: opts.Logger}
	if d.sleep == nil {
		d.sleep = doSleep
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	d.log = d.log.With("dev", "bmp180")
	return d
}

// NewI2C returns an initialized session talking to a BMP180 on b.
//
// The address must be 0x77. It is recommended to call Halt() when done with
// the device; the bus itself stays open.
func NewI2C(b i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if addr != Address {
		return nil, errors.New("bmp180: given address not supported by device")
	}
	d := New(func() (Transport, error) { return NewI2CTransport(b, addr) }, opts)
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// Dev is a session with one BMP180.
//
// Calls are serialized; a read holds the session for its whole duration,
// settle delays included.
type Dev struct {
	open  Opener
	opts  Opts
	sleep func(time.Duration)
	log   *slog.Logger

	mu        sync.Mutex
	state     State
	t         Transport
	cal       CalibrationData
	k         DerivedConstants
	closeOnce sync.Once
}

func (d *Dev) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.t.(fmt.Stringer); ok {
		return fmt.Sprintf("BMP180{%s}", s)
	}
	return "BMP180"
}

// State returns the current lifecycle state.
func (d *Dev) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Init acquires the transport and reads the calibration data.
//
// On failure the transport is released and the session stays
// Uninitialized, so Init can be called again. Calling Init on a session
// that is not Uninitialized returns ErrInvalidState.
func (d *Dev) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Uninitialized {
		return fmt.Errorf("bmp180: init: %w: session is %s", ErrInvalidState, d.state)
	}
	if d.open == nil {
		return fmt.Errorf("bmp180: init: %w: no opener", ErrTransportUnavailable)
	}

	t, err := d.open()
	if err != nil {
		return fmt.Errorf("bmp180: init: %w", err)
	}
	cal, err := readCalibration(t)
	if err != nil {
		if cerr := t.Close(); cerr != nil {
			d.log.Warn("failed to release transport", "error", cerr)
		}
		return fmt.Errorf("bmp180: init: %w", err)
	}

	d.t = t
	d.cal = cal
	d.k = DeriveConstants(cal)
	d.state = Initialized
	d.log.Debug("initialized", "calibration", cal.String())
	return nil
}

// Calibration returns the coefficients read by Init.
func (d *Dev) Calibration() (CalibrationData, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Initialized {
		return CalibrationData{}, fmt.Errorf("bmp180: %w: session is %s", ErrInvalidState, d.state)
	}
	return d.cal, nil
}

// Constants returns the constants derived from the calibration data.
func (d *Dev) Constants() (DerivedConstants, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Initialized {
		return DerivedConstants{}, fmt.Errorf("bmp180: %w: session is %s", ErrInvalidState, d.state)
	}
	return d.k, nil
}

// ReadSample measures temperature then pressure in mode m.
//
// A transport error is returned as ErrTransportIO and leaves the session
// Initialized; the whole read can be retried. There is no way to cancel a
// read once started, wrap it in a deadline if needed.
func (d *Dev) ReadSample(m Mode) (Reading, error) {
	if !m.Valid() {
		return Reading{}, fmt.Errorf("bmp180: invalid mode %s", m)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Initialized {
		return Reading{}, fmt.Errorf("bmp180: read: %w: session is %s", ErrInvalidState, d.state)
	}

	var raw RawSample
	if err := d.convert(tempCommand, tempDelay, raw.Temperature[:]); err != nil {
		return Reading{}, d.ioError("temperature", err)
	}
	if err := d.convert(m.Command(), m.Delay(), raw.Pressure[:m.ResultLen()]); err != nil {
		return Reading{}, d.ioError("pressure", err)
	}

	r := Compensate(raw, d.cal, d.k)
	r.Mode = m
	return r, nil
}

// Read measures in the mode given in Opts.
func (d *Dev) Read() (Reading, error) {
	return d.ReadSample(d.opts.Mode)
}

// Sense reads in the mode given in Opts and stores temperature and pressure
// in e.
func (d *Dev) Sense(e *physic.Env) error {
	r, err := d.Read()
	if err != nil {
		return err
	}
	*e = r.Env()
	return nil
}

// Precision returns the resolution of Sense.
func (d *Dev) Precision(e *physic.Env) {
	e.Temperature = 100 * physic.MilliKelvin
	e.Pressure = physic.Pascal
}

// ChipID reads the chip identification register. A BMP180 returns 0x55.
func (d *Dev) ChipID() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Initialized {
		return 0, fmt.Errorf("bmp180: chip id: %w: session is %s", ErrInvalidState, d.state)
	}
	b, err := d.t.WriteThenRead(AddrChipID, 1)
	if err == nil && len(b) != 1 {
		err = fmt.Errorf("short read of %d bytes", len(b))
	}
	if err != nil {
		return 0, d.ioError("chip id", err)
	}
	if b[0] != chipID {
		d.log.Warn("unexpected chip id", "id", fmt.Sprintf("0x%02X", b[0]))
	}
	return b[0], nil
}

// SoftReset sends the power-on reset command. The calibration data is not
// affected.
func (d *Dev) SoftReset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Initialized {
		return fmt.Errorf("bmp180: reset: %w: session is %s", ErrInvalidState, d.state)
	}
	if err := d.t.Write([]byte{AddrReset, resetCommand}); err != nil {
		return d.ioError("reset", err)
	}
	return nil
}

// Halt releases the transport. It is safe to call more than once; only the
// first call closes the transport.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var err error
	d.closeOnce.Do(func() {
		if d.t != nil {
			if cerr := d.t.Close(); cerr != nil {
				err = fmt.Errorf("bmp180: halt: %w", cerr)
			}
		}
		d.t = nil
		d.state = Closed
	})
	return err
}

// Close is an alias for Halt.
func (d *Dev) Close() error {
	return d.Halt()
}

//

// convert starts a conversion, waits for it and reads the result into b.
//
// It must be called with d.mu lock held.
func (d *Dev) convert(cmd byte, delay time.Duration, b []byte) error {
	if err := d.t.Write([]byte{AddrControl, cmd}); err != nil {
		return err
	}
	d.sleep(delay)
	r, err := d.t.WriteThenRead(AddrResult, len(b))
	if err != nil {
		return err
	}
	if len(r) != len(b) {
		return fmt.Errorf("short read of %d bytes", len(r))
	}
	copy(b, r)
	return nil
}

// ioError classifies a transport error. A lost bus moves the session to
// Failed, anything else leaves it as is.
//
// It must be called with d.mu lock held.
func (d *Dev) ioError(op string, err error) error {
	if isLost(err) {
		d.state = Failed
		d.log.Warn("transport lost", "op", op, "error", err)
		if errors.Is(err, ErrTransportLost) {
			return fmt.Errorf("bmp180: %s: %w", op, err)
		}
		return fmt.Errorf("bmp180: %s: %w: %w", op, ErrTransportLost, err)
	}
	return fmt.Errorf("bmp180: %s: %w: %w", op, ErrTransportIO, err)
}

var doSleep = time.Sleep

var _ conn.Resource = &Dev{}
