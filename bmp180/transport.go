package bmp180

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Transport is the register access the session needs from the bus.
//
// It is owned by exactly one Dev. Implementations return an error wrapping
// ErrTransportLost when the bus is gone for good.
type Transport interface {
	// Write sends b in a single write transaction.
	Write(b []byte) error
	// WriteThenRead writes the register address and reads n bytes without
	// releasing the bus in between.
	WriteThenRead(reg byte, n int) ([]byte, error)
	// Close releases the transport.
	Close() error
}

// Opener acquires a Transport. Dev.Init calls it once per initialization.
type Opener func() (Transport, error)

// claims tracks the addresses held by open transports, per bus.
var claims = struct {
	mu sync.Mutex
	m  map[claimKey]struct{}
}{m: map[claimKey]struct{}{}}

type claimKey struct {
	bus  string
	addr uint16
}

func claim(k claimKey) error {
	claims.mu.Lock()
	defer claims.mu.Unlock()
	if _, ok := claims.m[k]; ok {
		return fmt.Errorf("%w: 0x%02X on %s", ErrAddressInUse, k.addr, k.bus)
	}
	claims.m[k] = struct{}{}
	return nil
}

func release(k claimKey) {
	claims.mu.Lock()
	delete(claims.m, k)
	claims.mu.Unlock()
}

// i2cTransport talks to one device on a periph I²C bus.
type i2cTransport struct {
	d   i2c.Dev
	key claimKey
	// closer is the bus when the transport opened it itself.
	closer i2c.BusCloser

	once sync.Once
	err  error
}

// NewI2CTransport claims addr on b and returns a Transport for it.
//
// Closing the transport releases the claim; the bus is left open.
func NewI2CTransport(b i2c.Bus, addr uint16) (Transport, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil bus", ErrTransportUnavailable)
	}
	k := claimKey{bus: b.String(), addr: addr}
	if err := claim(k); err != nil {
		return nil, err
	}
	return &i2cTransport{d: i2c.Dev{Bus: b, Addr: addr}, key: k}, nil
}

// OpenI2C returns an Opener that initializes the host drivers, opens the
// named I²C bus and claims addr on it. An empty name selects the first
// available bus.
//
// Closing the transport also closes the bus.
func OpenI2C(busName string, addr uint16) Opener {
	return func() (Transport, error) {
		if _, err := host.Init(); err != nil {
			return nil, fmt.Errorf("%w: host init: %w", ErrTransportUnavailable, err)
		}
		bus, err := i2creg.Open(busName)
		if err != nil {
			return nil, fmt.Errorf("%w: open %q: %w", ErrTransportUnavailable, busName, err)
		}
		t, err := NewI2CTransport(bus, addr)
		if err != nil {
			bus.Close()
			return nil, err
		}
		t.(*i2cTransport).closer = bus
		return t, nil
	}
}

func (t *i2cTransport) Write(b []byte) error {
	return busError(t.d.Tx(b, nil))
}

func (t *i2cTransport) WriteThenRead(reg byte, n int) ([]byte, error) {
	b := make([]byte, n)
	if err := t.d.Tx([]byte{reg}, b); err != nil {
		return nil, busError(err)
	}
	return b, nil
}

func (t *i2cTransport) Close() error {
	t.once.Do(func() {
		release(t.key)
		if t.closer != nil {
			t.err = t.closer.Close()
		}
	})
	return t.err
}

func (t *i2cTransport) String() string {
	return t.d.String()
}
