package timesource

import (
	"errors"
	"testing"
	"time"
)

const (
	regStatus  = 0x0F
	regControl = 0x0E
	osfBit     = 1 << 7
)

// regBus emulates the DS3231 register file with an auto-incrementing
// register pointer.
type regBus struct {
	regs [0x13]byte
	fail error
}

func (b *regBus) Tx(addr uint16, w, r []byte) error {
	if b.fail != nil {
		return b.fail
	}
	if addr != 0x68 {
		return errors.New("no device")
	}
	if len(w) == 0 {
		return nil
	}
	ptr := int(w[0])
	for _, v := range w[1:] {
		b.regs[ptr%len(b.regs)] = v
		ptr++
	}
	for i := range r {
		r[i] = b.regs[ptr%len(b.regs)]
		ptr++
	}
	return nil
}

func bcd(n int) byte { return byte(n/10<<4 | n%10) }

func (b *regBus) load(t time.Time) {
	b.regs[0] = bcd(t.Second())
	b.regs[1] = bcd(t.Minute())
	b.regs[2] = bcd(t.Hour())
	b.regs[3] = bcd(int(t.Weekday()) + 1)
	b.regs[4] = bcd(t.Day())
	b.regs[5] = bcd(int(t.Month()))
	b.regs[6] = bcd(t.Year() - 2000)
}

func newTestRTC(bus *regBus) (*RTC, *fakeMono) {
	mono := &fakeMono{t: time.Unix(5000, 0)}
	r := NewRTC(bus)
	r.now = mono.now
	return r, mono
}

func TestRTCInvalidWhenOscillatorStopped(t *testing.T) {
	bus := &regBus{}
	bus.load(time.Date(2025, 3, 9, 14, 7, 30, 0, time.UTC))
	bus.regs[regStatus] = osfBit

	r, _ := newTestRTC(bus)
	if _, ok := r.Now(); ok {
		t.Fatal("Now() valid with OSF set")
	}
	if !errors.Is(r.Err(), ErrRTCStopped) {
		t.Errorf("Err() = %v, want ErrRTCStopped", r.Err())
	}
}

func TestRTCReadsAndExtrapolates(t *testing.T) {
	want := time.Date(2025, 3, 9, 14, 7, 30, 0, time.UTC)
	bus := &regBus{}
	bus.load(want)

	r, mono := newTestRTC(bus)
	got, ok := r.Now()
	if !ok {
		t.Fatalf("Now() invalid: %v", r.Err())
	}
	if !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}

	// Within the poll interval the bus is not read again.
	bus.load(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	mono.t = mono.t.Add(300 * time.Millisecond)
	got, _ = r.Now()
	if w := want.Add(300 * time.Millisecond); !got.Equal(w) {
		t.Errorf("cached Now() = %v, want %v", got, w)
	}

	mono.t = mono.t.Add(RTCPollInterval)
	got, _ = r.Now()
	if got.Year() != 2030 {
		t.Errorf("after poll interval Now() = %v, want re-read 2030", got)
	}
}

func TestRTCBusError(t *testing.T) {
	bus := &regBus{fail: errors.New("nack")}
	r, _ := newTestRTC(bus)
	if _, ok := r.Now(); ok {
		t.Fatal("Now() valid on bus error")
	}
	if r.Err() == nil {
		t.Error("Err() = nil after bus error")
	}
}

func TestRTCSetTime(t *testing.T) {
	bus := &regBus{}
	r, _ := newTestRTC(bus)

	set := time.Date(2026, 10, 19, 21, 45, 12, 0, time.UTC)
	if err := r.SetTime(set); err != nil {
		t.Fatalf("SetTime: %v", err)
	}
	if bus.regs[2] != 0x21 || bus.regs[1] != 0x45 || bus.regs[4] != 0x19 {
		t.Errorf("registers = % x, want hour 21 min 45 day 19", bus.regs[:7])
	}

	got, ok := r.Now()
	if !ok {
		t.Fatalf("Now() invalid after SetTime: %v", r.Err())
	}
	if !got.Equal(set) {
		t.Errorf("Now() = %v, want %v", got, set)
	}
	if bus.regs[regControl]&osfBit != 0 {
		t.Error("oscillator left disabled after SetTime")
	}
}

func TestProbeRTC(t *testing.T) {
	if !ProbeRTC(&regBus{}) {
		t.Error("ProbeRTC() = false with chip present")
	}
	if ProbeRTC(&regBus{fail: errors.New("nack")}) {
		t.Error("ProbeRTC() = true on nack")
	}
}
