package render

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/segment"
)

func uniformFrame(d segment.Digit, dot bool) Frame {
	var f Frame
	for i := range f {
		f[i] = TubeState{Digit: d, Dot: dot}
	}
	return f
}

func TestNewStartsBlank(t *testing.T) {
	s := New(DefaultDim)

	got := s.ReadDisplay()
	for i, ts := range got {
		if ts.Digit != segment.Blank || ts.Dot {
			t.Errorf("tube %d = %+v, want {Blank false}", i, ts)
		}
	}
	if s.ReadDimLevel() != DefaultDim {
		t.Errorf("dim = %d, want %d", s.ReadDimLevel(), DefaultDim)
	}
}

func TestWriteReadDisplay(t *testing.T) {
	s := New(DefaultDim)
	want := Frame{{1, false}, {4, true}, {0, false}, {7, false}}

	s.WriteDisplay(want)

	if got := s.ReadDisplay(); got != want {
		t.Fatalf("ReadDisplay() = %v, want %v", got, want)
	}
	for i := range want {
		if got := s.ReadTube(i); got != want[i] {
			t.Errorf("ReadTube(%d) = %+v, want %+v", i, got, want[i])
		}
	}
	if got := s.ReadTube(5); got != want[1] {
		t.Errorf("ReadTube(5) = %+v, want wrap to tube 1 %+v", got, want[1])
	}
}

func TestWriteDisplayIdempotent(t *testing.T) {
	s := New(DefaultDim)
	f := Frame{{0, true}, {9, true}, {0, true}, {3, true}}

	s.WriteDisplay(f)
	first := s.ReadDisplay()
	s.WriteDisplay(f)
	second := s.ReadDisplay()

	if first != second {
		t.Fatalf("second read %v differs from first %v", second, first)
	}
}

func TestDimLevelClamp(t *testing.T) {
	s := New(42)
	if got := s.ReadDimLevel(); got != DimOn {
		t.Errorf("New(42) dim = %d, want %d", got, DimOn)
	}

	for _, l := range []DimLevel{0, 1, 7, 8} {
		s.WriteDimLevel(l)
		if got := s.ReadDimLevel(); got != l {
			t.Errorf("WriteDimLevel(%d) read back %d", l, got)
		}
	}

	s.WriteDimLevel(200)
	if got := s.ReadDimLevel(); got != DimOn {
		t.Errorf("WriteDimLevel(200) read back %d, want %d", got, DimOn)
	}
}

func TestConcurrentReadsNeverTear(t *testing.T) {
	s := New(DefaultDim)
	frames := [2]Frame{uniformFrame(1, true), uniformFrame(2, false)}
	s.WriteDisplay(frames[0])

	var (
		stop atomic.Bool
		wg   sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; !stop.Load(); i++ {
			s.WriteDisplay(frames[i&1])
		}
	}()

	for i := 0; i < 200_000; i++ {
		got := s.ReadDisplay()
		if got != frames[0] && got != frames[1] {
			stop.Store(true)
			wg.Wait()
			t.Fatalf("read %d observed torn frame %v", i, got)
		}
	}
	stop.Store(true)
	wg.Wait()
}

func TestFrameString(t *testing.T) {
	f := Frame{{0, true}, {9, true}, {0, false}, {3, false}}
	if got := f.String(); got != "0.9.03" {
		t.Errorf("String() = %q, want %q", got, "0.9.03")
	}
	if got := BlankFrame().String(); got != "----" {
		t.Errorf("BlankFrame().String() = %q, want %q", got, "----")
	}
}
