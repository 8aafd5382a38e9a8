package handle

import (
	"testing"

	"github.com/latticeforge/ensemble/pkg/bit"
	"github.com/latticeforge/ensemble/pkg/ensemble"
)

func TestLazyAwiRetroAndEval(t *testing.T) {
	e := ensemble.New()
	l, err := NewLazyOpaque(e, 4)
	if err != nil {
		t.Fatalf("NewLazyOpaque: %v", err)
	}
	if err := l.RetroUint64(0b1011); err != nil {
		t.Fatalf("RetroUint64: %v", err)
	}
	rn, err := l.rnode()
	if err != nil {
		t.Fatalf("rnode: %v", err)
	}
	bits := make([]ensemble.PBack, 4)
	for i, b := range rn.Bits {
		bits[i] = *b
	}
	ev := FromBits(e, bits)
	got, err := ev.EvalUint64()
	if err != nil {
		t.Fatalf("EvalUint64: %v", err)
	}
	if got != 0b1011 {
		t.Fatalf("expected 0b1011, got %b", got)
	}
}

func TestLazyAwiDriveWithDelay(t *testing.T) {
	e := ensemble.New()
	driver, err := NewLazyOpaque(e, 1)
	if err != nil {
		t.Fatal(err)
	}
	driven, err := NewLazyOpaque(e, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := driven.DriveWithDelay(driver, 1); err != nil {
		t.Fatalf("DriveWithDelay: %v", err)
	}
	if err := driver.Retro([]bool{true}); err != nil {
		t.Fatalf("Retro: %v", err)
	}

	drn, _ := driven.rnode()
	ev := FromBits(e, []ensemble.PBack{*drn.Bits[0]})
	b, err := ev.EvalBit(0)
	if err != nil {
		t.Fatalf("EvalBit: %v", err)
	}
	if !b {
		t.Fatal("expected the delayed driven bit to resolve true after draining the event heap")
	}
}

func TestNetFourToOneDynamicSelect(t *testing.T) {
	e := ensemble.New()
	net, err := NewNetZero(e, 4)
	if err != nil {
		t.Fatal(err)
	}
	literals := []uint64{0x3, 0x5, 0x9, 0xA}
	for _, v := range literals {
		p, err := NewLazyOpaque(e, 4)
		if err != nil {
			t.Fatal(err)
		}
		if err := p.RetroUint64(v); err != nil {
			t.Fatal(err)
		}
		if _, err := net.Push(p); err != nil {
			t.Fatal(err)
		}
	}

	idx, err := NewLazyOpaque(e, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.RetroUint64(0); err != nil {
		t.Fatal(err)
	}

	valid, err := net.Drive(idx)
	if err != nil {
		t.Fatalf("Drive: %v", err)
	}

	for i, want := range literals {
		if err := idx.RetroUint64(uint64(i)); err != nil {
			t.Fatal(err)
		}
		ok, err := valid.EvalBit(0)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatalf("index %d: expected the selection to be reported valid", i)
		}
		bits, err := net.Bits()
		if err != nil {
			t.Fatal(err)
		}
		got, err := bits.EvalUint64()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("index %d: expected port value %#x, got %#x", i, want, got)
		}
	}
}

func TestCorresponderTranspose(t *testing.T) {
	e := ensemble.New()
	a, _ := NewLazyOpaque(e, 1)
	b, _ := NewLazyOpaque(e, 1)
	c := NewCorresponder()
	c.Correspond(a.External(), b.External())

	other, err := c.Transpose(a.External())
	if err != nil {
		t.Fatalf("Transpose: %v", err)
	}
	if other != b.External() {
		t.Fatalf("expected b's external, got %v", other)
	}

	x, _ := NewLazyOpaque(e, 1)
	if _, err := c.Transpose(x.External()); err == nil {
		t.Fatal("expected an error transposing a handle with no correspondences")
	}

	d, _ := NewLazyOpaque(e, 1)
	c.Correspond(a.External(), d.External())
	if _, err := c.Transpose(a.External()); err == nil {
		t.Fatal("expected an error transposing a handle with more than one correspondence")
	}
}

func TestMakeLutStillUsableDirectlyAlongsideHandles(t *testing.T) {
	e := ensemble.New()
	a, _ := NewLazyOpaque(e, 1)
	b, _ := NewLazyOpaque(e, 1)
	ra, _ := a.rnode()
	rb, _ := b.rnode()
	out, err := e.MakeLut([]ensemble.PBack{*ra.Bits[0], *rb.Bits[0]}, bit.FromUint64(0b0110, 2))
	if err != nil {
		t.Fatal(err)
	}
	a.Retro([]bool{true})
	b.Retro([]bool{false})
	ev := FromBits(e, []ensemble.PBack{out})
	got, err := ev.EvalBit(0)
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Fatal("expected XOR(true,false) = true")
	}
}
