package csm

import "testing"

func TestBlend(t *testing.T) {
	for _, test := range []struct {
		below, above, want Color
	}{
		{White, RGB(10, 20, 30), RGB(10, 20, 30)},
		{White, RGBA(0, 0, 0, 128), RGB(127, 127, 127)},
		{RGBA(100, 100, 100, 0), RGBA(200, 0, 50, 0), RGB(100, 100, 100)},
		{Black, RGBA(255, 255, 255, 51), RGB(51, 51, 51)},
	} {
		got := Blend(test.below, test.above)
		if got != test.want {
			t.Errorf("Blend(%v, %v) = %v, want %v", test.below, test.above, got, test.want)
		}
	}
}

func TestBlendWeighted(t *testing.T) {
	if got := BlendWeighted(Black, White, 0); got != Black {
		t.Errorf("factor 0: got %v", got)
	}
	if got := BlendWeighted(Black, White, 1); got != White {
		t.Errorf("factor 1: got %v", got)
	}
	if got := BlendWeighted(Black, White, 7); got != White {
		t.Errorf("factor clamps: got %v", got)
	}
}

func TestColorConversions(t *testing.T) {
	c := ColorFromFloats(-5, 127.4, 300, 254.6)
	if want := RGBA(0, 127, 255, 255); c != want {
		t.Errorf("ColorFromFloats: got %v, want %v", c, want)
	}
	v := RGB(1, 2, 3).Vec()
	if v.X != 1 || v.Y != 2 || v.Z != 3 {
		t.Errorf("Vec: got %v", v)
	}
	if got := ColorFromVec(v); got != RGB(1, 2, 3) {
		t.Errorf("ColorFromVec: got %v", got)
	}
	r, g, b, a := RGBA(255, 0, 0, 255).RGBA()
	if r != 0xffff || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("RGBA(): got %x %x %x %x", r, g, b, a)
	}
}
