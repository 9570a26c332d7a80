package colour

import "testing"

func TestRGBToHSL(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b int
		want    string
	}{
		{name: "black", r: 0, g: 0, b: 0, want: "hsl(0, 0%, 0%)"},
		{name: "white", r: 255, g: 255, b: 255, want: "hsl(0, 0%, 100%)"},
		{name: "red", r: 255, g: 0, b: 0, want: "hsl(0, 100%, 50%)"},
		{name: "green", r: 0, g: 255, b: 0, want: "hsl(120, 100%, 50%)"},
		{name: "blue", r: 0, g: 0, b: 255, want: "hsl(240, 100%, 50%)"},
		{name: "mid grey", r: 128, g: 128, b: 128, want: "hsl(0, 0%, 50%)"},
		{name: "default primary", r: 59, g: 130, b: 246, want: "hsl(217, 91%, 60%)"},
		{name: "default secondary", r: 16, g: 185, b: 129, want: "hsl(160, 84%, 39%)"},
		{name: "default accent", r: 249, g: 115, b: 22, want: "hsl(25, 95%, 53%)"},
		{name: "default background", r: 249, g: 250, b: 251, want: "hsl(210, 20%, 98%)"},
		{name: "default text", r: 17, g: 24, b: 39, want: "hsl(221, 39%, 11%)"},
		{name: "hue near 360 wraps", r: 255, g: 0, b: 1, want: "hsl(0, 100%, 50%)"},
		{name: "magenta", r: 255, g: 0, b: 255, want: "hsl(300, 100%, 50%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RGBToHSL(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("RGBToHSL(%d, %d, %d) = %q, want %q", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestHSLRoundTrip(t *testing.T) {
	for r := 0; r <= 255; r += 15 {
		for g := 0; g <= 255; g += 15 {
			for b := 0; b <= 255; b += 15 {
				in := NewRGB(r, g, b)
				out := in.HSL().RGB()
				if absDiff(in.R, out.R) > 1 || absDiff(in.G, out.G) > 1 || absDiff(in.B, out.B) > 1 {
					t.Fatalf("HSL round trip of %v gave %v", in, out)
				}
			}
		}
	}
}

func TestParseHSL(t *testing.T) {
	tests := []struct {
		input      string
		h, s, l    int
		wantParsed bool
	}{
		{input: "hsl(217, 91%, 60%)", h: 217, s: 91, l: 60, wantParsed: true},
		{input: "hsl(0,0%,0%)", h: 0, s: 0, l: 0, wantParsed: true},
		{input: "hsl(217, 91, 60)", wantParsed: false},
		{input: "rgb(1, 2, 3)", wantParsed: false},
		{input: "", wantParsed: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			h, s, l, ok := ParseHSL(tt.input)
			if ok != tt.wantParsed {
				t.Fatalf("ParseHSL(%q) ok = %v, want %v", tt.input, ok, tt.wantParsed)
			}
			if ok && (h != tt.h || s != tt.s || l != tt.l) {
				t.Errorf("ParseHSL(%q) = (%d, %d, %d), want (%d, %d, %d)", tt.input, h, s, l, tt.h, tt.s, tt.l)
			}
		})
	}
}

func TestHueDistance(t *testing.T) {
	tests := []struct {
		h1, h2, want float64
	}{
		{h1: 0, h2: 0, want: 0},
		{h1: 10, h2: 350, want: 20},
		{h1: 0, h2: 180, want: 180},
		{h1: 90, h2: 200, want: 110},
	}
	for _, tt := range tests {
		if got := HueDistance(tt.h1, tt.h2); got != tt.want {
			t.Errorf("HueDistance(%v, %v) = %v, want %v", tt.h1, tt.h2, got, tt.want)
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
