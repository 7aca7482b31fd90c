package imglayout

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Kind1D, Kind2D, Kind3D, KindCube} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if got, err := ParseKind(""); err != nil || got != Kind2D {
		t.Errorf("ParseKind(\"\") = %v, %v; want 2d", got, err)
	}
	if _, err := ParseKind("null"); !errors.Is(err, ErrUnsupportedSurfaceKind) {
		t.Errorf("ParseKind(null) err = %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	for i := range formatNames {
		f := Format(i)
		got, err := ParseFormat(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %v, %v", f.String(), got, err)
		}
	}
	if _, err := ParseFormat("rgba8"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("ParseFormat(rgba8) err = %v", err)
	}
}

func TestFormatClasses(t *testing.T) {
	tests := []struct {
		f       Format
		depth   bool
		stencil bool
	}{
		{FormatColor, false, false},
		{FormatD16, true, false},
		{FormatD32Float, true, false},
		{FormatS8, false, true},
		{FormatD24S8, true, true},
		{FormatD32FloatS8X24, true, true},
	}
	for _, tt := range tests {
		if tt.f.IsDepth() != tt.depth || tt.f.HasStencil() != tt.stencil {
			t.Errorf("%v: IsDepth, HasStencil = %v, %v", tt.f, tt.f.IsDepth(), tt.f.HasStencil())
		}
	}
}

func TestUsage(t *testing.T) {
	u, err := ParseUsage("sampler|rt, scanout")
	if err != nil {
		t.Fatal(err)
	}
	if want := UsageSampler | UsageRenderTarget | UsageScanout; u != want {
		t.Errorf("ParseUsage = %v, want %v", u, want)
	}
	if got := u.String(); got != "sampler|rt|scanout" {
		t.Errorf("String() = %q", got)
	}
	if got := Usage(0).String(); got != "none" {
		t.Errorf("empty String() = %q", got)
	}
	if !u.surface() || UsageDepthStencil.surface() {
		t.Error("surface() misclassifies bind points")
	}
	if _, err := ParseUsage("sampler|texture"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("ParseUsage(texture) err = %v", err)
	}
}

func TestMaxLevelsFor(t *testing.T) {
	tests := []struct{ extent, want int }{
		{1, 1}, {2, 2}, {3, 2}, {4, 3}, {64, 7}, {300, 9}, {16384, 15},
	}
	for _, tt := range tests {
		if got := maxLevelsFor(tt.extent); got != tt.want {
			t.Errorf("maxLevelsFor(%d) = %d, want %d", tt.extent, got, tt.want)
		}
	}
}

func TestValidateKinds(t *testing.T) {
	caps := mustCaps(t, Gen7)
	tests := []struct {
		name string
		edit func(*Request)
		ok   bool
	}{
		{"1d", func(r *Request) { r.Kind, r.Height = Kind1D, 1 }, true},
		{"1d with height", func(r *Request) { r.Kind = Kind1D }, false},
		{"3d", func(r *Request) { r.Kind, r.Depth = Kind3D, 8 }, true},
		{"3d array", func(r *Request) { r.Kind, r.ArraySize = Kind3D, 2 }, false},
		{"3d too deep", func(r *Request) { r.Kind, r.Depth = Kind3D, 4096 }, false},
		{"cube array", func(r *Request) { r.Kind, r.ArraySize = KindCube, 12 }, true},
		{"levels from depth", func(r *Request) { r.Kind, r.Width, r.Height, r.Depth, r.LevelCount = Kind3D, 1, 1, 8, 4 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := color2D(64, 64, UsageSampler)
			tt.edit(&req)
			err := req.validate(&caps)
			if (err == nil) != tt.ok {
				t.Errorf("validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

// Requests are map keys of the planner cache.
func TestRequestComparable(t *testing.T) {
	a := color2D(64, 64, UsageSampler)
	b := color2D(64, 64, UsageSampler)
	m := map[Request]int{a: 1}
	if m[b] != 1 {
		t.Error("equal requests are different keys")
	}
	b.ForceStride = 512
	if _, ok := m[b]; ok {
		t.Error("different requests share a key")
	}
}
