package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/gogpu/imglayout"
)

// requestSpec is one image request as written in a request file or given
// on the command line. Zero counts default to 1 and a zero block size to
// the natural size of the format class.
type requestSpec struct {
	Name string `toml:"name"`

	Kind   string `toml:"kind"`
	Format string `toml:"format"`

	Width  int `toml:"width"`
	Height int `toml:"height"`
	Depth  int `toml:"depth"`

	BlockWidth  int `toml:"block_width"`
	BlockHeight int `toml:"block_height"`
	BlockSize   int `toml:"block_size"`

	Levels  int `toml:"levels"`
	Array   int `toml:"array"`
	Samples int `toml:"samples"`

	Usage   string `toml:"usage"`
	Tilings string `toml:"tilings"`
	Stride  int    `toml:"stride"`

	Compressed         bool `toml:"compressed"`
	Integer            bool `toml:"integer"`
	InterleavedStencil bool `toml:"interleaved_stencil"`
	NoAux              bool `toml:"no_aux"`
	NoHiZ              bool `toml:"no_hiz"`
}

// requestFile is the layout of a TOML request file:
//
//	gen = "gen7"
//
//	[[request]]
//	name = "backbuffer"
//	width = 1920
//	height = 1080
//	usage = "rt|scanout"
type requestFile struct {
	Gen      string        `toml:"gen"`
	Requests []requestSpec `toml:"request"`
}

// defaultBlockSize returns the bytes per block of a format class.
func defaultBlockSize(f imglayout.Format) int {
	switch f {
	case imglayout.FormatS8:
		return 1
	case imglayout.FormatD16:
		return 2
	case imglayout.FormatD32FloatS8X24:
		return 8
	case imglayout.FormatRGB32Float:
		return 12
	default:
		return 4
	}
}

func orOne(v int) int {
	if v == 0 {
		return 1
	}
	return v
}

// parseTilings parses a '|' or ',' separated list of tiling names. The
// empty string is the empty mask, which places no constraint.
func parseTilings(s string) (imglayout.TilingMask, error) {
	var m imglayout.TilingMask
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		t, ok := imglayout.ParseTiling(f)
		if !ok {
			return 0, fmt.Errorf("unknown tiling %q", f)
		}
		m |= t.Mask()
	}
	return m, nil
}

// request converts the spec into a layout request.
func (s *requestSpec) request() (imglayout.Request, error) {
	kind, err := imglayout.ParseKind(s.Kind)
	if err != nil {
		return imglayout.Request{}, err
	}
	format, err := imglayout.ParseFormat(s.Format)
	if err != nil {
		return imglayout.Request{}, err
	}
	usage, err := imglayout.ParseUsage(s.Usage)
	if err != nil {
		return imglayout.Request{}, err
	}
	tilings, err := parseTilings(s.Tilings)
	if err != nil {
		return imglayout.Request{}, err
	}

	bs := s.BlockSize
	if bs == 0 {
		bs = defaultBlockSize(format)
	}

	return imglayout.Request{
		Kind:               kind,
		Format:             format,
		Width:              s.Width,
		Height:             orOne(s.Height),
		Depth:              orOne(s.Depth),
		BlockWidth:         orOne(s.BlockWidth),
		BlockHeight:        orOne(s.BlockHeight),
		BlockSize:          bs,
		LevelCount:         orOne(s.Levels),
		ArraySize:          orOne(s.Array),
		SampleCount:        orOne(s.Samples),
		Usage:              usage,
		InterleavedStencil: s.InterleavedStencil || format == imglayout.FormatD24S8 || format == imglayout.FormatD32FloatS8X24,
		AuxDisabled:        s.NoAux,
		Compressed:         s.Compressed,
		Integer:            s.Integer,
		DisableHiZ:         s.NoHiZ,
		ValidTilings:       tilings,
		ForceStride:        s.Stride,
	}, nil
}

// label names the request in output.
func (s *requestSpec) label(i int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("request %d", i)
}

// decodeRequestFile parses a TOML request file.
func decodeRequestFile(data string) (*requestFile, error) {
	var f requestFile
	md, err := toml.Decode(data, &f)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	if len(f.Requests) == 0 {
		return nil, fmt.Errorf("no [[request]] entries")
	}
	return &f, nil
}

// loadRequestFile reads and parses a TOML request file.
func loadRequestFile(path string) (*requestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := decodeRequestFile(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// addRequestFlags binds the fields of s to flags of cmd.
func addRequestFlags(cmd *cobra.Command, s *requestSpec) {
	f := cmd.Flags()
	f.StringVar(&s.Kind, "kind", "2d", "surface kind (1d, 2d, 3d, cube)")
	f.StringVar(&s.Format, "format", "color", "format class (color, rgb32f, d16, d24x8, d32f, s8, d24s8, d32fs8x24)")
	f.IntVar(&s.Width, "width", 0, "width in pixels")
	f.IntVar(&s.Height, "height", 1, "height in pixels")
	f.IntVar(&s.Depth, "depth", 1, "depth in pixels (3D)")
	f.IntVar(&s.BlockWidth, "block-width", 1, "format block width in pixels")
	f.IntVar(&s.BlockHeight, "block-height", 1, "format block height in pixels")
	f.IntVar(&s.BlockSize, "block-size", 0, "format block size in bytes (default per format)")
	f.IntVar(&s.Levels, "levels", 1, "mip level count")
	f.IntVar(&s.Array, "array", 1, "array size")
	f.IntVar(&s.Samples, "samples", 1, "samples per pixel")
	f.StringVar(&s.Usage, "usage", "sampler", "bind points (sampler|rt|typed|zs|scanout|cursor)")
	f.StringVar(&s.Tilings, "tilings", "", "allowed tilings (none|x|y|w)")
	f.IntVar(&s.Stride, "stride", 0, "forced row stride in bytes")
	f.BoolVar(&s.Compressed, "compressed", false, "block-compressed format")
	f.BoolVar(&s.NoAux, "no-aux", false, "disable aux surfaces")
	f.BoolVar(&s.NoHiZ, "no-hiz", false, "disable HiZ")
}
