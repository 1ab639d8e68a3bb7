package qr

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{in: "black", want: color.NRGBA{0, 0, 0, 0xff}},
		{in: "White", want: color.NRGBA{0xff, 0xff, 0xff, 0xff}},
		{in: " darkblue ", want: color.NRGBA{0x00, 0x00, 0x8b, 0xff}},
		{in: "#f00", want: color.NRGBA{0xff, 0x00, 0x00, 0xff}},
		{in: "#1a2B3c", want: color.NRGBA{0x1a, 0x2b, 0x3c, 0xff}},
		{in: "#10203080", want: color.NRGBA{0x10, 0x20, 0x30, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, color.NRGBAModel.Convert(got))
		})
	}
}

func TestParseColor_Invalid(t *testing.T) {
	for _, in := range []string{"", "blurple", "#12", "#12345", "#ggg", "#zzzzzz"} {
		_, err := ParseColor(in)
		assert.Error(t, err, "ParseColor(%q) should fail", in)
	}
}
