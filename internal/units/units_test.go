package units

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFactor(t *testing.T) {
	tests := []struct {
		from, to string
		want     float64
	}{
		{"kn", "ft/s", 1852.0 / 3600 / 0.3048},
		{"ft/s", "kn", 3600 * 0.3048 / 1852.0},
		{"lbm", "kg", 0.45359237},
		{"deg", "rad", math.Pi / 180},
		{"NM", "ft", 1852.0 / 0.3048},
		{"lbf", "lbf", 1},
		{"", "unitless", 1},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			got, err := Factor(tt.from, tt.to)
			require.NoError(t, err)
			require.InDelta(t, tt.want, got, 1e-12*math.Abs(tt.want))
		})
	}
}

func TestFactor_Errors(t *testing.T) {
	_, err := Factor("lbm", "lbf")
	require.True(t, errors.Is(err, ErrIncompatible), "got %v", err)

	_, err = Factor("furlong", "ft")
	require.True(t, errors.Is(err, ErrUnknownUnit), "got %v", err)
}

func TestConvert_KnotsToFeetPerSecond(t *testing.T) {
	got, err := Convert([]float64{252, 459}, "kn", "ft/s")
	require.NoError(t, err)
	require.InDelta(t, 425.32808399, got[0], 1e-7)
	require.InDelta(t, 774.70472441, got[1], 1e-7)
}

func TestConvertComplex_ScalesImaginaryPart(t *testing.T) {
	got, err := ConvertComplex([]complex128{complex(1, 1e-40)}, "deg", "rad")
	require.NoError(t, err)
	require.InDelta(t, math.Pi/180, real(got[0]), 1e-15)
	require.InDelta(t, 1e-40*math.Pi/180, imag(got[0]), 1e-55)
}

func TestConvert_DoesNotAlias(t *testing.T) {
	in := []float64{1, 2}
	out, err := Convert(in, "ft", "ft")
	require.NoError(t, err)
	out[0] = 99
	require.Equal(t, 1.0, in[0])
}

func TestNames_Sorted(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		require.Less(t, names[i-1], names[i])
	}
	require.True(t, Compatible("kn", "m/s"))
	require.False(t, Compatible("kn", "ft"))
}

func TestPerSecond(t *testing.T) {
	tests := map[string]string{
		"ft":   "ft/s",
		"ft/s": "ft/s**2",
		"m":    "m/s",
		"rad":  "rad/s",
		"deg":  "deg/s",
	}
	for in, want := range tests {
		got, err := PerSecond(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got)
	}

	_, err := PerSecond("kn")
	require.ErrorIs(t, err, ErrUnknownUnit)
	_, err = PerSecond("furlong")
	require.ErrorIs(t, err, ErrUnknownUnit)
}
