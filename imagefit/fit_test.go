package imagefit

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit(t *testing.T) {
	testCases := map[string]struct {
		width, height int
		canvas        Canvas
		wantW, wantH  int
		wantScaled    bool
	}{
		"wide image constrained by width": {
			width: 1200, height: 800, canvas: A4,
			wantW: 595, wantH: 397, wantScaled: true,
		},
		"small image passes through": {
			width: 300, height: 200, canvas: A4,
			wantW: 300, wantH: 200,
		},
		"tall image constrained by height": {
			width: 400, height: 1000, canvas: A4,
			wantW: 337, wantH: 842, wantScaled: true,
		},
		"exactly the canvas": {
			width: 595, height: 842, canvas: A4,
			wantW: 595, wantH: 842,
		},
		"same ratio as canvas takes the width path": {
			width: 1190, height: 1684, canvas: A4,
			wantW: 595, wantH: 842, wantScaled: true,
		},
		"narrow and tall but within height": {
			width: 100, height: 800, canvas: A4,
			wantW: 100, wantH: 800,
		},
		"one pixel high strip": {
			width: 5000, height: 1, canvas: A4,
			wantW: 595, wantH: 1, wantScaled: true,
		},
		"non A4 canvas": {
			width: 2000, height: 1000, canvas: Canvas{Width: 1000, Height: 1000},
			wantW: 1000, wantH: 500, wantScaled: true,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := Fit(tc.width, tc.height, tc.canvas)
			require.NoError(t, err)
			w, h := got.Pixels()
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
			assert.Equal(t, tc.wantScaled, got.Scaled)
		})
	}
}

func TestFit_InvalidDimensions(t *testing.T) {
	testCases := map[string]struct {
		width, height int
		canvas        Canvas
	}{
		"zero width":     {0, 100, A4},
		"zero height":    {100, 0, A4},
		"negative width": {-10, 100, A4},
		"zero canvas":    {100, 100, Canvas{}},
		"negative canvas height": {
			100, 100, Canvas{Width: 100, Height: -1},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := Fit(tc.width, tc.height, tc.canvas)
			assert.ErrorIs(t, err, ErrInvalidDimensions)
		})
	}
}

func TestFit_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	canvases := []Canvas{A4, {Width: 842, Height: 595}, {Width: 1, Height: 1}, {Width: 1000, Height: 1000}}

	for i := 0; i < 20000; i++ {
		c := canvases[i%len(canvases)]
		w := 1 + rng.Intn(6000)
		h := 1 + rng.Intn(6000)

		got, err := Fit(w, h, c)
		require.NoError(t, err)

		if Fits(w, h, c) {
			if got.Scaled || got.Width != float64(w) || got.Height != float64(h) {
				t.Fatalf("Fit(%d, %d, %v) = %+v, want natural size", w, h, c, got)
			}
			continue
		}

		if !got.Scaled {
			t.Fatalf("Fit(%d, %d, %v) = %+v, want scaled", w, h, c, got)
		}
		if got.Width != float64(c.Width) && got.Height != float64(c.Height) {
			t.Fatalf("Fit(%d, %d, %v) = %+v, no axis equals the canvas bound", w, h, c, got)
		}
		if got.Width > float64(c.Width)+1e-9 || got.Height > float64(c.Height)+1e-9 {
			t.Fatalf("Fit(%d, %d, %v) = %+v, exceeds canvas", w, h, c, got)
		}

		want := float64(w) / float64(h)
		ratio := got.Width / got.Height
		if math.Abs(ratio-want)/want > 1e-6 {
			t.Fatalf("Fit(%d, %d, %v) ratio %v, want %v", w, h, c, ratio, want)
		}
	}
}

func TestFit_NeverUpscales(t *testing.T) {
	for w := 1; w <= A4.Width; w += 37 {
		for h := 1; h <= A4.Height; h += 41 {
			got, err := Fit(w, h, A4)
			require.NoError(t, err)
			gw, gh := got.Pixels()
			if gw != w || gh != h || got.Scaled {
				t.Fatalf("Fit(%d, %d) = %dx%d scaled=%v", w, h, gw, gh, got.Scaled)
			}
		}
	}
}

func TestTarget_Pixels(t *testing.T) {
	w, h := Target{Width: 0.2, Height: 396.5}.Pixels()
	assert.Equal(t, 1, w)
	assert.Equal(t, 397, h)
}
