// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/ik5/ambientor/audio"
	"github.com/ik5/ambientor/synth"
)

func newEngine(t testing.TB, format Format, opts ...Option) *Engine {
	t.Helper()

	e, err := New(format, opts...)
	if err != nil {
		t.Fatalf("New(%+v) error = %v", format, err)
	}

	return e
}

func render(t testing.TB, e *Engine, frames int) []float32 {
	t.Helper()

	out, err := e.RenderBlock(frames)
	if err != nil {
		t.Fatalf("RenderBlock(%d) error = %v", frames, err)
	}

	return out
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	e := newEngine(t, DefaultFormat())

	if got := e.Format(); got != (Format{SampleRate: 48000, Channels: 2, Gain: 0.35}) {
		t.Errorf("Format() = %+v", got)
	}
	if e.Clock() != 0 {
		t.Errorf("Clock() = %d, want 0", e.Clock())
	}
	if got := len(e.Layers()); got != 2 {
		t.Errorf("default scene has %d layers, want 2", got)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	valid := DefaultFormat()

	tests := []struct {
		name   string
		format Format
		opts   []Option
	}{
		{name: "zero sample rate", format: Format{SampleRate: 0, Channels: 2}},
		{name: "negative sample rate", format: Format{SampleRate: -48000, Channels: 2}},
		{name: "NaN sample rate", format: Format{SampleRate: math.NaN(), Channels: 2}},
		{name: "infinite sample rate", format: Format{SampleRate: math.Inf(1), Channels: 2}},
		{name: "zero channels", format: Format{SampleRate: 48000, Channels: 0}},
		{name: "negative channels", format: Format{SampleRate: 48000, Channels: -2}},
		{name: "too many channels", format: Format{SampleRate: 48000, Channels: MaxChannels + 1}},
		{name: "NaN gain", format: Format{SampleRate: 48000, Channels: 2, Gain: math.NaN()}},
		{name: "infinite gain", format: Format{SampleRate: 48000, Channels: 2, Gain: math.Inf(-1)}},
		{name: "unknown scene", format: valid, opts: []Option{WithScene("thunder")}},
		{name: "nil logger", format: valid, opts: []Option{WithLogger(nil)}},
		{name: "zero chunk", format: valid, opts: []Option{WithChunkFrames(0)}},
		{name: "huge chunk", format: valid, opts: []Option{WithChunkFrames(MaxBlockFrames + 1)}},
		{name: "layer without source", format: valid, opts: []Option{WithLayers(synth.Layer{Gain: 1})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, err := New(tt.format, tt.opts...)
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("New() error = %v, want ErrConfiguration", err)
			}
			if e != nil {
				t.Error("New() returned an engine on error")
			}
		})
	}
}

func TestNew_UnknownSceneWrapsSynthError(t *testing.T) {
	t.Parallel()

	_, err := New(DefaultFormat(), WithScene("thunder"))
	if !errors.Is(err, synth.ErrUnknownScene) {
		t.Errorf("New() error = %v, want synth.ErrUnknownScene", err)
	}
}

func TestRenderBlock_LengthAndBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format Format
		scene  string
		frames []int
	}{
		{name: "stereo drone", format: DefaultFormat(), scene: "slow-drone", frames: []int{1, 7, 1024, 4800}},
		{name: "mono wind", format: Format{SampleRate: 8000, Channels: 1, Gain: 0.5}, scene: "wind", frames: []int{1, 333, 8000}},
		{name: "surround deep space", format: Format{SampleRate: 44100, Channels: 6, Gain: 0.35}, scene: "deep-space", frames: []int{2, 512}},
		{name: "hot gain", format: Format{SampleRate: 48000, Channels: 2, Gain: 25}, scene: "slow-drone", frames: []int{4800}},
		{name: "negative gain", format: Format{SampleRate: 22050, Channels: 2, Gain: -3}, scene: "wind", frames: []int{2205}},
		{name: "silence", format: DefaultFormat(), scene: "silence", frames: []int{64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newEngine(t, tt.format, WithScene(tt.scene))

			for _, n := range tt.frames {
				out := render(t, e, n)
				if len(out) != n*tt.format.Channels {
					t.Fatalf("RenderBlock(%d) returned %d samples, want %d", n, len(out), n*tt.format.Channels)
				}
				for i, s := range out {
					if !(s >= -1 && s <= 1) {
						t.Fatalf("sample %d = %v, outside [-1, 1]", i, s)
					}
				}
			}
		})
	}
}

func TestRenderBlock_Continuity(t *testing.T) {
	t.Parallel()

	tests := []struct{ a, b int }{
		{1, 1},
		{1, 4799},
		{256, 256},
		{1000, 3},
		{4096, 9000},
	}

	for _, scene := range synth.SceneNames() {
		for _, tt := range tests {
			split := newEngine(t, DefaultFormat(), WithScene(scene))
			whole := newEngine(t, DefaultFormat(), WithScene(scene))

			got := append(render(t, split, tt.a), render(t, split, tt.b)...)
			want := render(t, whole, tt.a+tt.b)

			if !slices.Equal(got, want) {
				t.Errorf("%s: RenderBlock(%d)+RenderBlock(%d) differs from RenderBlock(%d)", scene, tt.a, tt.b, tt.a+tt.b)
			}
			if split.Clock() != uint64(tt.a+tt.b) {
				t.Errorf("%s: Clock() = %d, want %d", scene, split.Clock(), tt.a+tt.b)
			}
		}
	}
}

func TestRenderBlock_ZeroFrames(t *testing.T) {
	t.Parallel()

	e := newEngine(t, DefaultFormat())
	fresh := newEngine(t, DefaultFormat())

	head := render(t, e, 100)

	empty := render(t, e, 0)
	if empty == nil || len(empty) != 0 {
		t.Fatalf("RenderBlock(0) = %v, want an empty non-nil slice", empty)
	}
	if e.Clock() != 100 {
		t.Errorf("Clock() = %d after RenderBlock(0), want 100", e.Clock())
	}

	got := append(head, render(t, e, 100)...)
	if want := render(t, fresh, 200); !slices.Equal(got, want) {
		t.Error("RenderBlock(0) changed the rendered signal")
	}
}

func TestRenderBlock_InvalidArgument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		frames   int
	}{
		{name: "negative", channels: 2, frames: -1},
		{name: "very negative", channels: 1, frames: math.MinInt},
		{name: "too many frames", channels: 1, frames: MaxBlockFrames + 1},
		{name: "too many samples", channels: 8, frames: MaxBlockSamples/8 + 1},
		{name: "overflow", channels: 2, frames: math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			format := Format{SampleRate: 48000, Channels: tt.channels, Gain: 0.35}
			e := newEngine(t, format)
			fresh := newEngine(t, format)

			out, err := e.RenderBlock(tt.frames)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("RenderBlock(%d) error = %v, want ErrInvalidArgument", tt.frames, err)
			}
			if out != nil {
				t.Errorf("RenderBlock(%d) returned %d samples on error", tt.frames, len(out))
			}
			if e.Clock() != 0 {
				t.Errorf("Clock() = %d after a rejected call, want 0", e.Clock())
			}
			if !slices.Equal(render(t, e, 1), render(t, fresh, 1)) {
				t.Error("first frame after a rejected call differs from a fresh engine")
			}
		})
	}
}

func TestRenderBlock_Deterministic(t *testing.T) {
	t.Parallel()

	for _, scene := range synth.SceneNames() {
		t.Run(scene, func(t *testing.T) {
			t.Parallel()

			format := Format{SampleRate: 44100, Channels: 2, Gain: 0.35}
			a := newEngine(t, format, WithScene(scene))
			b := newEngine(t, format, WithScene(scene))

			for range 4 {
				if !slices.Equal(render(t, a, 2048), render(t, b, 2048)) {
					t.Fatal("identically built engines rendered different signals")
				}
			}
		})
	}
}

func TestRenderBlock_GainScaling(t *testing.T) {
	t.Parallel()

	for _, scene := range []string{"slow-drone", "wind", "deep-space"} {
		quiet := newEngine(t, Format{SampleRate: 48000, Channels: 2, Gain: 0.02}, WithScene(scene))
		loud := newEngine(t, Format{SampleRate: 48000, Channels: 2, Gain: 0.04}, WithScene(scene))

		q := render(t, quiet, 9600)
		l := render(t, loud, 9600)

		nonZero := 0
		for i := range q {
			if math.Abs(float64(l[i])-2*float64(q[i])) > 1e-6 {
				t.Fatalf("%s: sample %d = %v, want 2 * %v", scene, i, l[i], q[i])
			}
			if q[i] != 0 {
				nonZero++
			}
		}
		if nonZero == 0 {
			t.Errorf("%s: rendered silence, gain scaling not exercised", scene)
		}
	}
}

func TestSetGain(t *testing.T) {
	t.Parallel()

	e := newEngine(t, Format{SampleRate: 48000, Channels: 2, Gain: 0.02})
	ref := newEngine(t, Format{SampleRate: 48000, Channels: 2, Gain: 0.02})

	if err := e.SetGain(math.NaN()); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetGain(NaN) error = %v, want ErrInvalidArgument", err)
	}
	if err := e.SetGain(0.04); err != nil {
		t.Fatalf("SetGain() error = %v", err)
	}
	if e.Gain() != 0.04 || e.Format().Gain != 0.04 {
		t.Errorf("Gain() = %v, Format().Gain = %v, want 0.04", e.Gain(), e.Format().Gain)
	}

	got := render(t, e, 480)
	want := render(t, ref, 480)
	for i := range got {
		if math.Abs(float64(got[i])-2*float64(want[i])) > 1e-6 {
			t.Fatalf("sample %d = %v, want 2 * %v", i, got[i], want[i])
		}
	}

	if err := e.SetGain(0); err != nil {
		t.Fatalf("SetGain(0) error = %v", err)
	}
	for i, s := range render(t, e, 480) {
		if s != 0 {
			t.Fatalf("sample %d = %v at gain 0, want 0", i, s)
		}
	}
}

func TestRenderInto(t *testing.T) {
	t.Parallel()

	e := newEngine(t, Format{SampleRate: 48000, Channels: 3, Gain: 0.35})
	fresh := newEngine(t, Format{SampleRate: 48000, Channels: 3, Gain: 0.35})

	if _, err := e.RenderInto(make([]float32, 10)); !errors.Is(err, ErrInvalidArgument) || !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("RenderInto(10 samples) error = %v, want ErrInvalidArgument", err)
	}

	dst := make([]float32, 300)
	n, err := e.RenderInto(dst)
	if err != nil || n != 100 {
		t.Fatalf("RenderInto() = %d, %v, want 100 frames", n, err)
	}
	if !slices.Equal(dst, render(t, fresh, 100)) {
		t.Error("RenderInto() differs from RenderBlock()")
	}

	if n, err := e.RenderInto(nil); n != 0 || err != nil {
		t.Errorf("RenderInto(nil) = %d, %v", n, err)
	}
}

func TestRenderInto_ZeroAllocs(t *testing.T) {
	e := newEngine(t, DefaultFormat())
	dst := make([]float32, 256*2)

	allocs := testing.AllocsPerRun(100, func() {
		_, _ = e.RenderInto(dst)
	})
	if allocs != 0 {
		t.Errorf("RenderInto allocates %.1f times per call, want 0", allocs)
	}
}

func TestEngine_SerializesConcurrentRenders(t *testing.T) {
	t.Parallel()

	e := newEngine(t, DefaultFormat())

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				if _, err := e.RenderBlock(100); err != nil {
					t.Errorf("RenderBlock() error = %v", err)
				}
				_ = e.Layers()
				_ = e.SetGain(0.3)
			}
		}()
	}
	wg.Wait()

	if e.Clock() != 4000 {
		t.Errorf("Clock() = %d, want 4000", e.Clock())
	}
}

func TestWithLogger(t *testing.T) {
	t.Parallel()

	var records []string
	logger := slog.New(recordHandler{records: &records, mtx: &sync.Mutex{}})

	e := newEngine(t, DefaultFormat(), WithLogger(logger), WithScene("silence"))
	if len(records) != 1 || records[0] != "engine ready" {
		t.Errorf("logged %q, want [engine ready]", records)
	}
	_ = e
}

// recordHandler keeps the messages of every record it sees.
type recordHandler struct {
	records *[]string
	mtx     *sync.Mutex
}

func (h recordHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }
func (h recordHandler) WithAttrs([]slog.Attr) slog.Handler            { return h }
func (h recordHandler) WithGroup(string) slog.Handler                 { return h }

func (h recordHandler) Handle(_ context.Context, r slog.Record) error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	*h.records = append(*h.records, r.Message)
	return nil
}

func BenchmarkRenderInto(b *testing.B) {
	for _, scene := range synth.SceneNames() {
		b.Run(scene, func(b *testing.B) {
			e := newEngine(b, DefaultFormat(), WithScene(scene))
			dst := make([]float32, DefaultChunkFrames*2)

			b.ReportAllocs()
			b.SetBytes(int64(len(dst) * 4))
			b.ResetTimer()

			for b.Loop() {
				_, _ = e.RenderInto(dst)
			}
		})
	}
}
