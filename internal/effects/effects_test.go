package effects

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Versifine/momentum/internal/config"
	"github.com/Versifine/momentum/internal/movement"
)

type fakeTarget struct {
	pos     mgl64.Vec3
	sources []string
	mods    []movement.Modifier
}

func (f *fakeTarget) Position() mgl64.Vec3 { return f.pos }

func (f *fakeTarget) Enqueue(_ float64, source string, mods ...movement.Modifier) {
	f.sources = append(f.sources, source)
	f.mods = append(f.mods, mods...)
}

func vecNear(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-9), "want %v, got %v", want, got)
}

func TestExplosion(t *testing.T) {
	base := Explosion{Radius: 4, Force: 10, Duration: 1}

	tests := []struct {
		name   string
		e      Explosion
		target mgl64.Vec3
		want   mgl64.Vec3
		none   bool
	}{
		{name: "half falloff", e: base, target: mgl64.Vec3{2, 0, 0}, want: mgl64.Vec3{5, 0, 0}},
		{name: "horizontal only", e: base, target: mgl64.Vec3{0, 1, 0}, none: true},
		{name: "outside radius", e: base, target: mgl64.Vec3{0, 0, 4}, none: true},
		{
			name:   "lift at origin",
			e:      Explosion{Radius: 4, Force: 10, Lift: 2, Duration: 1},
			target: mgl64.Vec3{},
			want:   mgl64.Vec3{0, 2, 0},
		},
		{
			name:   "diagonal",
			e:      Explosion{Radius: 10, Force: 10, Lift: 4, Duration: 1},
			target: mgl64.Vec3{3, 0, 4},
			want:   mgl64.Vec3{3, 2, 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mods, err := tt.e.Modifiers(1, tt.target)
			require.NoError(t, err)
			if tt.none {
				assert.Empty(t, mods)
				return
			}
			require.Len(t, mods, 1)
			vecNear(t, tt.want, mods[0].Direction)
			assert.True(t, mods[0].FadesOut)
			assert.Equal(t, 1.0, mods[0].StartTime)
			assert.Equal(t, 2.0, mods[0].RemoveTime)
		})
	}
}

func TestExplosionOptions(t *testing.T) {
	e := Explosion{Radius: 4, Force: 10, Duration: 0.5, Delay: 0.25, ClearOnGround: true, ResetGravity: true}
	mods, err := e.Modifiers(2, mgl64.Vec3{1, 0, 0})
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, 2.25, mods[0].StartTime)
	assert.Equal(t, 2.75, mods[0].RemoveTime)
	assert.True(t, mods[0].RemoveOnGrounded)
	assert.True(t, mods[0].ResetsGravity)
	assert.False(t, mods[0].Active(2))
}

func TestExplosionValidation(t *testing.T) {
	tests := []struct {
		name string
		e    Explosion
	}{
		{"zero radius", Explosion{Duration: 1}},
		{"zero duration", Explosion{Radius: 1}},
		{"negative delay", Explosion{Radius: 1, Duration: 1, Delay: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.e.Modifiers(0, mgl64.Vec3{})
			require.Error(t, err)
		})
	}
}

func TestPush(t *testing.T) {
	p := Push{Vector: mgl64.Vec3{0, 8, 0}, Duration: 0.5, ResetsGravity: true, ClearOnGround: true}
	mods, err := p.Modifiers(3, mgl64.Vec3{100, 0, 100})
	require.NoError(t, err)
	require.Len(t, mods, 1)
	m := mods[0]
	assert.Equal(t, mgl64.Vec3{0, 8, 0}, m.Contribution(3.4))
	assert.False(t, m.FadesOut)
	assert.True(t, m.ResetsGravity)
	assert.True(t, m.RemoveOnGrounded)
	assert.Equal(t, 3.5, m.RemoveTime)

	_, err = Push{Vector: mgl64.Vec3{1, 0, 0}}.Modifiers(0, mgl64.Vec3{})
	require.Error(t, err)
}

const shockwave = `
math := import("math")

modifiers := []
dx := target[0] - params.x
dz := target[2] - params.z
dist := math.sqrt(dx*dx + dz*dz)
if dist < params.radius {
	modifiers = append(modifiers, {
		direction: [1, 0.5, 0],
		delay: 1,
		duration: 0.5,
		fades: true,
		clear_on_ground: false
	})
}
`

func TestScript(t *testing.T) {
	s, err := NewScript("shockwave", []byte(shockwave), map[string]interface{}{"x": 0.0, "z": 0.0, "radius": 3.0})
	require.NoError(t, err)
	assert.Equal(t, "shockwave", s.Name())

	mods, err := s.Modifiers(2, mgl64.Vec3{1, 0, 1})
	require.NoError(t, err)
	require.Len(t, mods, 1)
	m := mods[0]
	assert.Equal(t, mgl64.Vec3{1, 0.5, 0}, m.Direction)
	assert.Equal(t, 3.0, m.StartTime)
	assert.Equal(t, 3.5, m.RemoveTime)
	assert.True(t, m.FadesOut)
	assert.False(t, m.RemoveOnGrounded)
	assert.False(t, m.ResetsGravity)

	// Each evaluation runs on a fresh clone.
	mods, err = s.Modifiers(5, mgl64.Vec3{10, 0, 0})
	require.NoError(t, err)
	assert.Empty(t, mods)

	mods, err = s.Modifiers(7, mgl64.Vec3{0, 0, 0})
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, 8.0, mods[0].StartTime)
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not an array", `modifiers := 3`},
		{"entry not a map", `modifiers := [1]`},
		{"bad direction", `modifiers := [{direction: [1, 2], duration: 1}]`},
		{"empty window", `modifiers := [{direction: [1, 0, 0], duration: 0}]`},
		{"negative delay", `modifiers := [{direction: [1, 0, 0], duration: 1, delay: -1}]`},
		{"runtime error", `s := "a"; modifiers := [s - 1]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScript(tt.name, []byte(tt.src), nil)
			require.NoError(t, err)
			_, err = s.Modifiers(0, mgl64.Vec3{})
			require.Error(t, err)
		})
	}
}

func TestScriptWithoutOutput(t *testing.T) {
	s, err := NewScript("quiet", []byte(`a := 1`), nil)
	require.NoError(t, err)
	mods, err := s.Modifiers(0, mgl64.Vec3{})
	require.NoError(t, err)
	assert.Nil(t, mods)
}

func TestScriptCompileError(t *testing.T) {
	_, err := NewScript("broken", []byte(`modifiers := [`), nil)
	require.Error(t, err)
}

func TestScriptRejectsUnconvertibleParams(t *testing.T) {
	_, err := NewScript("bad", []byte(`modifiers := []`), map[string]interface{}{"x": struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad params")
}

func TestScriptTimeout(t *testing.T) {
	s, err := NewScript("spin", []byte(`for {}`), nil)
	require.NoError(t, err)
	_, err = s.Modifiers(0, mgl64.Vec3{})
	require.Error(t, err)
}

func TestRegistryApply(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("boom", Explosion{Radius: 4, Force: 10, Duration: 1}))
	require.NoError(t, r.Register("pad", Push{Vector: mgl64.Vec3{0, 5, 0}, Duration: 0.2}))
	require.Error(t, r.Register("", Push{}))
	require.Error(t, r.Register("nil", nil))
	assert.Equal(t, []string{"boom", "pad"}, r.Names())

	target := &fakeTarget{pos: mgl64.Vec3{2, 0, 0}}
	n, err := r.Apply("boom", 1, target)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	far := &fakeTarget{pos: mgl64.Vec3{50, 0, 0}}
	n, err = r.Apply("boom", 1, far)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, far.sources)

	n, err = r.Apply("pad", 1, target)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"boom", "pad"}, target.sources)
	assert.Len(t, target.mods, 2)

	_, err = r.Apply("missing", 1, target)
	require.ErrorIs(t, err, ErrUnknownEffect)
	_, err = r.Apply("boom", 1, nil)
	require.Error(t, err)
}

func TestRegistryEffectFunc(t *testing.T) {
	r := NewRegistry()
	called := false
	require.NoError(t, r.Register("fn", EffectFunc(func(now float64, _ mgl64.Vec3) ([]movement.Modifier, error) {
		called = true
		m, err := movement.NewModifier(mgl64.Vec3{1, 0, 0}, now, now+1)
		return []movement.Modifier{m}, err
	})))
	n, err := r.Apply("fn", 0, &fakeTarget{})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 1, n)
}

func TestFromConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wave.tengo"), []byte(shockwave), 0o644))

	r, err := FromConfig([]config.EffectConfig{
		{Name: "boom", Kind: config.EffectExplosion, Radius: 3, Force: 6, Lift: 2, Duration: 0.5},
		{Name: "pad", Kind: config.EffectPush, Vector: [3]float64{0, 9, 0}, Duration: 0.3, ResetGravity: true},
		{Name: "wave", Kind: config.EffectScript, Script: "wave.tengo", Params: map[string]interface{}{"x": 0, "z": 0, "radius": 5}},
	}, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"boom", "pad", "wave"}, r.Names())

	e, ok := r.Get("pad")
	require.True(t, ok)
	assert.Equal(t, Push{Vector: mgl64.Vec3{0, 9, 0}, Duration: 0.3, ResetsGravity: true}, e)

	target := &fakeTarget{pos: mgl64.Vec3{1, 0, 0}}
	n, err := r.Apply("wave", 0, target)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = FromConfig([]config.EffectConfig{{Name: "x", Kind: "laser"}}, dir)
	require.ErrorIs(t, err, ErrUnknownEffect)

	_, err = FromConfig([]config.EffectConfig{{Name: "x", Kind: config.EffectScript, Script: "missing.tengo"}}, dir)
	require.Error(t, err)
}
