package effects

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/momentum/internal/movement"
)

const (
	defaultScriptTimeout   = 100 * time.Millisecond
	defaultScriptMaxAllocs = 1 << 16
)

var errScriptOutput = errors.New("effects: malformed script output")

// Script is an effect written in tengo. The script sees three globals:
//
//	now    - simulation time (float)
//	target - target position as [x, y, z]
//	params - the parameter map from configuration
//
// and publishes its result in the global `modifiers`, an array of maps with
// keys direction ([x, y, z]), delay, duration, fades, clear_on_ground and
// reset_gravity. Delay is relative to now.
type Script struct {
	name     string
	compiled *tengo.Compiled
	params   map[string]interface{}
	timeout  time.Duration
}

// LoadScript compiles the script at path.
func LoadScript(name, path string, params map[string]interface{}) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("effects: load script %s: %w", path, err)
	}
	return NewScript(name, src, params)
}

// NewScript compiles src once; every evaluation runs on a clone.
func NewScript(name string, src []byte, params map[string]interface{}) (*Script, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	script := tengo.NewScript(src)
	vars := []struct {
		name  string
		value interface{}
	}{
		{"now", 0.0},
		{"target", []interface{}{0.0, 0.0, 0.0}},
		{"params", params},
	}
	for _, v := range vars {
		if err := script.Add(v.name, v.value); err != nil {
			return nil, fmt.Errorf("effects: script %s %s: %w", name, v.name, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap("math", "fmt"))
	script.SetMaxAllocs(defaultScriptMaxAllocs)

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("effects: compile script %s: %w", name, err)
	}
	return &Script{name: name, compiled: compiled, params: params, timeout: defaultScriptTimeout}, nil
}

func (s *Script) Name() string { return s.name }

func (s *Script) Modifiers(now float64, target mgl64.Vec3) ([]movement.Modifier, error) {
	c := s.compiled.Clone()
	if err := c.Set("now", now); err != nil {
		return nil, err
	}
	if err := c.Set("target", []interface{}{target.X(), target.Y(), target.Z()}); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := c.RunContext(ctx); err != nil {
		return nil, fmt.Errorf("effects: run script %s: %w", s.name, err)
	}

	if !c.IsDefined("modifiers") {
		return nil, nil
	}
	v := c.Get("modifiers")
	if v.IsUndefined() {
		return nil, nil
	}
	items, ok := tengo.ToInterface(v.Object()).([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s: modifiers is %s, want array", errScriptOutput, s.name, v.ValueType())
	}

	var out []movement.Modifier
	for i, raw := range items {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s: modifiers[%d] is not a map", errScriptOutput, s.name, i)
		}
		m, err := decodeScriptModifier(now, entry)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: modifiers[%d]: %v", errScriptOutput, s.name, i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func decodeScriptModifier(now float64, entry map[string]interface{}) (movement.Modifier, error) {
	dir, err := vec3(entry["direction"])
	if err != nil {
		return movement.Modifier{}, fmt.Errorf("direction: %w", err)
	}
	delay, err := number(entry, "delay", 0)
	if err != nil {
		return movement.Modifier{}, err
	}
	duration, err := number(entry, "duration", 0)
	if err != nil {
		return movement.Modifier{}, err
	}
	if delay < 0 {
		return movement.Modifier{}, fmt.Errorf("delay must not be negative, got %v", delay)
	}
	start := now + delay
	return movement.NewModifier(dir, start, start+duration, modifierOptions(
		flag(entry, "fades"),
		flag(entry, "clear_on_ground"),
		flag(entry, "reset_gravity"),
	)...)
}

func vec3(raw interface{}) (mgl64.Vec3, error) {
	arr, ok := raw.([]interface{})
	if !ok || len(arr) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("want [x, y, z], got %v", raw)
	}
	var v mgl64.Vec3
	for i, c := range arr {
		f, ok := toFloat(c)
		if !ok {
			return mgl64.Vec3{}, fmt.Errorf("component %d is not a number: %v", i, c)
		}
		v[i] = f
	}
	return v, nil
}

func number(entry map[string]interface{}, key string, def float64) (float64, error) {
	raw, ok := entry[key]
	if !ok || raw == nil {
		return def, nil
	}
	f, ok := toFloat(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s is not a finite number: %v", key, raw)
	}
	return f, nil
}

func flag(entry map[string]interface{}, key string) bool {
	b, _ := entry[key].(bool)
	return b
}

func toFloat(raw interface{}) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
