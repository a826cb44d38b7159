package debug

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"

	"github.com/Versifine/momentum/internal/body"
	"github.com/Versifine/momentum/internal/effects"
	"github.com/Versifine/momentum/internal/movement"
)

const (
	defaultTickInterval = 50 * time.Millisecond
	defaultMovePulse    = 180 * time.Millisecond
)

// ControlledBody is the actor the console drives.
type ControlledBody interface {
	Tick(input body.InputState, clock movement.Clock) movement.Result
	Snapshot() body.Snapshot
	Position() mgl64.Vec3
	Enqueue(now float64, source string, mods ...movement.Modifier)
	Teleport(now float64, pos mgl64.Vec3) error
}

// Console drives one body from a raw-mode terminal. Movement keys hold their
// axis for a short pulse, space queues a jump press for the next tick and
// arrows pulse the look axes.
type Console struct {
	body         ControlledBody
	effects      *effects.Registry
	tickInterval time.Duration
	movePulse    time.Duration
	out          io.Writer
	outMu        sync.Mutex
	travel       *TravelMeter

	mu           sync.Mutex
	now          float64
	moveX, moveY float64
	lookX, lookY float64
	moveXUntil   time.Time
	moveYUntil   time.Time
	lookXUntil   time.Time
	lookYUntil   time.Time
	jumpQueued   bool
	commandMode  bool
	commandBuf   []rune
	statusWidth  int
}

type ConsoleOption func(*Console)

func WithTickInterval(d time.Duration) ConsoleOption {
	return func(c *Console) {
		if d > 0 {
			c.tickInterval = d
		}
	}
}

func WithOutput(w io.Writer) ConsoleOption {
	return func(c *Console) {
		if w != nil {
			c.out = w
		}
	}
}

// WithTravelLogging logs cumulative distance and speed at every travel sample.
func WithTravelLogging(distance, speed bool) ConsoleOption {
	return func(c *Console) {
		c.travel.LogDistance = distance
		c.travel.LogSpeed = speed
	}
}

func NewConsole(b ControlledBody, reg *effects.Registry, opts ...ConsoleOption) *Console {
	c := &Console{
		body:         b,
		effects:      reg,
		tickInterval: defaultTickInterval,
		movePulse:    defaultMovePulse,
		out:          os.Stdout,
		travel:       NewTravelMeter(DefaultTravelInterval),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start puts stdin into raw mode and runs the console until ctx is done.
func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.body == nil {
		return fmt.Errorf("console body is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		c.printf("\r\n")
	}()

	return c.Run(ctx, os.Stdin)
}

// Run reads keys from r and ticks the body until ctx is done or r ends. The
// tick loop has stopped by the time Run returns.
func (c *Console) Run(ctx context.Context, r io.Reader) error {
	c.printf("[debug] console started (W/A/S/D pulse, Space jump, arrows look, X clear, : command)\r\n")
	c.renderStatusLine()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.tickLoop(ctx)
	}()
	defer wg.Wait()
	defer cancel()

	reader := bufio.NewReader(r)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		c.handleKey(reader, b)
	}
}

func (c *Console) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			c.tick(t)
			c.renderStatusLine()
		}
	}
}

// tick advances the body by one tick interval of simulated time.
func (c *Console) tick(wall time.Time) movement.Result {
	dt := c.tickInterval.Seconds()
	c.mu.Lock()
	input := c.inputLocked(wall)
	clock := movement.Clock{Now: c.now, Dt: dt}
	c.now += dt
	c.mu.Unlock()

	res := c.body.Tick(input, clock)
	pos := c.body.Position()

	c.mu.Lock()
	sample, ok := c.travel.Observe(dt, pos)
	c.mu.Unlock()
	if ok {
		slog.Debug("debug travel sampled", "cumulative", sample.Cumulative, "speed", sample.Speed)
	}
	return res
}

func (c *Console) handleKey(reader *bufio.Reader, b byte) {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return
	}

	switch b {
	case ':':
		c.enterCommandMode()
		return
	case 'w', 'W':
		c.pulse(&c.moveY, &c.moveYUntil, 1)
	case 's', 'S':
		c.pulse(&c.moveY, &c.moveYUntil, -1)
	case 'a', 'A':
		c.pulse(&c.moveX, &c.moveXUntil, -1)
	case 'd', 'D':
		c.pulse(&c.moveX, &c.moveXUntil, 1)
	case ' ':
		c.mu.Lock()
		c.jumpQueued = true
		c.mu.Unlock()
	case 'x', 'X':
		c.clearInput()
	case 27: // ESC + arrow sequence
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return
		}
		switch arrow {
		case 'D': // left
			c.pulse(&c.lookX, &c.lookXUntil, -1)
		case 'C': // right
			c.pulse(&c.lookX, &c.lookXUntil, 1)
		case 'A': // up
			c.pulse(&c.lookY, &c.lookYUntil, 1)
		case 'B': // down
			c.pulse(&c.lookY, &c.lookYUntil, -1)
		}
	}
	c.renderStatusLine()
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	c.printf("\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		c.printf("\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine()
		return
	case 27: // ESC cancel command mode
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		c.printf("\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		c.printf("\r:%s ", buf)
		c.printf("\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		c.printf("\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		s := c.body.Snapshot()
		c.printf("[debug] pos=(%.3f,%.3f,%.3f) vel=(%.3f,%.3f,%.3f) yaw=%.1f pitch=%.1f ground=%t gravity=%.3f jumping=%t mods=%d %s\r\n",
			s.Position[0], s.Position[1], s.Position[2],
			s.Velocity[0], s.Velocity[1], s.Velocity[2],
			s.Yaw, s.Pitch,
			s.Grounded, s.AppliedGravity, s.Jumping, s.Modifiers, s.State,
		)
	case "travel":
		c.mu.Lock()
		t := c.travel.Latest()
		c.mu.Unlock()
		c.printf("[debug] travelled=%.3f speed=%.3f\r\n", t.Cumulative, t.Speed)
	case "effects":
		c.printf("[debug] effects: %s\r\n", strings.Join(c.effects.Names(), ", "))
	case "boom":
		if len(parts) != 2 {
			c.printf("[debug] usage: :boom <effect>\r\n")
			return
		}
		c.mu.Lock()
		now := c.now
		c.mu.Unlock()
		n, err := c.effects.Apply(parts[1], now, c.body)
		if err != nil {
			c.printf("[debug] %v\r\n", err)
			return
		}
		c.printf("[debug] %s: %d modifier(s) queued\r\n", parts[1], n)
	case "tp":
		if len(parts) != 4 {
			c.printf("[debug] usage: :tp <x> <y> <z>\r\n")
			return
		}
		x, err1 := strconv.ParseFloat(parts[1], 64)
		y, err2 := strconv.ParseFloat(parts[2], 64)
		z, err3 := strconv.ParseFloat(parts[3], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			c.printf("[debug] invalid tp args\r\n")
			return
		}
		c.mu.Lock()
		now := c.now
		c.mu.Unlock()
		pos := mgl64.Vec3{x, y, z}
		if err := c.body.Teleport(now, pos); err != nil {
			c.printf("[debug] tp failed: %v\r\n", err)
			return
		}
		c.mu.Lock()
		c.travel.Reset(pos)
		c.mu.Unlock()
		c.printf("[debug] tp to (%.3f, %.3f, %.3f)\r\n", x, y, z)
	default:
		c.printf("[debug] unknown command: %s\r\n", parts[0])
	}
}

func (c *Console) printHelp() {
	c.printf("[debug] keys:\r\n")
	c.printf("  W/S/A/D: pulse movement (~180ms)\r\n")
	c.printf("  Space: jump\r\n")
	c.printf("  Arrows: pulse look\r\n")
	c.printf("  X: clear all input\r\n")
	c.printf("  : enter command mode\r\n")
	c.printf("[debug] commands:\r\n")
	c.printf("  :boom <effect>\r\n")
	c.printf("  :effects\r\n")
	c.printf("  :tp <x> <y> <z>\r\n")
	c.printf("  :state\r\n")
	c.printf("  :travel\r\n")
	c.printf("  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	moveX, moveY, jump := c.moveX, c.moveY, c.jumpQueued
	width := c.statusWidth
	c.mu.Unlock()

	s := c.body.Snapshot()
	line := fmt.Sprintf(
		"[MOVE:(%+.0f,%+.0f) JMP:%s | YAW:%.1f PIT:%.1f | X:%.2f Y:%.2f Z:%.2f ground:%t %s]",
		moveX, moveY,
		boolLabel(jump),
		s.Yaw, s.Pitch,
		s.Position[0], s.Position[1], s.Position[2],
		s.Grounded,
		s.State,
	)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	c.printf("\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func (c *Console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// pulse holds axis at v until the pulse expires. Pressing the opposite
// direction replaces the pulse.
func (c *Console) pulse(axis *float64, until *time.Time, v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*axis = v
	*until = time.Now().Add(c.movePulse)
}

// inputLocked expires pulses at now and consumes the queued jump.
func (c *Console) inputLocked(now time.Time) body.InputState {
	expire := func(axis *float64, until *time.Time) {
		if !until.IsZero() && !now.Before(*until) {
			*axis = 0
			*until = time.Time{}
		}
	}
	expire(&c.moveX, &c.moveXUntil)
	expire(&c.moveY, &c.moveYUntil)
	expire(&c.lookX, &c.lookXUntil)
	expire(&c.lookY, &c.lookYUntil)

	in := body.InputState{
		MoveX:       c.moveX,
		MoveY:       c.moveY,
		LookX:       c.lookX,
		LookY:       c.lookY,
		JumpPressed: c.jumpQueued,
	}
	c.jumpQueued = false
	return in
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func (c *Console) clearInput() {
	c.mu.Lock()
	c.moveX, c.moveY, c.lookX, c.lookY = 0, 0, 0, 0
	c.moveXUntil, c.moveYUntil = time.Time{}, time.Time{}
	c.lookXUntil, c.lookYUntil = time.Time{}, time.Time{}
	c.jumpQueued = false
	c.mu.Unlock()
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
