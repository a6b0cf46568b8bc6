//go:build linux || darwin

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Properties observed on the mpv side; ids are echoed back in property-change events
var mpvObserved = []string{"time-pos", "duration", "pause", "volume", "mute", "speed", "fullscreen", "eof-reached"}

type mpvMessage struct {
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	RequestID int64           `json:"request_id"`
	Reason    string          `json:"reason"`
}

type mpvReply struct {
	data json.RawMessage
	err  error
}

// mpvElement drives an mpv process over its JSON IPC socket
type mpvElement struct {
	cmd     *exec.Cmd
	conn    net.Conn
	socket  string
	timeout time.Duration
	logger  *zap.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int64
	pending map[int64]chan mpvReply
	loaded  bool
	pos     float64
	dur     float64
	paused  bool
	volume  float64
	muted   bool
	rate    float64
	fullscr bool

	events chan MediaEvent
	closed chan struct{}
	once   sync.Once
}

// newMPVElement starts mpv in idle mode and connects to its IPC socket
func newMPVElement(ctx context.Context, mpvPath string, logger *zap.Logger) (*mpvElement, error) {
	if _, err := exec.LookPath(mpvPath); err != nil {
		return nil, fmt.Errorf("mpv not found: %w", err)
	}

	socket := filepath.Join(os.TempDir(), "goplayer-"+uuid.NewString()+".sock")
	cmd := exec.Command(mpvPath,
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=yes",
		"--no-terminal",
		"--input-ipc-server="+socket,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start mpv: %w", err)
	}

	conn, err := dialMPV(ctx, socket)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}

	m, err := attachMPV(conn, logger)
	if err != nil {
		_ = conn.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}
	m.cmd = cmd
	m.socket = socket
	return m, nil
}

// attachMPV wraps an established IPC connection and subscribes to the
// observed properties
func attachMPV(conn net.Conn, logger *zap.Logger) (*mpvElement, error) {
	m := &mpvElement{
		conn:    conn,
		timeout: 2 * time.Second,
		logger:  logger.Named("mpv"),
		pending: make(map[int64]chan mpvReply),
		dur:     math.NaN(),
		paused:  true,
		volume:  1,
		rate:    1,
		events:  make(chan MediaEvent, 128),
		closed:  make(chan struct{}),
	}
	go m.readLoop()

	for i, name := range mpvObserved {
		if _, err := m.command("observe_property", i+1, name); err != nil {
			m.once.Do(func() { close(m.closed) })
			return nil, fmt.Errorf("observe %s: %w", name, err)
		}
	}
	return m, nil
}

// dialMPV waits for mpv to create the socket
func dialMPV(ctx context.Context, socket string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "unix", socket)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect to mpv ipc %s: %w", socket, err)
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (m *mpvElement) command(args ...any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	return m.commandContext(ctx, args...)
}

func (m *mpvElement) commandContext(ctx context.Context, args ...any) (json.RawMessage, error) {
	reply := make(chan mpvReply, 1)

	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.pending[id] = reply
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
	}()

	payload, err := json.Marshal(map[string]any{"command": args, "request_id": id})
	if err != nil {
		return nil, fmt.Errorf("encode mpv command: %w", err)
	}
	payload = append(payload, '\n')

	m.writeMu.Lock()
	_, err = m.conn.Write(payload)
	m.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write mpv command: %w", err)
	}

	select {
	case r := <-reply:
		return r.data, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("mpv %v: %w", args[0], ctx.Err())
	case <-m.closed:
		return nil, errors.New("mpv connection closed")
	}
}

func (m *mpvElement) readLoop() {
	scanner := bufio.NewScanner(m.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		var msg mpvMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			m.logger.Debug("skipping malformed ipc line", zap.Error(err))
			continue
		}
		if msg.Event != "" {
			m.handleEvent(msg)
			continue
		}

		m.mu.Lock()
		reply, ok := m.pending[msg.RequestID]
		m.mu.Unlock()
		if !ok {
			continue
		}
		if msg.Error != "" && msg.Error != "success" {
			reply <- mpvReply{err: fmt.Errorf("mpv: %s", msg.Error)}
		} else {
			reply <- mpvReply{data: msg.Data}
		}
	}

	if err := scanner.Err(); err != nil {
		m.emit(MediaEvent{Kind: MediaError, Err: fmt.Errorf("mpv ipc: %w", err)})
	}
	m.once.Do(func() { close(m.closed) })
}

func (m *mpvElement) handleEvent(msg mpvMessage) {
	switch msg.Event {
	case "property-change":
		m.handleProperty(msg.Name, msg.Data)
	case "end-file":
		if msg.Reason == "eof" {
			m.emit(MediaEvent{Kind: MediaEnded})
		} else if msg.Reason == "error" {
			m.emit(MediaEvent{Kind: MediaError, Err: errors.New("mpv could not play the file")})
		}
	}
}

func (m *mpvElement) handleProperty(name string, data json.RawMessage) {
	var num *float64
	var flag *bool
	switch name {
	case "time-pos", "duration", "volume", "speed":
		_ = json.Unmarshal(data, &num)
	case "pause", "mute", "fullscreen", "eof-reached":
		_ = json.Unmarshal(data, &flag)
	}

	m.mu.Lock()
	var ev *MediaEvent
	switch name {
	case "time-pos":
		if num == nil {
			m.pos = 0
		} else {
			m.pos = *num
		}
		ev = &MediaEvent{Kind: MediaTimeUpdate, Value: m.pos}
	case "duration":
		if num == nil {
			m.dur = math.NaN()
		} else {
			m.dur = *num
		}
		ev = &MediaEvent{Kind: MediaDurationChange, Value: m.dur}
	case "pause":
		if flag != nil {
			m.paused = *flag
			ev = &MediaEvent{Kind: MediaPauseChange, Flag: m.paused}
		}
	case "volume":
		if num != nil {
			m.volume = clamp(*num/100, 0, 1)
			ev = &MediaEvent{Kind: MediaVolumeChange, Value: m.volume, Flag: m.muted}
		}
	case "mute":
		if flag != nil {
			m.muted = *flag
			ev = &MediaEvent{Kind: MediaVolumeChange, Value: m.volume, Flag: m.muted}
		}
	case "speed":
		if num != nil {
			m.rate = *num
			ev = &MediaEvent{Kind: MediaRateChange, Value: m.rate}
		}
	case "fullscreen":
		if flag != nil {
			m.fullscr = *flag
			ev = &MediaEvent{Kind: MediaFullscreenChange, Flag: m.fullscr}
		}
	case "eof-reached":
		// keep-open holds the last frame instead of sending end-file
		if flag != nil && *flag {
			ev = &MediaEvent{Kind: MediaEnded}
		}
	}
	m.mu.Unlock()

	if ev != nil {
		m.emit(*ev)
	}
}

func (m *mpvElement) emit(ev MediaEvent) {
	select {
	case m.events <- ev:
	default:
		m.logger.Debug("media event dropped", zap.Stringer("kind", ev.Kind))
	}
}

func (m *mpvElement) Load(src string) error {
	if _, err := m.command("loadfile", src, "replace"); err != nil {
		return fmt.Errorf("load %s: %w", src, err)
	}
	m.mu.Lock()
	m.loaded = true
	m.pos = 0
	m.mu.Unlock()
	return nil
}

func (m *mpvElement) Play() error {
	if _, err := m.command("set_property", "pause", false); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	m.mu.Lock()
	m.paused = false
	m.mu.Unlock()
	return nil
}

func (m *mpvElement) Pause() error {
	if _, err := m.command("set_property", "pause", true); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	m.mu.Lock()
	m.paused = true
	m.mu.Unlock()
	return nil
}

func (m *mpvElement) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *mpvElement) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

func (m *mpvElement) Seek(seconds float64) error {
	m.mu.Lock()
	loaded := m.loaded
	m.mu.Unlock()
	if !loaded {
		return fmt.Errorf("seek: %w", ErrNotLoaded)
	}
	if _, err := m.command("seek", seconds, "absolute"); err != nil {
		return fmt.Errorf("seek to %.2fs: %w", seconds, err)
	}
	m.mu.Lock()
	m.pos = seconds
	m.mu.Unlock()
	return nil
}

func (m *mpvElement) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dur
}

func (m *mpvElement) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *mpvElement) SetVolume(v float64) error {
	if _, err := m.command("set_property", "volume", v*100); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	m.mu.Lock()
	m.volume = v
	m.mu.Unlock()
	return nil
}

func (m *mpvElement) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

func (m *mpvElement) SetMuted(muted bool) error {
	if _, err := m.command("set_property", "mute", muted); err != nil {
		return fmt.Errorf("set mute: %w", err)
	}
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()
	return nil
}

func (m *mpvElement) SetPlaybackRate(rate float64) error {
	if _, err := m.command("set_property", "speed", rate); err != nil {
		return fmt.Errorf("set speed: %w", err)
	}
	return nil
}

func (m *mpvElement) FullscreenEnabled() bool {
	select {
	case <-m.closed:
		return false
	default:
		return true
	}
}

func (m *mpvElement) RequestFullscreen() error {
	if _, err := m.command("set_property", "fullscreen", true); err != nil {
		return fmt.Errorf("enter fullscreen: %w", err)
	}
	return nil
}

func (m *mpvElement) ExitFullscreen() error {
	if _, err := m.command("set_property", "fullscreen", false); err != nil {
		return fmt.Errorf("exit fullscreen: %w", err)
	}
	return nil
}

func (m *mpvElement) Events() <-chan MediaEvent {
	return m.events
}

func (m *mpvElement) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	_, _ = m.commandContext(ctx, "quit")
	cancel()

	err := m.conn.Close()
	m.once.Do(func() { close(m.closed) })
	if m.cmd == nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- m.cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		_ = m.cmd.Process.Kill()
		<-done
	}
	_ = os.Remove(m.socket)
	return err
}
