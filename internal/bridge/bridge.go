// Package bridge connects the evaluator to the library specialist, an
// external process answering newline-delimited JSON requests on stdio.
// The bridge owns pooling, health checks, retries and circuit breaking;
// language semantics never leak down here.
package bridge

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vexlang/vex/internal/evaluator"
)

type Config struct {
	Command          string
	Args             []string
	PoolSize         int
	Timeout          time.Duration
	Retries          int
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

func (c Config) withDefaults() Config {
	if c.PoolSize <= 0 {
		c.PoolSize = 2
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
	return c
}

// request is one call on the wire. Short keys match the specialist side.
type request struct {
	ID string                 `json:"id"`
	M  string                 `json:"m"`
	F  string                 `json:"f"`
	A  []interface{}          `json:"a"`
	K  map[string]interface{} `json:"k,omitempty"`
}

type command struct {
	Cmd string `json:"cmd"`
}

type response struct {
	ID    string          `json:"id,omitempty"`
	OK    json.RawMessage `json:"ok,omitempty"`
	Error *string         `json:"error,omitempty"`
}

// Bridge is a pool of specialist processes behind a circuit breaker. It
// implements evaluator.Specialist and is safe for concurrent use.
type Bridge struct {
	cfg     Config
	breaker *CircuitBreaker
	pool    chan *worker

	mu     sync.Mutex
	closed bool
}

type worker struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	reader *bufio.Reader
}

func New(cfg Config) (*Bridge, error) {
	cfg = cfg.withDefaults()
	if cfg.Command == "" {
		return nil, errors.New("bridge: no specialist command configured")
	}

	b := &Bridge{
		cfg:     cfg,
		breaker: NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
		pool:    make(chan *worker, cfg.PoolSize),
	}
	for i := 0; i < cfg.PoolSize; i++ {
		w, err := b.spawn()
		if err != nil {
			b.Close()
			return nil, err
		}
		b.pool <- w
	}
	return b, nil
}

func (b *Bridge) spawn() (*worker, error) {
	cmd := exec.Command(b.cfg.Command, b.cfg.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("bridge: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("bridge: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("bridge: start specialist: %w", err)
	}

	w := &worker{cmd: cmd, stdin: stdin, reader: bufio.NewReader(stdout)}

	// The specialist announces itself with one banner line before it
	// accepts requests.
	if _, err := b.readLine(w); err != nil {
		w.kill()
		return nil, fmt.Errorf("bridge: specialist never became ready: %w", err)
	}
	return w, nil
}

func (w *worker) kill() {
	if w.stdin != nil {
		w.stdin.Close()
	}
	if w.cmd != nil && w.cmd.Process != nil {
		w.cmd.Process.Kill()
		w.cmd.Wait()
	}
}

// Call sends module.function(args) to a pooled specialist. Transport
// failures count against the breaker and are retried on a fresh process;
// remote failures (the library itself raised) are returned as-is.
func (b *Bridge) Call(module, function string, args []evaluator.Object) (evaluator.Object, error) {
	if !b.breaker.Allow() {
		return nil, ErrBreakerOpen
	}

	encoded := make([]interface{}, len(args))
	for i, arg := range args {
		enc, err := encodeValue(arg)
		if err != nil {
			return nil, err
		}
		encoded[i] = enc
	}

	req := request{ID: uuid.NewString(), M: module, F: function, A: encoded}

	var lastErr error
	for attempt := 0; attempt <= b.cfg.Retries; attempt++ {
		w, err := b.acquire()
		if err != nil {
			return nil, err
		}

		resp, err := b.roundTrip(w, req)
		if err != nil {
			// Transport failure: the process is in an unknown state.
			w.kill()
			b.breaker.RecordFailure()
			lastErr = err
			if replacement, spawnErr := b.spawn(); spawnErr == nil {
				b.release(replacement)
			} else {
				b.release(nil)
			}
			continue
		}
		b.release(w)
		b.breaker.RecordSuccess()

		if resp.Error != nil {
			return nil, errors.New(*resp.Error)
		}
		return decodeResult(resp.OK)
	}
	return nil, fmt.Errorf("bridge: call failed after %d attempts: %w", b.cfg.Retries+1, lastErr)
}

// Ping verifies liveness of one pooled specialist.
func (b *Bridge) Ping() error {
	w, err := b.acquire()
	if err != nil {
		return err
	}
	defer b.release(w)

	line, err := json.Marshal(command{Cmd: "ping"})
	if err != nil {
		return err
	}
	if err := b.writeLine(w, line); err != nil {
		return err
	}
	raw, err := b.readLine(w)
	if err != nil {
		return err
	}
	if !bytes.Contains(raw, []byte("pong")) {
		return fmt.Errorf("bridge: unexpected ping reply: %s", raw)
	}
	return nil
}

// Health asks one pooled specialist for its health report and returns the
// raw payload for the caller to surface.
func (b *Bridge) Health() (json.RawMessage, error) {
	w, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer b.release(w)

	line, err := json.Marshal(command{Cmd: "health"})
	if err != nil {
		return nil, err
	}
	if err := b.writeLine(w, line); err != nil {
		return nil, err
	}
	raw, err := b.readLine(w)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("bridge: malformed health reply: %w", err)
	}
	if resp.Error != nil {
		return nil, errors.New(*resp.Error)
	}
	return resp.OK, nil
}

func (b *Bridge) acquire() (*worker, error) {
	select {
	case w := <-b.pool:
		if w == nil {
			// A previous respawn failed; try again now.
			replacement, err := b.spawn()
			if err != nil {
				b.release(nil)
				return nil, fmt.Errorf("bridge: no healthy specialist: %w", err)
			}
			return replacement, nil
		}
		return w, nil
	case <-time.After(b.cfg.Timeout):
		return nil, errors.New("bridge: timed out waiting for a free specialist")
	}
}

func (b *Bridge) release(w *worker) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		if w != nil {
			w.kill()
		}
		return
	}
	b.pool <- w
}

func (b *Bridge) roundTrip(w *worker, req request) (*response, error) {
	line, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if err := b.writeLine(w, line); err != nil {
		return nil, err
	}

	raw, err := b.readLine(w)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("bridge: malformed response: %w", err)
	}
	if resp.ID != "" && resp.ID != req.ID {
		return nil, fmt.Errorf("bridge: response id %s does not match request %s", resp.ID, req.ID)
	}
	return &resp, nil
}

func (b *Bridge) writeLine(w *worker, line []byte) error {
	if _, err := w.stdin.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("bridge: write: %w", err)
	}
	return nil
}

// readLine reads one response line under the configured timeout. The read
// happens on a goroutine because stdio pipes have no deadline support.
func (b *Bridge) readLine(w *worker) ([]byte, error) {
	type result struct {
		line []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := w.reader.ReadBytes('\n')
		ch <- result{line: line, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("bridge: read: %w", res.err)
		}
		return bytes.TrimSpace(res.line), nil
	case <-time.After(b.cfg.Timeout):
		return nil, errors.New("bridge: specialist call timed out")
	}
}

func decodeResult(raw json.RawMessage) (evaluator.Object, error) {
	if len(raw) == 0 {
		return evaluator.VOID, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("bridge: decode result: %w", err)
	}
	return decodeValue(value)
}

func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.pool)
	for w := range b.pool {
		if w != nil {
			w.kill()
		}
	}
}
