package bridge

import (
	"strings"
	"testing"
	"time"

	"github.com/vexlang/vex/internal/evaluator"
)

// fakeSpecialist builds a shell one-liner that prints the ready banner and
// then answers every request line with the given reply.
func fakeSpecialist(reply string) Config {
	script := `echo '{"ready":true,"pid":0}'; while read line; do echo '` + reply + `'; done`
	return Config{
		Command:  "sh",
		Args:     []string{"-c", script},
		PoolSize: 1,
		Timeout:  5 * time.Second,
	}
}

func TestBridgeCallSuccess(t *testing.T) {
	b, err := New(fakeSpecialist(`{"ok": 42}`))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	result, err := b.Call("math", "answer", []evaluator.Object{&evaluator.Integer{Value: 1}})
	if err != nil {
		t.Fatal(err)
	}
	n, ok := result.(*evaluator.Integer)
	if !ok || n.Value != 42 {
		t.Fatalf("got %s", result.Inspect())
	}
}

func TestBridgeRemoteError(t *testing.T) {
	b, err := New(fakeSpecialist(`{"error": "module not found: nope"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	_, err = b.Call("nope", "f", nil)
	if err == nil || err.Error() != "module not found: nope" {
		t.Fatalf("got %v", err)
	}

	// A remote failure is the library's problem, not the transport's; the
	// breaker must stay closed.
	if !b.breaker.Allow() {
		t.Fatal("breaker tripped on a remote error")
	}
}

func TestBridgeVoidResult(t *testing.T) {
	b, err := New(fakeSpecialist(`{"ok": null}`))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	result, err := b.Call("m", "f", nil)
	if err != nil {
		t.Fatal(err)
	}
	if result != evaluator.VOID {
		t.Fatalf("got %s", result.Inspect())
	}
}

func TestBridgePing(t *testing.T) {
	b, err := New(fakeSpecialist(`{"ok": "pong"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if err := b.Ping(); err != nil {
		t.Fatal(err)
	}
}

func TestBridgeHealth(t *testing.T) {
	b, err := New(fakeSpecialist(`{"ok": {"uptime": 1}}`))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	report, err := b.Health()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(report), "uptime") {
		t.Errorf("got %s", report)
	}
}

func TestBridgeRequiresCommand(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected an error for an empty command")
	}
}

func TestBridgeStartFailure(t *testing.T) {
	_, err := New(Config{Command: "/no/such/specialist", PoolSize: 1, Timeout: time.Second})
	if err == nil {
		t.Fatal("expected a spawn error")
	}
}

func TestBridgeDeadProcessFailsAfterRetries(t *testing.T) {
	cfg := Config{
		Command:  "sh",
		Args:     []string{"-c", `echo '{"ready":true}'`},
		PoolSize: 1,
		Timeout:  2 * time.Second,
		Retries:  1,
	}
	b, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	_, err = b.Call("m", "f", nil)
	if err == nil {
		t.Fatal("expected a transport error")
	}
	if !strings.Contains(err.Error(), "after 2 attempts") {
		t.Errorf("got %v", err)
	}
}

func TestBridgeBreakerOpensAfterRepeatedTransportFailures(t *testing.T) {
	cfg := Config{
		Command:          "sh",
		Args:             []string{"-c", `echo '{"ready":true}'`},
		PoolSize:         1,
		Timeout:          2 * time.Second,
		BreakerThreshold: 2,
		BreakerCooldown:  time.Minute,
	}
	b, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	b.Call("m", "f", nil)
	b.Call("m", "f", nil)

	if _, err := b.Call("m", "f", nil); err != ErrBreakerOpen {
		t.Fatalf("expected ErrBreakerOpen, got %v", err)
	}
}
