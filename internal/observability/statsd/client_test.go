package statsd

import (
	"net"
	"strings"
	"testing"
	"time"
)

func TestEncodeTags(t *testing.T) {
	t.Parallel()

	global := map[string]string{"env": "prod", " service ": " console "}
	local := map[string]string{"result": " success ", "": "ignored", "env": "stage"}

	got := encodeTags(global, local)
	want := "|#env:stage,result:success,service:console"
	if got != want {
		t.Fatalf("encodeTags mismatch\n got: %q\nwant: %q", got, want)
	}
	if got := encodeTags(nil, nil); got != "" {
		t.Fatalf("encodeTags(nil, nil) = %q, want empty", got)
	}
}

func TestQualify(t *testing.T) {
	t.Parallel()

	c := &Client{prefix: "console"}
	tests := map[string]string{
		"api.request":    "console.api.request",
		" login/result ": "console.login_result",
		"a..b":           "console.a.b",
		"":               "",
	}
	for in, want := range tests {
		if got := c.qualify(in); got != want {
			t.Fatalf("qualify(%q) = %q, want %q", in, got, want)
		}
	}
	if got := (&Client{}).qualify("x"); got != "x" {
		t.Fatalf("qualify without prefix = %q", got)
	}
}

func TestClientWritesLines(t *testing.T) {
	t.Parallel()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("udp unavailable: %v", err)
	}
	defer pc.Close()

	c, err := NewClient(Config{Enabled: true, Address: pc.LocalAddr().String(), Prefix: "console."})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	defer c.Close()

	c.Count("login", 1, map[string]string{"result": "success"})

	buf := make([]byte, 512)
	_ = pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := string(buf[:n]); got != "console.login:1|c|#result:success" {
		t.Fatalf("unexpected line %q", got)
	}
}

func TestClientDisabledAndNil(t *testing.T) {
	t.Parallel()

	c, err := NewClient(Config{Enabled: true, Address: "   "})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if c.Enabled() {
		t.Fatal("expected disabled client without address")
	}
	c.Timing("noop", time.Second, nil)

	var nilClient *Client
	nilClient.Count("noop", 1, nil)
	if nilClient.Enabled() {
		t.Fatal("nil client should report disabled")
	}
	if err := nilClient.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}

func TestNewClientDialError(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{Enabled: true, Address: "bad address"})
	if err == nil || !strings.Contains(err.Error(), "statsd dial") {
		t.Fatalf("expected dial error, got %v", err)
	}
}
