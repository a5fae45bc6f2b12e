package dev

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startWatcher(t *testing.T, dir string) <-chan Change {
	t.Helper()
	w := NewWatcher(WatcherConfig{Paths: []string{dir}, Interval: 20 * time.Millisecond})
	changes := make(chan Change, 10)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx, func(c Change) { changes <- c })

	deadline := time.Now().Add(time.Second)
	for !w.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	return changes
}

func waitChange(t *testing.T, changes <-chan Change) Change {
	t.Helper()
	select {
	case c := <-changes:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
		return Change{}
	}
}

func TestWatcherModifiedFile(t *testing.T) {
	dir := t.TempDir()
	css := filepath.Join(dir, "app.css")
	if err := os.WriteFile(css, []byte("a{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	changes := startWatcher(t, dir)
	time.Sleep(50 * time.Millisecond)

	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(css, future, future); err != nil {
		t.Fatal(err)
	}

	c := waitChange(t, changes)
	if c.Type != ChangeCSS || c.Path != css {
		t.Errorf("change = %+v, want css %s", c, css)
	}
}

func TestWatcherNewAndDeletedFile(t *testing.T) {
	dir := t.TempDir()
	changes := startWatcher(t, dir)
	time.Sleep(50 * time.Millisecond)

	file := filepath.Join(dir, "routes.go")
	if err := os.WriteFile(file, []byte("package app"), 0o644); err != nil {
		t.Fatal(err)
	}
	if c := waitChange(t, changes); c.Type != ChangeGo || c.Path != file {
		t.Errorf("created: %+v", c)
	}

	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}
	if c := waitChange(t, changes); c.Path != file {
		t.Errorf("deleted: %+v", c)
	}
}

func TestWatcherIgnore(t *testing.T) {
	w := NewWatcher(WatcherConfig{Ignore: []string{"*_test.go", "node_modules", "build/out", "*.swp"}})

	tests := []struct {
		path   string
		ignore bool
	}{
		{"/p/app/home_test.go", true},
		{"/p/node_modules/x/index.js", true},
		{"/p/build/out/main.js", true},
		{"/p/app/.home.go.swp", true},
		{"/p/app/home.go", false},
		{"/p/public/build.css", false},
	}
	for _, tt := range tests {
		if got := w.shouldIgnore(tt.path); got != tt.ignore {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.ignore)
		}
	}
}

func TestClassifyChange(t *testing.T) {
	tests := map[string]ChangeType{
		"app/routes.go":   ChangeGo,
		"public/app.CSS":  ChangeCSS,
		"isomorph.yaml":   ChangeConfig,
		".env":            ChangeConfig,
		"public/logo.png": ChangeAsset,
	}
	for p, want := range tests {
		if got := classifyChange(p); got != want {
			t.Errorf("classifyChange(%q) = %v, want %v", p, got, want)
		}
	}
}

func dialReload(t *testing.T, rs *ReloadServer) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(rs)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + ReloadPath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(time.Second)
	for rs.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rs.ClientCount() != 1 {
		t.Fatalf("ClientCount = %d, want 1", rs.ClientCount())
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) ReloadMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ReloadMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestReloadServerForward(t *testing.T) {
	rs := NewReloadServer(nil)
	defer rs.Close()
	conn := dialReload(t, rs)

	rs.Forward(Change{Path: "public/app.css", Type: ChangeCSS})
	if msg := readMessage(t, conn); msg.Type != ReloadTypeCSS || msg.File != "public/app.css" {
		t.Errorf("css message = %+v", msg)
	}

	rs.Forward(Change{Path: "public/logo.png", Type: ChangeAsset})
	if msg := readMessage(t, conn); msg.Type != ReloadTypeFull {
		t.Errorf("asset message = %+v", msg)
	}

	rs.Forward(Change{Path: "app/routes.go", Type: ChangeGo})
	msg := readMessage(t, conn)
	if msg.Type != ReloadTypeError || !strings.Contains(msg.Error, "app/routes.go") {
		t.Errorf("go message = %+v", msg)
	}

	rs.ClearError()
	if msg := readMessage(t, conn); msg.Type != ReloadTypeClear {
		t.Errorf("clear message = %+v", msg)
	}
}

func TestReloadServerDisconnect(t *testing.T) {
	rs := NewReloadServer(nil)
	conn := dialReload(t, rs)
	conn.Close()

	deadline := time.Now().Add(time.Second)
	for rs.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rs.ClientCount() != 0 {
		t.Errorf("ClientCount after close = %d", rs.ClientCount())
	}
}

func TestDevClientScript(t *testing.T) {
	if !strings.Contains(DevClientScript, ReloadPath) {
		t.Error("client script must connect to ReloadPath")
	}
	if strings.Contains(DevClientScript, "</script") {
		t.Error("client script must be safe to inline")
	}
}
