package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestEngineExecute_AllSteps(t *testing.T) {
	var out bytes.Buffer
	engine := NewEngine(&out, newTestLogger())

	order := []string{}
	steps := []Step{
		{Name: "login", Run: func(context.Context) error { order = append(order, "login"); return nil }},
		{Name: "enumerate", Run: func(context.Context) error { order = append(order, "enumerate"); return nil }},
	}

	if err := engine.Execute(context.Background(), steps); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if strings.Join(order, ",") != "login,enumerate" {
		t.Fatalf("order = %v", order)
	}
	if !strings.Contains(out.String(), "login succeeded") {
		t.Fatalf("missing login status line: %q", out.String())
	}
	if !strings.Contains(out.String(), "enumerate succeeded") {
		t.Fatalf("missing enumerate status line: %q", out.String())
	}
}

func TestEngineExecute_StopsOnFailure(t *testing.T) {
	var out bytes.Buffer
	engine := NewEngine(&out, newTestLogger())

	stepErr := &AuthError{Kind: TokenExchangeFailed}
	writeCalled := false
	steps := []Step{
		{Name: "login", Run: func(context.Context) error { return stepErr }},
		{Name: "write", Run: func(context.Context) error { writeCalled = true; return nil }},
	}

	err := engine.Execute(context.Background(), steps)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if writeCalled {
		t.Fatal("write step ran after failure")
	}
	if !strings.Contains(out.String(), "login failed") {
		t.Fatalf("missing failure status line: %q", out.String())
	}
}

func TestEngineExecute_Cancelled(t *testing.T) {
	engine := NewEngine(io.Discard, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	called := false
	steps := []Step{
		{Name: "login", Run: func(context.Context) error { cancel(); return nil }},
		{Name: "write", Run: func(context.Context) error { called = true; return nil }},
	}

	err := engine.Execute(ctx, steps)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if called {
		t.Fatal("write step ran after cancellation")
	}
}

func TestEngineExecute_NoSteps(t *testing.T) {
	engine := NewEngine(io.Discard, nil)
	if err := engine.Execute(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty step list")
	}
}

func TestEngineWarn(t *testing.T) {
	var out bytes.Buffer
	engine := NewEngine(&out, nil)
	engine.Warn("default profile missing")

	if !strings.Contains(out.String(), "default profile missing") {
		t.Fatalf("warning not printed: %q", out.String())
	}
}
