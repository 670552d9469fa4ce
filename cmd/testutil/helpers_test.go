package testutil

import (
	"fmt"
	"os"
	"testing"
)

func TestNewTestEnv(t *testing.T) {
	env := NewTestEnv(t)
	defer env.Cleanup()

	if env.TmpDir == "" {
		t.Fatal("TmpDir should not be empty")
	}
	if _, err := os.Stat(env.TmpDir); err != nil {
		t.Fatalf("TmpDir should exist: %v", err)
	}
}

func TestWithEnv(t *testing.T) {
	NewTestEnv(t).WithEnv("SSLCHECK_TESTUTIL", "value")
	if got := os.Getenv("SSLCHECK_TESTUTIL"); got != "value" {
		t.Fatalf("expected env to be set, got %q", got)
	}
}

func TestCreateAndReadFile(t *testing.T) {
	env := NewTestEnv(t)

	env.CreateFile("nested/file.txt", []byte("content"))
	if !env.FileExists("nested/file.txt") {
		t.Fatal("expected file to exist")
	}
	if got := string(env.ReadFile("nested/file.txt")); got != "content" {
		t.Fatalf("unexpected content %q", got)
	}
	if env.FileExists("missing.txt") {
		t.Fatal("missing file reported as existing")
	}
}

func TestCleanupOrder(t *testing.T) {
	env := NewTestEnv(t)

	var order []int
	env.AddCleanup(func() { order = append(order, 1) })
	env.AddCleanup(func() { order = append(order, 2) })
	env.Cleanup()

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Fatalf("expected LIFO cleanup, got %v", order)
	}
}

func TestCaptureStdout(t *testing.T) {
	out := CaptureStdout(t, func() {
		fmt.Println("hello")
	})
	if out != "hello\n" {
		t.Fatalf("unexpected output %q", out)
	}
}
