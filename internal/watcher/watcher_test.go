package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchTriggersRunOnMarkdownChange(t *testing.T) {
	root := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, root, Options{Debounce: 20 * time.Millisecond}, nil, func(context.Context) {
			select {
			case ran <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to register the root.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(root, "note.md"), []byte("# Note\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("run not triggered by markdown write")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop on cancel")
	}
}

func TestWatchIgnoresNonMarkdown(t *testing.T) {
	root := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan struct{}, 1)
	go Watch(ctx, root, Options{Debounce: 20 * time.Millisecond}, nil, func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	})

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("text"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-ran:
		t.Fatal("run triggered by non-markdown write")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchMissingRoot(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{}, nil, func(context.Context) {})
	if err == nil {
		t.Fatal("Watch on missing root succeeded, want error")
	}
}
