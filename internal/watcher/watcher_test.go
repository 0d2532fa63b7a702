package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/drei/wdpass/internal/device"
)

func TestDiskNodePattern(t *testing.T) {
	matches := []string{"sda", "sdb", "sdaa"}
	for _, m := range matches {
		if !diskNode.MatchString(m) {
			t.Fatalf("expected %q to match", m)
		}
	}
	nonMatches := []string{"sdb1", "sda12", "nvme0n1", "loop0", "sr0", "sd"}
	for _, m := range nonMatches {
		if diskNode.MatchString(m) {
			t.Fatalf("expected %q not to match", m)
		}
	}
}

func TestRunFiresOnDeviceForNewDisk(t *testing.T) {
	dev := t.TempDir()

	handled := make(chan device.Info, 1)
	w := &Watcher{
		DevDir: dev,
		Settle: 10 * time.Millisecond,
		Discover: func() ([]device.Info, error) {
			return []device.Info{{Path: filepath.Join(dev, "sdb"), Name: "sdb", Model: "My Passport"}}, nil
		},
		OnDevice: func(_ context.Context, info device.Info) error {
			handled <- info
			return nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register, then create the node.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dev, "sdb"), nil, 0o600); err != nil {
		t.Fatalf("create node: %v", err)
	}

	select {
	case info := <-handled:
		if info.Name != "sdb" {
			t.Fatalf("unexpected device handled: %+v", info)
		}
	case <-ctx.Done():
		t.Fatal("OnDevice was not called")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("unexpected run result: %v", err)
	}
}

func TestRunIgnoresPartitionsAndOtherNodes(t *testing.T) {
	dev := t.TempDir()

	called := make(chan struct{}, 1)
	w := &Watcher{
		DevDir: dev,
		Discover: func() ([]device.Info, error) {
			called <- struct{}{}
			return nil, nil
		},
		OnDevice: func(_ context.Context, _ device.Info) error { return nil },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	for _, name := range []string{"sdb1", "loop7", "ttyUSB0"} {
		if err := os.WriteFile(filepath.Join(dev, name), nil, 0o600); err != nil {
			t.Fatalf("create node: %v", err)
		}
	}

	select {
	case <-called:
		t.Fatal("discovery ran for a non-disk node")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	<-done
}
