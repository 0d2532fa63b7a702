// Package watcher waits for My Passport drives to be plugged in and hands
// them to an unlock callback.
package watcher

import (
	"context"
	"path/filepath"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/drei/wdpass/internal/device"
)

// diskNode matches whole-disk device names (sdb), not partitions (sdb1).
var diskNode = regexp.MustCompile(`^sd[a-z]+$`)

// Watcher reacts to new block device nodes under /dev.
type Watcher struct {
	// DevDir is the directory watched for device nodes. Defaults to /dev.
	DevDir string
	// Settle is how long to wait after a node appears before probing it;
	// the kernel needs a moment to finish device setup.
	Settle time.Duration
	// Discover lists candidate drives. Defaults to device.Discover.
	Discover func() ([]device.Info, error)
	// OnDevice is called for every candidate drive that appears.
	OnDevice func(ctx context.Context, info device.Info) error
}

// Run blocks watching for hotplug events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	devDir := w.DevDir
	if devDir == "" {
		devDir = "/dev"
	}
	discover := w.Discover
	if discover == nil {
		discover = device.Discover
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fw.Close() }()
	if err := fw.Add(devDir); err != nil {
		return err
	}
	log.Info("watching for My Passport devices", "dir", devDir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "err", err)
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(ev.Name)
			if !diskNode.MatchString(name) {
				continue
			}
			log.Debug("block device appeared", "node", ev.Name)
			if !sleepCtx(ctx, w.Settle) {
				return ctx.Err()
			}
			w.probe(ctx, discover, name)
		}
	}
}

// probe matches the new node against discovered drives and fires OnDevice.
func (w *Watcher) probe(ctx context.Context, discover func() ([]device.Info, error), name string) {
	found, err := discover()
	if err != nil {
		log.Warn("discovery failed", "err", err)
		return
	}
	for _, info := range found {
		if info.Name != name {
			continue
		}
		if err := w.OnDevice(ctx, info); err != nil {
			log.Warn("device handling failed", "device", info.Path, "err", err)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
