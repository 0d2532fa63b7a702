package device

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// fixture builds a fake sysfs/dev tree with one or more passport-looking
// drives and redirects the package roots at it.
func fixture(t *testing.T, names map[string]string) string {
	t.Helper()
	root := t.TempDir()
	block := filepath.Join(root, "block")
	hosts := filepath.Join(root, "scsi_host")
	dev := filepath.Join(root, "dev")
	for _, d := range []string{block, hosts, dev} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}

	host := 23
	for name, model := range names {
		target := filepath.Join(root, "devices", "host"+strconv.Itoa(host), "0:0:0:0")
		if err := os.MkdirAll(target, 0o755); err != nil {
			t.Fatalf("mkdir target: %v", err)
		}
		if err := os.WriteFile(filepath.Join(target, "model"), []byte(model+"\n"), 0o644); err != nil {
			t.Fatalf("write model: %v", err)
		}
		if err := os.WriteFile(filepath.Join(target, "vendor"), []byte("WD      \n"), 0o644); err != nil {
			t.Fatalf("write vendor: %v", err)
		}
		blockDir := filepath.Join(block, name)
		if err := os.MkdirAll(blockDir, 0o755); err != nil {
			t.Fatalf("mkdir block: %v", err)
		}
		if err := os.Symlink(target, filepath.Join(blockDir, "device")); err != nil {
			t.Fatalf("symlink device: %v", err)
		}
		if err := os.MkdirAll(filepath.Join(hosts, "host"+strconv.Itoa(host)), 0o755); err != nil {
			t.Fatalf("mkdir host: %v", err)
		}
		host++
	}

	oldBlock, oldHosts, oldDev := sysBlock, sysScsiHost, devRoot
	sysBlock, sysScsiHost, devRoot = block, hosts, dev
	t.Cleanup(func() { sysBlock, sysScsiHost, devRoot = oldBlock, oldHosts, oldDev })
	return root
}

func TestDiscoverFindsPassport(t *testing.T) {
	fixture(t, map[string]string{"sdb": "My Passport 0820"})

	found, err := Discover()
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 device, got %d", len(found))
	}
	info := found[0]
	if info.Name != "sdb" {
		t.Fatalf("expected sdb, got %s", info.Name)
	}
	if info.Host != "23" {
		t.Fatalf("expected host 23, got %q", info.Host)
	}
	if info.Vendor != "WD" {
		t.Fatalf("expected trimmed vendor WD, got %q", info.Vendor)
	}
	if info.Model != "My Passport 0820" {
		t.Fatalf("unexpected model %q", info.Model)
	}
}

func TestDiscoverSkipsOtherDisks(t *testing.T) {
	fixture(t, map[string]string{"sda": "Samsung SSD 870"})

	found, err := Discover()
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected no devices, got %d", len(found))
	}
}

func TestPickRequiresSingleCandidate(t *testing.T) {
	fixture(t, map[string]string{
		"sdb": "My Passport 0820",
		"sdc": "My Passport 25E2",
	})

	if _, err := Pick(""); err != ErrMultipleDevices {
		t.Fatalf("expected ErrMultipleDevices, got %v", err)
	}
}

func TestPickNoDevice(t *testing.T) {
	fixture(t, nil)

	if _, err := Pick(""); err != ErrNoDevice {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
}

func TestPickExplicitWins(t *testing.T) {
	fixture(t, map[string]string{
		"sdb": "My Passport 0820",
		"sdc": "My Passport 25E2",
	})

	info, err := Pick(filepath.Join(devRoot, "sdc"))
	if err != nil {
		t.Fatalf("Pick: %v", err)
	}
	if info.Name != "sdc" {
		t.Fatalf("expected sdc, got %s", info.Name)
	}
	if info.Model != "My Passport 25E2" {
		t.Fatalf("unexpected model %q", info.Model)
	}
}

func TestRescanWritesSysfsTriggers(t *testing.T) {
	fixture(t, map[string]string{"sdb": "My Passport 0820"})

	found, err := Discover()
	if err != nil || len(found) != 1 {
		t.Fatalf("Discover: %v (%d found)", err, len(found))
	}
	// The fixture target dir stands in for the device's sysfs node.
	deletePath := filepath.Join(sysBlock, "sdb", "device", "delete")
	if err := os.WriteFile(deletePath, nil, 0o644); err != nil {
		t.Fatalf("seed delete file: %v", err)
	}
	scanPath := filepath.Join(sysScsiHost, "host23", "scan")
	if err := os.WriteFile(scanPath, nil, 0o644); err != nil {
		t.Fatalf("seed scan file: %v", err)
	}

	if err := Rescan(found[0]); err != nil {
		t.Fatalf("Rescan: %v", err)
	}

	b, err := os.ReadFile(deletePath)
	if err != nil {
		t.Fatalf("read delete trigger: %v", err)
	}
	if string(b) != "1\n" {
		t.Fatalf("expected delete trigger '1', got %q", string(b))
	}
	scan, err := os.ReadFile(scanPath)
	if err != nil {
		t.Fatalf("read scan trigger: %v", err)
	}
	if string(scan) != "- - -\n" {
		t.Fatalf("expected wildcard scan, got %q", string(scan))
	}
}

func TestRescanRequiresHost(t *testing.T) {
	if err := Rescan(Info{Path: "/dev/sdz", Name: "sdz"}); err == nil {
		t.Fatal("expected error for unknown host")
	}
}
