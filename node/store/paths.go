package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// NetworkDir returns the on-disk directory for one network under datadir:
//
//	datadir/networks/<network>/
func NetworkDir(datadir string, network string) string {
	return filepath.Join(datadir, "networks", network)
}

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

func checkOpenArgs(datadir, network string) error {
	if datadir == "" {
		return fmt.Errorf("datadir required")
	}
	if network == "" {
		return fmt.Errorf("network required")
	}
	if filepath.Base(network) != network || network == "." || network == ".." {
		return fmt.Errorf("invalid network name %q", network)
	}
	return nil
}
