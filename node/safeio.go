package node

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// maxInputFileBytes caps operator-supplied files (config, keystores, advice
// bundles).
const maxInputFileBytes = 1 << 20

// ReadInputFile reads an operator-supplied file by path.
func ReadInputFile(path string) ([]byte, error) {
	return readFileByPath(path)
}

func readFileByPath(path string) ([]byte, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return readFileFromDir(dir, name)
}

func readFileFromDir(dir, name string) ([]byte, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid file name: %q", name)
	}
	fsys := os.DirFS(dir)
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: not a regular file", name)
	}
	if info.Size() > maxInputFileBytes {
		return nil, fmt.Errorf("%s: %d bytes exceeds %d", name, info.Size(), maxInputFileBytes)
	}
	return fs.ReadFile(fsys, name)
}
