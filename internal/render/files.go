package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/playmatatu/billiards/internal/billiards"
)

const (
	framePrefix = "table-"
	frameSuffix = ".svg"
)

// FrameFileName is the file a shot's i-th frame is written to.
func FrameFileName(i int) string {
	return fmt.Sprintf("%s%d%s", framePrefix, i, frameSuffix)
}

// PurgeFrames removes every rendered frame file in dir.
func PurgeFrames(dir string) error {
	names, err := FrameFiles(dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

// WriteFrames replaces the rendered frame files in dir with one file per
// table, numbered from zero. It returns the file names in frame order.
func WriteFrames(dir string, frames []billiards.Table) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	if err := PurgeFrames(dir); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(frames))
	for i, t := range frames {
		name := FrameFileName(i)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(SVG(t)), 0o644); err != nil {
			return names, fmt.Errorf("write %s: %w", name, err)
		}
		names = append(names, name)
	}
	return names, nil
}

// FrameFiles lists the rendered frame files in dir in frame order.
func FrameFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	type numbered struct {
		name string
		n    int
	}
	var files []numbered
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, framePrefix) || !strings.HasSuffix(name, frameSuffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, framePrefix), frameSuffix))
		if err != nil {
			n = -1
		}
		files = append(files, numbered{name: name, n: n})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].n != files[j].n {
			return files[i].n < files[j].n
		}
		return files[i].name < files[j].name
	})

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	return names, nil
}
