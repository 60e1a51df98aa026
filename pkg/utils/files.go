package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gochip8/pkg/chip8"
)

// ResolveROM turns a user-supplied ROM path into a cleaned absolute path and
// checks that it names a regular file. Failures wrap chip8.ErrROMNotFound.
func ResolveROM(relPath string) (fullPath string, err error) {
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", chip8.ErrROMNotFound, err)
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", chip8.ErrROMNotFound, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", chip8.ErrROMNotFound, fullPath)
	}
	return fullPath, nil
}

// ScreenshotName builds a PNG file name next to the working directory from
// the ROM's base name and a timestamp, e.g. "pong-20240102-150405.png".
func ScreenshotName(romPath string, at time.Time) string {
	base := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "chip8"
	}
	return fmt.Sprintf("%s-%s.png", base, at.Format("20060102-150405"))
}
