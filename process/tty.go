package process

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Character-device majors the controlling terminal can plausibly live on.
const (
	ttyMajor    = 4
	ptsMajor    = 136
	ttyAcmMajor = 166
	ttyUsbMajor = 188

	// Consoles share major 4 with serial lines: minors below nrConsoles are
	// /dev/ttyN, the rest /dev/ttySN.
	nrConsoles = 64
)

// guessTtyPath names the device a tty_nr most likely points at, so the
// common case avoids a /dev scan.
func guessTtyPath(ttyNr uint32) string {
	dev := uint64(ttyNr)
	major := unix.Major(dev)
	minor := unix.Minor(dev)

	switch major {
	case ttyMajor:
		if minor < nrConsoles {
			return fmt.Sprintf("/dev/tty%d", minor)
		}
		return fmt.Sprintf("/dev/ttyS%d", minor-nrConsoles)
	case ptsMajor:
		return fmt.Sprintf("/dev/pts/%d", minor)
	case ttyAcmMajor:
		return fmt.Sprintf("/dev/ttyACM%d", minor)
	case ttyUsbMajor:
		return fmt.Sprintf("/dev/ttyUSB%d", minor)
	default:
		return ""
	}
}

// rdevOf returns the device number when path is a character device.
func rdevOf(path string) (uint64, bool) {
	var st unix.Stat_t
	for {
		err := unix.Stat(path, &st)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, false
		}
		break
	}
	if st.Mode&unix.S_IFMT != unix.S_IFCHR {
		return 0, false
	}
	return uint64(st.Rdev), true
}

// resolveTty turns a tty_nr into the device path and its rdev. The guessed
// name is verified against the actual device number; when the guess misses,
// /dev is scanned for a matching character device.
func resolveTty(ttyNr uint32) (path string, rdev uint64, err error) {
	want := uint64(ttyNr)

	if guess := guessTtyPath(ttyNr); guess != "" {
		if dev, ok := rdevOf(guess); ok && dev == want {
			return guess, dev, nil
		}
	}

	found := ""
	walkErr := filepath.WalkDir("/dev", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if found != "" {
			return fs.SkipAll
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if dev, ok := rdevOf(p); ok && dev == want {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return "", 0, walkErr
	}
	if found == "" {
		return "", 0, os.ErrNotExist
	}
	dev, _ := rdevOf(found)
	return found, dev, nil
}
