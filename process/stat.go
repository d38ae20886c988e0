package process

import (
	"bytes"
	"fmt"
	"strconv"
)

// parseStat extracts the session id and tty_nr from /proc/<pid>/stat
// content. The comm field is parenthesised and may itself contain spaces or
// parentheses, so fields are counted from the last closing parenthesis.
func parseStat(buf []byte) (session uint32, ttyNr uint32, err error) {
	end := bytes.LastIndexByte(buf, ')')
	if end < 0 || end+2 > len(buf) {
		return 0, 0, fmt.Errorf("malformed stat: no comm field")
	}

	fields := bytes.Fields(buf[end+1:])
	// After comm: state ppid pgrp session tty_nr ...
	if len(fields) < 5 {
		return 0, 0, fmt.Errorf("malformed stat: %d fields after comm", len(fields))
	}

	s, err := strconv.ParseUint(string(fields[3]), 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed session field: %w", err)
	}
	// tty_nr is documented as signed but encodes a dev_t; go through the
	// signed form to tolerate both renderings.
	t, err := strconv.ParseInt(string(fields[4]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed tty_nr field: %w", err)
	}

	return uint32(s), uint32(t), nil
}
