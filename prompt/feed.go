package prompt

import (
	"bytes"

	"pezzo-go/errors"
)

// Line normaliser byte values. A NUL aborts the read, NAK (^U) kills the
// line accumulated so far, LF completes the line.
const (
	byteNul = 0x00
	byteLF  = 0x0a
	byteCR  = 0x0d
	byteNak = 0x15
)

// Feed streams one chunk of raw terminal input into the accumulator. It
// returns the number of input bytes consumed and whether a full line is now
// complete. On completion the accumulator holds the normalised line: no
// trailing CR or LF, never a NUL, CR or NAK anywhere.
//
// The rules, in input order:
//   - 0x00 aborts with ErrInvalidZeroCharacter
//   - 0x15 (NAK, the terminal's ^U) zeroises the accumulator and continues
//   - 0x0A completes the line; an immediately following 0x0D is swallowed,
//     and every 0x0D in the completed line is dropped
//   - anything else accumulates
//
// The same state machine drives both interactive reads and tests.
func Feed(acc *SecretBuffer, p []byte) (consumed int, done bool, err error) {
	skipped := 0
	for {
		pos := bytes.IndexAny(p, "\x00\n\x15")
		if pos < 0 {
			acc.Append(p)
			return skipped + len(p), false, nil
		}

		switch p[pos] {
		case byteNul:
			return skipped + pos, false, errors.ErrInvalidZeroCharacter
		case byteNak:
			acc.Reset()
			skipped += pos + 1
			p = p[pos+1:]
		case byteLF:
			acc.Append(p[:pos+1])
			n := pos + 1
			if n < len(p) && p[n] == byteCR {
				n++
			}
			normalise(acc)
			return skipped + n, true, nil
		}
	}
}

// normalise collapses the line terminator: every CR is removed in place (so
// a trailing CR LF becomes LF), then the final LF is stripped. Truncate
// zeroises the bytes freed at the tail.
func normalise(acc *SecretBuffer) {
	b := acc.Bytes()
	w := 0
	for _, c := range b {
		if c != byteCR {
			b[w] = c
			w++
		}
	}
	acc.Truncate(w)
	if w >= 1 && b[w-1] == byteLF {
		acc.Truncate(w - 1)
	}
}
