// Package crypt verifies candidate secrets against traditional Unix crypt
// hash strings.
//
// Four schemes are supported, dispatched on the hash prefix: MD5-crypt
// ($1$), Blowfish-crypt in its four bug-compatibility variants ($2a$, $2b$,
// $2x$, $2y$), SHA-256-crypt ($5$) and SHA-512-crypt ($6$). Hashes with any
// other prefix compare as an impossible match rather than an error. Each
// verifier is a pure function with no I/O and no state.
package crypt

import (
	"bytes"
	"crypto/subtle"
)

// Verify reports whether key hashes to exactly hash under the scheme, salt
// and cost encoded in hash. Malformed hashes and unknown schemes yield
// false, never an error.
func Verify(hash, key []byte) bool {
	ok, err := verify(hash, key)
	return err == nil && ok
}

// errMalformed is deliberately detail-free; Verify folds it into false.
type malformedError struct{}

func (malformedError) Error() string { return "malformed hash" }

var errMalformed error = malformedError{}

func verify(hash, key []byte) (bool, error) {
	rest, found := bytes.CutPrefix(hash, []byte("$"))
	if !found || len(rest) == 0 {
		return false, errMalformed
	}
	scheme := rest[0]
	rest = rest[1:]

	switch scheme {
	case '1':
		return verifyMD5(rest, key)
	case '2':
		return verifyBlowfish(rest, key)
	case '5':
		return verifySha(rest, key, shaVariant256)
	case '6':
		return verifySha(rest, key, shaVariant512)
	default:
		return false, nil
	}
}

func verifyMD5(rest, key []byte) (bool, error) {
	rest, found := bytes.CutPrefix(rest, []byte("$"))
	if !found {
		return false, errMalformed
	}
	salt, expected, found := bytes.Cut(rest, []byte("$"))
	if !found || len(salt) > md5MaxSaltLen || len(key) > md5MaxKeyLen {
		return false, errMalformed
	}
	computed := md5Crypt(salt, key)
	return ctEqual(computed[:], expected), nil
}

func verifyBlowfish(rest, key []byte) (bool, error) {
	if len(rest) == 0 {
		return false, errMalformed
	}
	var variant BlowfishVariant
	switch rest[0] {
	case 'a':
		variant = BlowfishA
	case 'b':
		variant = BlowfishB
	case 'x':
		variant = BlowfishX
	case 'y':
		variant = BlowfishY
	default:
		return false, errMalformed
	}

	rest, found := bytes.CutPrefix(rest[1:], []byte("$"))
	if !found || len(rest) < 3 {
		return false, errMalformed
	}
	r0, r1 := rest[0]-'0', rest[1]-'0'
	if r0 > 1 || r1 > 9 || rest[2] != '$' {
		return false, errMalformed
	}
	rounds, ok := NewBlowfishRounds(1 << (r0*10 + r1))
	if !ok {
		return false, errMalformed
	}

	rest = rest[3:]
	if len(rest) < 22 {
		return false, errMalformed
	}
	salt, ok := NewBlowfishSalt(rest[:22])
	if !ok {
		return false, errMalformed
	}
	// The expected tail starts at the salt's final character: its canonical
	// masked form is part of the computed output.
	expected := rest[21:]

	computed := blowfishCrypt(variant, rounds, salt, key)
	return ctEqual(computed[:], expected), nil
}

type shaVariant int

const (
	shaVariant256 shaVariant = iota
	shaVariant512
)

func verifySha(rest, key []byte, v shaVariant) (bool, error) {
	rest, found := bytes.CutPrefix(rest, []byte("$"))
	if !found {
		return false, errMalformed
	}

	rounds := ShaRounds(shaDefaultRounds)
	if r, after, ok := cutRounds(rest); ok {
		rounds = ClampShaRounds(r)
		rest = after
	}

	salt, expected, found := bytes.Cut(rest, []byte("$"))
	if !found || len(salt) > shaMaxSaltLen || len(key) > shaMaxKeyLen {
		return false, errMalformed
	}

	if v == shaVariant256 {
		computed := sha256Crypt(rounds, salt, key)
		return ctEqual(computed[:], expected), nil
	}
	computed := sha512Crypt(rounds, salt, key)
	return ctEqual(computed[:], expected), nil
}

// cutRounds consumes a leading "rounds=N$" if present.
func cutRounds(rest []byte) (uint32, []byte, bool) {
	after, found := bytes.CutPrefix(rest, []byte("rounds="))
	if !found {
		return 0, rest, false
	}
	var n uint64
	i := 0
	for i < len(after) && after[i] >= '0' && after[i] <= '9' {
		n = n*10 + uint64(after[i]-'0')
		if n > 0xffffffff {
			n = 0xffffffff
		}
		i++
	}
	if i == 0 || i >= len(after) || after[i] != '$' {
		return 0, rest, false
	}
	return uint32(n), after[i+1:], true
}

// ctEqual compares computed against stored without bailing at the first
// mismatch: the whole computed digest is scanned even when the stored value
// has the wrong length.
func ctEqual(computed, stored []byte) bool {
	if len(computed) != len(stored) {
		subtle.ConstantTimeCompare(computed, computed)
		return false
	}
	return subtle.ConstantTimeCompare(computed, stored) == 1
}
