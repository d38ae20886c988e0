package crypt

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

// SHA-crypt ($5$ and $6$) after Drepper's specification. The two schemes
// share their structure exactly; only the digest function, its block size,
// and the output permutation differ.

const (
	shaMinRounds     = 1000
	shaMaxRounds     = 9_999_999
	shaDefaultRounds = 5000

	shaMaxSaltLen = 16
	shaMaxKeyLen  = 256
)

// ShaRounds is a validated SHA-crypt round count.
type ShaRounds uint32

// NewShaRounds validates a round count against the scheme's bounds.
func NewShaRounds(n uint32) (ShaRounds, bool) {
	if n < shaMinRounds || n > shaMaxRounds {
		return 0, false
	}
	return ShaRounds(n), true
}

// ClampShaRounds pulls an explicit round count into the scheme's bounds.
func ClampShaRounds(n uint32) ShaRounds {
	if n < shaMinRounds {
		return shaMinRounds
	}
	if n > shaMaxRounds {
		return shaMaxRounds
	}
	return ShaRounds(n)
}

var sha256Perm = [10][3]int{
	{0, 10, 20}, {21, 1, 11}, {12, 22, 2}, {3, 13, 23}, {24, 4, 14},
	{15, 25, 5}, {6, 16, 26}, {27, 7, 17}, {18, 28, 8}, {9, 19, 29},
}

var sha512Perm = [21][3]int{
	{0, 21, 42}, {22, 43, 1}, {44, 2, 23}, {3, 24, 45}, {25, 46, 4},
	{47, 5, 26}, {6, 27, 48}, {28, 49, 7}, {50, 8, 29}, {9, 30, 51},
	{31, 52, 10}, {53, 11, 32}, {12, 33, 54}, {34, 55, 13}, {56, 14, 35},
	{15, 36, 57}, {37, 58, 16}, {59, 17, 38}, {18, 39, 60}, {40, 61, 19},
	{62, 20, 41},
}

// hashMD writes n bytes of md into ctx, repeating the digest as needed.
func hashMD(ctx hash.Hash, md []byte, n int) {
	size := len(md)
	div, rem := n/size, n%size
	for i := 0; i < div; i++ {
		ctx.Write(md)
	}
	ctx.Write(md[:rem])
}

// shaCrypt runs the shared SHA-crypt core and returns the raw final digest.
func shaCrypt(newHash func() hash.Hash, rounds ShaRounds, salt, key []byte) []byte {
	md := func() []byte {
		ctx := newHash()
		ctx.Write(key)
		ctx.Write(salt)
		ctx.Write(key)
		return ctx.Sum(nil)
	}()

	md = func() []byte {
		ctx := newHash()
		ctx.Write(key)
		ctx.Write(salt)
		hashMD(ctx, md, len(key))

		for i := len(key); i != 0; i >>= 1 {
			if i&1 != 0 {
				ctx.Write(md)
			} else {
				ctx.Write(key)
			}
		}
		return ctx.Sum(nil)
	}()

	kmd := func() []byte {
		ctx := newHash()
		for i := 0; i < len(key); i++ {
			ctx.Write(key)
		}
		return ctx.Sum(nil)
	}()

	smd := func() []byte {
		ctx := newHash()
		for i := 0; i < 16+int(md[0]); i++ {
			ctx.Write(salt)
		}
		return ctx.Sum(nil)
	}()

	for i := 0; i < int(rounds); i++ {
		ctx := newHash()
		odd := i%2 != 0

		if odd {
			hashMD(ctx, kmd, len(key))
		} else {
			ctx.Write(md)
		}
		if i%3 != 0 {
			ctx.Write(smd[:len(salt)])
		}
		if i%7 != 0 {
			hashMD(ctx, kmd, len(key))
		}
		if odd {
			ctx.Write(md)
		} else {
			hashMD(ctx, kmd, len(key))
		}
		md = ctx.Sum(nil)
	}

	return md
}

// sha256Crypt computes the 43-character digest portion of a $5$ hash.
func sha256Crypt(rounds ShaRounds, salt, key []byte) [43]byte {
	md := shaCrypt(sha256.New, rounds, salt, key)

	var res [43]byte
	buf := res[:]
	for _, perm := range sha256Perm {
		buf = to64(buf, uint(md[perm[0]])<<16|uint(md[perm[1]])<<8|uint(md[perm[2]]), 4)
	}
	to64(buf, uint(md[31])<<8|uint(md[30]), 3)
	return res
}

// sha512Crypt computes the 86-character digest portion of a $6$ hash.
func sha512Crypt(rounds ShaRounds, salt, key []byte) [86]byte {
	md := shaCrypt(sha512.New, rounds, salt, key)

	var res [86]byte
	buf := res[:]
	for _, perm := range sha512Perm {
		buf = to64(buf, uint(md[perm[0]])<<16|uint(md[perm[1]])<<8|uint(md[perm[2]]), 4)
	}
	to64(buf, uint(md[63]), 2)
	return res
}
