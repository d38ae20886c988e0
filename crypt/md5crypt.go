package crypt

import "crypto/md5"

// MD5-crypt ($1$): the classic FreeBSD scheme. A fixed 1000-round stretch
// over alternating key/salt/digest material, finished with the scheme's
// peculiar byte permutation and crypt-base64 encoding.

const (
	md5MaxSaltLen = 8
	md5MaxKeyLen  = 3000
	md5Rounds     = 1000
)

// md5Perm drives the output permutation: each triple picks digest bytes that
// form one 24-bit group of the encoding.
var md5Perm = [5][3]int{
	{0, 6, 12}, {1, 7, 13}, {2, 8, 14}, {3, 9, 15}, {4, 10, 5},
}

// md5Crypt computes the 22-character digest portion of an MD5-crypt hash.
func md5Crypt(salt, key []byte) [22]byte {
	alt := func() [md5.Size]byte {
		ctx := md5.New()
		ctx.Write(key)
		ctx.Write(salt)
		ctx.Write(key)
		var d [md5.Size]byte
		ctx.Sum(d[:0])
		return d
	}()

	md := func() [md5.Size]byte {
		ctx := md5.New()
		ctx.Write(key)
		ctx.Write([]byte("$1$"))
		ctx.Write(salt)
		div, rem := len(key)/md5.Size, len(key)%md5.Size
		for i := 0; i < div; i++ {
			ctx.Write(alt[:])
		}
		ctx.Write(alt[:rem])

		zero := []byte{0}
		for i := len(key); i != 0; i >>= 1 {
			if i&1 != 0 {
				ctx.Write(zero)
			} else {
				ctx.Write(key[:1])
			}
		}

		var d [md5.Size]byte
		ctx.Sum(d[:0])
		return d
	}()

	for i := 0; i < md5Rounds; i++ {
		ctx := md5.New()
		odd := i%2 != 0

		if odd {
			ctx.Write(key)
		} else {
			ctx.Write(md[:])
		}
		if i%3 != 0 {
			ctx.Write(salt)
		}
		if i%7 != 0 {
			ctx.Write(key)
		}
		if odd {
			ctx.Write(md[:])
		} else {
			ctx.Write(key)
		}

		ctx.Sum(md[:0])
	}

	var res [22]byte
	buf := res[:]
	for _, perm := range md5Perm {
		buf = to64(buf, uint(md[perm[0]])<<16|uint(md[perm[1]])<<8|uint(md[perm[2]]), 4)
	}
	to64(buf, uint(md[11]), 2)
	return res
}
