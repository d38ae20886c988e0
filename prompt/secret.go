// Package prompt implements the secure prompt channel: a TTY-bound
// interactive prompter that reads secrets with echo disabled, honours a
// timeout and ^U line-kill, and guarantees that every buffered secret byte
// is overwritten with zeros before its memory is released.
package prompt

// SecretBuffer is a growable byte buffer for password material. The buffer
// manages its own growth so that every retired backing array is zeroised
// before it is abandoned to the collector; plain append() would leak old
// copies. Buffers must not be copied; whoever holds one owns it.
type SecretBuffer struct {
	buf []byte
}

// NewSecretBuffer returns an empty secret buffer.
func NewSecretBuffer() *SecretBuffer {
	return &SecretBuffer{}
}

// Len returns the number of secret bytes held.
func (b *SecretBuffer) Len() int {
	return len(b.buf)
}

// Bytes exposes the current contents. The slice aliases the buffer: it is
// only valid until the next mutation, and callers must not retain it.
func (b *SecretBuffer) Bytes() []byte {
	return b.buf
}

// grow ensures capacity for n more bytes, zeroising any retired array.
func (b *SecretBuffer) grow(n int) {
	if len(b.buf)+n <= cap(b.buf) {
		return
	}
	newCap := cap(b.buf)*2 + n
	next := make([]byte, len(b.buf), newCap)
	copy(next, b.buf)
	zero(b.buf[:cap(b.buf)])
	b.buf = next
}

// Append adds bytes to the buffer.
func (b *SecretBuffer) Append(p []byte) {
	b.grow(len(p))
	b.buf = append(b.buf, p...)
}

// Reset zeroises and empties the buffer, keeping its backing array.
func (b *SecretBuffer) Reset() {
	zero(b.buf[:cap(b.buf)])
	b.buf = b.buf[:0]
}

// Truncate drops bytes beyond n, zeroising the dropped tail.
func (b *SecretBuffer) Truncate(n int) {
	if n >= len(b.buf) {
		return
	}
	zero(b.buf[n:len(b.buf)])
	b.buf = b.buf[:n]
}

// Close zeroises the whole backing array and releases it. The buffer is
// empty and reusable afterwards.
func (b *SecretBuffer) Close() {
	zero(b.buf[:cap(b.buf)])
	b.buf = nil
}

// TakeCString returns a NUL-terminated copy of the contents and zeroises the
// buffer's own backing array: the buffer is left empty and owns nothing, and
// the returned slice is the only live copy of the secret. This is the single
// point where secret bytes leave the buffer's custody (the authentication
// stack frees the returned slice's memory, conceptually). Every path that
// does not reach this transfer must Close instead.
func (b *SecretBuffer) TakeCString() []byte {
	out := make([]byte, b.Len()+1)
	copy(out, b.buf)
	out[len(out)-1] = 0
	zero(b.buf[:cap(b.buf)])
	b.buf = nil
	return out
}

func zero(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
