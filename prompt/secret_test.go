package prompt

import (
	"bytes"
	"testing"
)

func TestSecretBuffer_AppendAndBytes(t *testing.T) {
	b := NewSecretBuffer()
	defer b.Close()

	b.Append([]byte("hun"))
	b.Append([]byte("ter2"))

	if got := string(b.Bytes()); got != "hunter2" {
		t.Errorf("Bytes() = %q, want %q", got, "hunter2")
	}
	if b.Len() != 7 {
		t.Errorf("Len() = %d, want 7", b.Len())
	}
}

func TestSecretBuffer_CloseZeroises(t *testing.T) {
	b := NewSecretBuffer()
	b.Append([]byte("topsecret"))

	// Capture the backing array before Close releases it.
	backing := b.Bytes()[:cap(b.Bytes())]
	b.Close()

	for i, c := range backing {
		if c != 0 {
			t.Fatalf("backing[%d] = %#x after Close, want 0", i, c)
		}
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d after Close, want 0", b.Len())
	}
}

func TestSecretBuffer_ResetZeroises(t *testing.T) {
	b := NewSecretBuffer()
	defer b.Close()
	b.Append([]byte("wrong password"))

	backing := b.Bytes()[:cap(b.Bytes())]
	b.Reset()

	for i, c := range backing {
		if c != 0 {
			t.Fatalf("backing[%d] = %#x after Reset, want 0", i, c)
		}
	}

	// The buffer stays usable.
	b.Append([]byte("right"))
	if got := string(b.Bytes()); got != "right" {
		t.Errorf("Bytes() = %q after Reset+Append, want %q", got, "right")
	}
}

func TestSecretBuffer_TruncateZeroisesTail(t *testing.T) {
	b := NewSecretBuffer()
	defer b.Close()
	b.Append([]byte("abcdef"))

	backing := b.Bytes()[:cap(b.Bytes())]
	b.Truncate(3)

	if got := string(b.Bytes()); got != "abc" {
		t.Errorf("Bytes() = %q, want %q", got, "abc")
	}
	for i := 3; i < 6; i++ {
		if backing[i] != 0 {
			t.Errorf("backing[%d] = %#x after Truncate, want 0", i, backing[i])
		}
	}
}

func TestSecretBuffer_GrowZeroisesOldArray(t *testing.T) {
	b := NewSecretBuffer()
	defer b.Close()
	b.Append([]byte("seed"))

	old := b.Bytes()[:cap(b.Bytes())]
	// Force at least one reallocation.
	for i := 0; i < 64; i++ {
		b.Append([]byte("xxxxxxxx"))
	}

	if &old[0] == &b.Bytes()[0] {
		t.Skip("buffer did not reallocate")
	}
	for i, c := range old {
		if c != 0 {
			t.Fatalf("old backing[%d] = %#x after growth, want 0", i, c)
		}
	}
}

func TestSecretBuffer_TakeCString(t *testing.T) {
	b := NewSecretBuffer()
	b.Append([]byte("hunter2"))

	backing := b.Bytes()[:cap(b.Bytes())]
	out := b.TakeCString()

	if !bytes.Equal(out, []byte("hunter2\x00")) {
		t.Errorf("TakeCString() = %q, want %q", out, "hunter2\x00")
	}
	for i, c := range backing {
		if c != 0 {
			t.Fatalf("backing[%d] = %#x after TakeCString, want 0", i, c)
		}
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d after TakeCString, want 0", b.Len())
	}
}
