package auth

import (
	"bufio"
	"bytes"
	"os"
)

// shadowPath is the system shadow database. Reading it requires the root
// effective identity, which the pipeline holds during authentication.
const shadowPath = "/etc/shadow"

// NewShadowStack returns a Stack that verifies passwords in-process against
// the system shadow database. It backs deployments where the host
// authentication stack delegates hash comparison instead of doing it itself.
func NewShadowStack() *VerifierStack {
	return NewShadowStackFromPath(shadowPath)
}

// NewShadowStackFromPath is NewShadowStack with the database path exposed.
func NewShadowStackFromPath(path string) *VerifierStack {
	return &VerifierStack{
		LookupHash: func(user string) ([]byte, bool) {
			return lookupShadowHash(path, user)
		},
	}
}

// lookupShadowHash finds the user's hash field. Locked and malformed
// entries are returned as-is: the verifier treats an unknown prefix as an
// impossible match, which is exactly the semantics a "!" or "*" field needs.
func lookupShadowHash(path, user string) ([]byte, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		name, rest, ok := bytes.Cut(line, []byte(":"))
		if !ok || string(name) != user {
			continue
		}
		hash, _, _ := bytes.Cut(rest, []byte(":"))
		out := make([]byte, len(hash))
		copy(out, hash)
		return out, true
	}
	return nil, false
}
