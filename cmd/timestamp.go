package cmd

import (
	"pezzo-go/cache"
	"pezzo-go/errors"
	"pezzo-go/identity"
	"pezzo-go/privilege"
	"pezzo-go/process"
)

// invokerName resolves the real user driving this invocation.
func invokerName() (string, error) {
	dir, err := identity.Load()
	if err != nil {
		return "", err
	}
	proc, err := process.Current()
	if err != nil {
		return "", err
	}
	invoker, ok := dir.UserByID(proc.UID)
	if !ok {
		return "", errors.ErrUnknownUser
	}
	return invoker.Name, nil
}

// runRemoveTimestamp implements -K: delete the invoker's cache file.
func runRemoveTimestamp() error {
	name, err := invokerName()
	if err != nil {
		return err
	}
	if err := privilege.EscalateRoot(); err != nil {
		return err
	}
	return cache.Erase(cache.DefaultBaseDir, name)
}

// runResetTimestamp implements -k without a command: drop every cached
// entry, leaving the file in place.
func runResetTimestamp() error {
	name, err := invokerName()
	if err != nil {
		return err
	}
	if err := privilege.EscalateRoot(); err != nil {
		return err
	}
	store, err := cache.Open(cache.DefaultBaseDir, name)
	if err != nil {
		return err
	}
	return store.Clear()
}
