package prompt

import (
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"pezzo-go/errors"
)

// Channel is one elevation attempt's interactive connection to the invoker's
// controlling terminal. The read and write sides are opened separately so
// that neither is shared with the process's standard streams, which an
// attacker controls. A Channel exclusively owns both descriptors.
type Channel struct {
	in   *os.File
	out  *os.File
	name string
	bell bool
	// timeout is the per-read budget in seconds; 0 means wait forever.
	timeout uint32
	// saved is the input termios observed at construction; Close restores
	// it no matter what happened in between.
	saved  unix.Termios
	closed bool
}

// Open connects to the controlling terminal at ttyPath. It refuses when the
// path cannot be opened for both reading and writing or when either
// descriptor is not actually a terminal: falling back to stdin would let an
// attacker feed the prompt.
func Open(ttyPath, invokerName string, bell bool, timeoutSeconds uint32) (*Channel, error) {
	in, err := os.OpenFile(ttyPath, os.O_RDONLY|syscall.O_NOCTTY|syscall.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindTtyMissing, "open tty")
	}
	out, err := os.OpenFile(ttyPath, os.O_WRONLY|syscall.O_NOCTTY|syscall.O_CLOEXEC, 0)
	if err != nil {
		in.Close()
		return nil, errors.Wrap(err, errors.KindTtyMissing, "open tty")
	}

	if !term.IsTerminal(int(in.Fd())) || !term.IsTerminal(int(out.Fd())) {
		in.Close()
		out.Close()
		return nil, errors.ErrTtyMissing
	}

	state, err := unix.IoctlGetTermios(int(in.Fd()), unix.TCGETS)
	if err != nil {
		in.Close()
		out.Close()
		return nil, errors.Wrap(err, errors.KindTtyMissing, "tcgetattr")
	}

	return &Channel{
		in:      in,
		out:     out,
		name:    invokerName,
		bell:    bell,
		timeout: timeoutSeconds,
		saved:   *state,
	}, nil
}

// InvokerName returns the display name used in the branded prompt.
func (c *Channel) InvokerName() string {
	return c.name
}

// SetBell overrides the bell setting (the -B flag).
func (c *Channel) SetBell(bell bool) {
	c.bell = bell
}

// SetTimeout overrides the per-read budget in seconds.
func (c *Channel) SetTimeout(seconds uint32) {
	c.timeout = seconds
}

// EmitPrompt writes a prompt to the terminal: LF becomes CRLF, a trailing
// space is guaranteed, and the bell rings when configured.
func (c *Channel) EmitPrompt(text string) error {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for _, line := range lines[:len(lines)-1] {
		if err := c.write(line + "\r\n"); err != nil {
			return err
		}
	}
	if last := lines[len(lines)-1]; last != "" {
		if !strings.HasSuffix(last, " ") {
			last += " "
		}
		if err := c.write(last); err != nil {
			return err
		}
	}
	return c.ringBell()
}

// EmitPasswordPrompt writes the program's branded password prompt in place
// of whatever the authentication stack asked for.
func (c *Channel) EmitPasswordPrompt() error {
	if err := c.write("[pezzo] Password for " + c.name + ": "); err != nil {
		return err
	}
	return c.ringBell()
}

// WriteMessage writes an informational or error message, one CRLF-terminated
// line per input line.
func (c *Channel) WriteMessage(text string) error {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		if err := c.write(line + "\r\n"); err != nil {
			return err
		}
	}
	return nil
}

func (c *Channel) ringBell() error {
	if !c.bell {
		return nil
	}
	return c.write("\x07")
}

func (c *Channel) write(s string) error {
	if _, err := c.out.WriteString(s); err != nil {
		return errors.Wrap(err, errors.KindPromptCancelled, "tty write")
	}
	return nil
}

// ReadLine reads one line from the terminal under the restrictive termios
// state, honouring the timeout and the feed-loop semantics (^U line kill,
// NUL abort, CR absorption). Input already queued in the kernel before the
// call is fed through the same normaliser first. The caller owns the
// returned buffer.
func (c *Channel) ReadLine(echo bool) (*SecretBuffer, error) {
	fd := int(c.in.Fd())

	tg, err := pushLineTermios(fd, echo)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindPromptCancelled, "tcsetattr")
	}
	defer tg.restore()

	ng, err := pushNonblock(fd)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindPromptCancelled, "fcntl")
	}
	defer ng.restore()

	acc := NewSecretBuffer()
	chunk := make([]byte, 256)
	defer zero(chunk)

	// First pass: whatever was typed ahead of the prompt counts as input for
	// this turn and may already complete the line.
	done, eof, err := c.readAvailable(fd, acc, chunk)
	if err != nil {
		acc.Close()
		_ = c.write("\n")
		return nil, err
	}
	if eof {
		_ = c.write("\n")
		return acc, nil
	}
	if done {
		return acc, nil
	}

	deadline := time.Time{}
	if c.timeout > 0 {
		deadline = time.Now().Add(time.Duration(c.timeout) * time.Second)
	}

	for {
		if err := c.pollIn(fd, deadline); err != nil {
			acc.Close()
			_ = c.write("\n")
			if errors.Is(err, errors.ErrPromptTimedOut) {
				_ = c.write("pezzo: timed out reading password\n")
			}
			return nil, err
		}

		done, eof, err := c.readAvailable(fd, acc, chunk)
		if err != nil {
			acc.Close()
			_ = c.write("\n")
			return nil, err
		}
		if eof {
			// No newline arrived; echo one so the cursor moves on.
			_ = c.write("\n")
			return acc, nil
		}
		if done {
			return acc, nil
		}
	}
}

// readAvailable drains the kernel buffer into the accumulator until the read
// would block, the line completes, or the stream ends.
func (c *Channel) readAvailable(fd int, acc *SecretBuffer, chunk []byte) (done, eof bool, err error) {
	for {
		n, rerr := unix.Read(fd, chunk)
		if rerr == unix.EINTR {
			continue
		}
		if rerr == unix.EAGAIN {
			return false, false, nil
		}
		if rerr != nil {
			return false, false, errors.Wrap(rerr, errors.KindPromptCancelled, "tty read")
		}
		if n == 0 {
			return false, true, nil
		}

		_, lineDone, ferr := Feed(acc, chunk[:n])
		zero(chunk[:n])
		if ferr != nil {
			return false, false, ferr
		}
		if lineDone {
			return true, false, nil
		}
	}
}

// pollIn waits until the input fd is readable or the deadline passes.
func (c *Channel) pollIn(fd int, deadline time.Time) error {
	for {
		timeout := -1
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return errors.ErrPromptTimedOut
			}
			timeout = int(remaining.Milliseconds())
			if timeout == 0 {
				timeout = 1
			}
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, timeout)
		switch {
		case err == unix.EINTR || err == unix.EAGAIN:
			continue
		case err != nil:
			return errors.Wrap(err, errors.KindPromptCancelled, "poll")
		case n == 0:
			return errors.ErrPromptTimedOut
		default:
			return nil
		}
	}
}

// Close drains and zeroises anything still queued on the input side,
// restores the construction-time termios, and closes both descriptors. A
// cancelled prompt must not leak typed bytes into the invoker's shell.
func (c *Channel) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	fd := int(c.in.Fd())
	if ng, err := pushNonblock(fd); err == nil {
		chunk := make([]byte, 256)
		for {
			n, rerr := unix.Read(fd, chunk)
			if rerr == unix.EINTR {
				continue
			}
			if rerr != nil || n == 0 {
				break
			}
			zero(chunk[:n])
		}
		zero(chunk)
		ng.restore()
	}

	_ = unix.IoctlSetTermios(fd, unix.TCSETS, &c.saved)

	errIn := c.in.Close()
	errOut := c.out.Close()
	if errIn != nil {
		return fmt.Errorf("close tty input: %w", errIn)
	}
	if errOut != nil {
		return fmt.Errorf("close tty output: %w", errOut)
	}
	return nil
}
