package policy

import (
	"fmt"
	"os"
	"syscall"

	"pezzo-go/errors"
)

// DefaultConfigPath is where the rule file lives. It is a compile-time
// constant (override with -ldflags "-X pezzo-go/policy.DefaultConfigPath=...").
var DefaultConfigPath = "/etc/pezzo.conf"

// CheckFilePermissions refuses files that are not owned by root or are
// writable by group or other. A trusted file that fails this check means the
// installation can no longer be trusted, so the message is blunt.
func CheckFilePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.WrapWithDetail(err, errors.KindConfig, "stat",
			fmt.Sprintf("cannot find file %q", path))
	}

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return errors.New(errors.KindInternal, "stat", "no unix stat data")
	}

	if st.Uid != 0 || info.Mode().Perm()&0o022 != 0 {
		return errors.New(errors.KindConfig, "check",
			fmt.Sprintf("wrong permissions on file %q. Your system has been compromised", path))
	}
	return nil
}

// LoadFile reads, permission-checks and parses a rule file.
func LoadFile(path string) (*RuleSet, error) {
	if err := CheckFilePermissions(path); err != nil {
		return nil, err
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindConfig, "read")
	}

	rules, err := Parse(buf)
	if err != nil {
		return nil, errors.WrapWithDetail(err, errors.KindConfig, "parse",
			fmt.Sprintf("cannot parse %q", path))
	}
	return rules, nil
}
