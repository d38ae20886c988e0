// Package identity provides the read-only user and group directory the
// pipeline resolves names and ids against.
//
// The directory is a snapshot: it is built once at startup from the system
// databases and answers every later query from memory, so a request is
// matched against one consistent view.
package identity

import (
	"io"
	"os"

	"github.com/moby/sys/user"

	"pezzo-go/errors"
)

// User is one passwd entry.
type User struct {
	Name string
	UID  uint32
	// GID is the primary group id.
	GID  uint32
	Home string
}

// Group is one group entry.
type Group struct {
	Name string
	GID  uint32
}

// Directory answers identity lookups from one snapshot.
type Directory interface {
	UserByName(name string) (*User, bool)
	UserByID(uid uint32) (*User, bool)
	GroupByName(name string) (*Group, bool)
	GroupByID(gid uint32) (*Group, bool)
	// SupplementaryGroups returns the groups that list the user as a
	// member, not including the user's primary group.
	SupplementaryGroups(username string) []Group
}

const (
	passwdPath = "/etc/passwd"
	groupPath  = "/etc/group"
)

// directory is the file-backed snapshot implementation.
type directory struct {
	usersByName  map[string]*User
	usersByID    map[uint32]*User
	groupsByName map[string]*Group
	groupsByID   map[uint32]*Group
	members      map[string][]Group
}

// Load builds the directory from /etc/passwd and /etc/group.
func Load() (Directory, error) {
	passwd, err := os.Open(passwdPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "open passwd")
	}
	defer passwd.Close()

	group, err := os.Open(groupPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "open group")
	}
	defer group.Close()

	return LoadFromReaders(passwd, group)
}

// LoadFromReaders builds the directory from passwd- and group-format
// streams.
func LoadFromReaders(passwd, group io.Reader) (Directory, error) {
	users, err := user.ParsePasswd(passwd)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "parse passwd")
	}
	groups, err := user.ParseGroup(group)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInternal, "parse group")
	}

	d := &directory{
		usersByName:  make(map[string]*User, len(users)),
		usersByID:    make(map[uint32]*User, len(users)),
		groupsByName: make(map[string]*Group, len(groups)),
		groupsByID:   make(map[uint32]*Group, len(groups)),
		members:      make(map[string][]Group),
	}

	for _, u := range users {
		entry := &User{
			Name: u.Name,
			UID:  uint32(u.Uid),
			GID:  uint32(u.Gid),
			Home: u.Home,
		}
		if _, ok := d.usersByName[entry.Name]; !ok {
			d.usersByName[entry.Name] = entry
		}
		if _, ok := d.usersByID[entry.UID]; !ok {
			d.usersByID[entry.UID] = entry
		}
	}

	for _, g := range groups {
		entry := &Group{Name: g.Name, GID: uint32(g.Gid)}
		if _, ok := d.groupsByName[entry.Name]; !ok {
			d.groupsByName[entry.Name] = entry
		}
		if _, ok := d.groupsByID[entry.GID]; !ok {
			d.groupsByID[entry.GID] = entry
		}
		for _, member := range g.List {
			d.members[member] = append(d.members[member], *entry)
		}
	}

	return d, nil
}

func (d *directory) UserByName(name string) (*User, bool) {
	u, ok := d.usersByName[name]
	return u, ok
}

func (d *directory) UserByID(uid uint32) (*User, bool) {
	u, ok := d.usersByID[uid]
	return u, ok
}

func (d *directory) GroupByName(name string) (*Group, bool) {
	g, ok := d.groupsByName[name]
	return g, ok
}

func (d *directory) GroupByID(gid uint32) (*Group, bool) {
	g, ok := d.groupsByID[gid]
	return g, ok
}

func (d *directory) SupplementaryGroups(username string) []Group {
	return d.members[username]
}

// GroupNames resolves the invoker's complete set of group names: the primary
// group plus every supplementary membership. The policy matcher works on
// names, not ids.
func GroupNames(d Directory, u *User) []string {
	var names []string
	if primary, ok := d.GroupByID(u.GID); ok {
		names = append(names, primary.Name)
	}
	for _, g := range d.SupplementaryGroups(u.Name) {
		names = append(names, g.Name)
	}
	return names
}

// TargetGroupIDs resolves the gid list installed before exec: the target's
// supplementary groups with the primary gid inserted when absent.
func TargetGroupIDs(d Directory, target *User) []uint32 {
	supp := d.SupplementaryGroups(target.Name)
	gids := make([]uint32, 0, len(supp)+1)
	havePrimary := false
	for _, g := range supp {
		if g.GID == target.GID {
			havePrimary = true
		}
		gids = append(gids, g.GID)
	}
	if !havePrimary {
		gids = append(gids, target.GID)
	}
	return gids
}

// ResolveUser looks a user up by name.
func ResolveUser(d Directory, name string) (*User, error) {
	if u, ok := d.UserByName(name); ok {
		return u, nil
	}
	return nil, errors.New(errors.KindConfig, "lookup", "invalid user "+name)
}

// ResolveGroup looks a group up by name.
func ResolveGroup(d Directory, name string) (*Group, error) {
	if g, ok := d.GroupByName(name); ok {
		return g, nil
	}
	return nil, errors.New(errors.KindConfig, "lookup", "invalid group "+name)
}
