package identity

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testPasswd = `root:x:0:0:root:/root:/bin/bash
alice:x:1000:1000:Alice:/home/alice:/bin/bash
bob:x:1001:1001:Bob:/home/bob:/bin/sh
www:x:33:33:webserver:/var/www:/usr/sbin/nologin
`

const testGroup = `root:x:0:
wheel:x:10:alice,bob
alice:x:1000:
bob:x:1001:
www:x:33:
adm:x:4:alice
`

func load(t *testing.T) Directory {
	t.Helper()
	d, err := LoadFromReaders(strings.NewReader(testPasswd), strings.NewReader(testGroup))
	if err != nil {
		t.Fatalf("LoadFromReaders() error = %v", err)
	}
	return d
}

func TestUserLookups(t *testing.T) {
	d := load(t)

	u, ok := d.UserByName("alice")
	if !ok {
		t.Fatal("UserByName(alice) not found")
	}
	want := &User{Name: "alice", UID: 1000, GID: 1000, Home: "/home/alice"}
	if diff := cmp.Diff(want, u); diff != "" {
		t.Errorf("UserByName(alice) mismatch (-want +got):\n%s", diff)
	}

	byID, ok := d.UserByID(1000)
	if !ok || byID != u {
		t.Error("UserByID(1000) did not return the same snapshot entry")
	}

	if _, ok := d.UserByName("mallory"); ok {
		t.Error("UserByName(mallory) unexpectedly found")
	}
	if _, ok := d.UserByID(4242); ok {
		t.Error("UserByID(4242) unexpectedly found")
	}
}

func TestGroupLookups(t *testing.T) {
	d := load(t)

	g, ok := d.GroupByName("wheel")
	if !ok || g.GID != 10 {
		t.Fatalf("GroupByName(wheel) = %+v/%v, want gid 10", g, ok)
	}
	byID, ok := d.GroupByID(10)
	if !ok || byID.Name != "wheel" {
		t.Errorf("GroupByID(10) = %+v/%v, want wheel", byID, ok)
	}
}

func TestSupplementaryGroups(t *testing.T) {
	d := load(t)

	got := d.SupplementaryGroups("alice")
	want := []Group{{Name: "wheel", GID: 10}, {Name: "adm", GID: 4}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SupplementaryGroups(alice) mismatch (-want +got):\n%s", diff)
	}

	if got := d.SupplementaryGroups("www"); len(got) != 0 {
		t.Errorf("SupplementaryGroups(www) = %v, want none", got)
	}
}

func TestGroupNames(t *testing.T) {
	d := load(t)
	alice, _ := d.UserByName("alice")

	got := GroupNames(d, alice)
	want := []string{"alice", "wheel", "adm"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GroupNames(alice) mismatch (-want +got):\n%s", diff)
	}
}

func TestTargetGroupIDs(t *testing.T) {
	d := load(t)

	tests := []struct {
		name string
		user string
		want []uint32
	}{
		// alice's primary gid 1000 is not among her supplementary groups,
		// so it is inserted.
		{"primary inserted", "alice", []uint32{10, 4, 1000}},
		// www has no supplementary groups at all.
		{"primary only", "www", []uint32{33}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, ok := d.UserByName(tt.user)
			if !ok {
				t.Fatalf("user %s missing from fixture", tt.user)
			}
			got := TargetGroupIDs(d, u)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TargetGroupIDs(%s) mismatch (-want +got):\n%s", tt.user, diff)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	d := load(t)

	if _, err := ResolveUser(d, "alice"); err != nil {
		t.Errorf("ResolveUser(alice) error = %v", err)
	}
	if _, err := ResolveUser(d, "mallory"); err == nil {
		t.Error("ResolveUser(mallory) succeeded, want error")
	}
	if _, err := ResolveGroup(d, "wheel"); err != nil {
		t.Errorf("ResolveGroup(wheel) error = %v", err)
	}
	if _, err := ResolveGroup(d, "nope"); err == nil {
		t.Error("ResolveGroup(nope) succeeded, want error")
	}
}
