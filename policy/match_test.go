package policy

import "testing"

func mustParse(t *testing.T, input string) *RuleSet {
	t.Helper()
	rs, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return rs
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		rules       string
		req         Request
		wantMatch   bool
		wantDecides AuthDecision
	}{
		{
			name:  "simple allow",
			rules: "rule { origin=alice; target=root; exe=/bin/ls; }",
			req: Request{
				InvokerUser: "alice",
				TargetUser:  "root",
				Command:     "/bin/ls",
			},
			wantMatch:   true,
			wantDecides: AuthDecision{AskPass: true, Timeout: 600, Bell: false},
		},
		{
			name:  "wrong invoker denied",
			rules: "rule { origin=alice; target=root; exe=/bin/ls; }",
			req: Request{
				InvokerUser: "bob",
				TargetUser:  "root",
				Command:     "/bin/ls",
			},
			wantMatch: false,
		},
		{
			name:  "last match wins and narrows",
			rules: "rule { origin=alice; } rule { origin=alice; exe=/bin/ls; }",
			req: Request{
				InvokerUser: "alice",
				TargetUser:  "root",
				Command:     "/bin/cat",
			},
			wantMatch: false,
		},
		{
			name:  "last match wins for options",
			rules: "rule { origin=alice; timeout = 60; } rule { origin=alice; askpass = false; }",
			req: Request{
				InvokerUser: "alice",
				TargetUser:  "root",
				Command:     "/bin/ls",
			},
			wantMatch:   true,
			wantDecides: AuthDecision{AskPass: false, Timeout: 600, Bell: false},
		},
		{
			name:  "group origin",
			rules: "rule { origin = :wheel; }",
			req: Request{
				InvokerUser:   "alice",
				InvokerGroups: []string{"alice", "wheel"},
				TargetUser:    "root",
				Command:       "/bin/ls",
			},
			wantMatch:   true,
			wantDecides: AuthDecision{AskPass: true, Timeout: 600, Bell: false},
		},
		{
			name:  "user and group must both hold",
			rules: "rule { origin = alice:wheel; }",
			req: Request{
				InvokerUser:   "alice",
				InvokerGroups: []string{"alice"},
				TargetUser:    "root",
				Command:       "/bin/ls",
			},
			wantMatch: false,
		},
		{
			name:  "origin alternative",
			rules: "rule { origin = bob | :wheel; }",
			req: Request{
				InvokerUser:   "alice",
				InvokerGroups: []string{"wheel"},
				TargetUser:    "root",
				Command:       "/bin/ls",
			},
			wantMatch:   true,
			wantDecides: AuthDecision{AskPass: true, Timeout: 600, Bell: false},
		},
		{
			name:  "target group required",
			rules: "rule { origin = alice; target = root:wheel; }",
			req: Request{
				InvokerUser: "alice",
				TargetUser:  "root",
				TargetGroup: "root",
				Command:     "/bin/ls",
			},
			wantMatch: false,
		},
		{
			name:  "bare name matches basename",
			rules: "rule { origin = alice; exe = ls; }",
			req: Request{
				InvokerUser: "alice",
				TargetUser:  "root",
				Command:     "/usr/bin/ls",
			},
			wantMatch:   true,
			wantDecides: AuthDecision{AskPass: true, Timeout: 600, Bell: false},
		},
		{
			name:  "glob name",
			rules: "rule { origin = alice; exe = git*; }",
			req: Request{
				InvokerUser: "alice",
				TargetUser:  "root",
				Command:     "/usr/bin/git-receive-pack",
			},
			wantMatch:   true,
			wantDecides: AuthDecision{AskPass: true, Timeout: 600, Bell: false},
		},
		{
			name:  "glob path",
			rules: "rule { origin = alice; exe = /opt/*/bin/run; }",
			req: Request{
				InvokerUser: "alice",
				TargetUser:  "root",
				Command:     "/opt/tool/bin/run",
			},
			wantMatch:   true,
			wantDecides: AuthDecision{AskPass: true, Timeout: 600, Bell: false},
		},
		{
			name:  "glob path does not cross separators",
			rules: "rule { origin = alice; exe = /opt/*/bin/run; }",
			req: Request{
				InvokerUser: "alice",
				TargetUser:  "root",
				Command:     "/opt/a/b/bin/run",
			},
			wantMatch: false,
		},
		{
			name:  "rule options surface in decision",
			rules: "rule { origin = alice; askpass = false; timeout = 120; bell = true; }",
			req: Request{
				InvokerUser: "alice",
				TargetUser:  "root",
				Command:     "/bin/ls",
			},
			wantMatch:   true,
			wantDecides: AuthDecision{AskPass: false, Timeout: 120, Bell: true},
		},
		{
			name:  "no rules denies",
			rules: "",
			req: Request{
				InvokerUser: "alice",
				TargetUser:  "root",
				Command:     "/bin/ls",
			},
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := mustParse(t, tt.rules)
			got, matched := rs.Decide(&tt.req)
			if matched != tt.wantMatch {
				t.Fatalf("Decide() matched = %v, want %v", matched, tt.wantMatch)
			}
			if matched && got != tt.wantDecides {
				t.Errorf("Decide() = %+v, want %+v", got, tt.wantDecides)
			}
		})
	}
}

func TestDecide_Deterministic(t *testing.T) {
	rs := mustParse(t, `
		rule { origin = alice | :wheel; target = root; }
		rule { origin = bob; exe = /bin/cat; }
		rule { origin = alice; exe = /bin/ls; timeout = 42; }
	`)
	req := Request{
		InvokerUser:   "alice",
		InvokerGroups: []string{"wheel"},
		TargetUser:    "root",
		Command:       "/bin/ls",
	}

	first, matched := rs.Decide(&req)
	if !matched {
		t.Fatal("Decide() did not match")
	}
	for i := 0; i < 16; i++ {
		got, ok := rs.Decide(&req)
		if !ok || got != first {
			t.Fatalf("Decide() unstable: got %+v/%v, want %+v/true", got, ok, first)
		}
	}
	if first.Timeout != 42 {
		t.Errorf("Timeout = %d, want 42 (last matching rule)", first.Timeout)
	}
}
