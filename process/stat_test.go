package process

import "testing"

func TestParseStat(t *testing.T) {
	tests := []struct {
		name        string
		stat        string
		wantSession uint32
		wantTtyNr   uint32
		wantErr     bool
	}{
		{
			name:        "plain comm",
			stat:        "1234 (bash) S 1 1234 1234 34816 1234 4194304 0 0",
			wantSession: 1234,
			wantTtyNr:   34816,
		},
		{
			name:        "comm with spaces and parens",
			stat:        "99 (evil ) proc) R 1 99 77 34817 99 0 0 0",
			wantSession: 77,
			wantTtyNr:   34817,
		},
		{
			name:        "no controlling terminal",
			stat:        "1 (init) S 0 1 1 0 -1 4194560 0 0",
			wantSession: 1,
			wantTtyNr:   0,
		},
		{
			name:    "truncated",
			stat:    "1234 (bash) S 1",
			wantErr: true,
		},
		{
			name:    "no comm",
			stat:    "garbage with no parens",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, ttyNr, err := parseStat([]byte(tt.stat))
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseStat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if session != tt.wantSession {
				t.Errorf("session = %d, want %d", session, tt.wantSession)
			}
			if ttyNr != tt.wantTtyNr {
				t.Errorf("tty_nr = %d, want %d", ttyNr, tt.wantTtyNr)
			}
		})
	}
}

func TestGuessTtyPath(t *testing.T) {
	tests := []struct {
		name  string
		ttyNr uint32
		want  string
	}{
		{"pts 0", 0x8800, "/dev/pts/0"},
		{"pts 3", 0x8803, "/dev/pts/3"},
		{"console tty1", 0x0401, "/dev/tty1"},
		{"serial ttyS0", 0x0440, "/dev/ttyS0"},
		{"usb serial", 0xbc00, "/dev/ttyUSB0"},
		{"unknown major", 0x0100, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := guessTtyPath(tt.ttyNr); got != tt.want {
				t.Errorf("guessTtyPath(%#x) = %q, want %q", tt.ttyNr, got, tt.want)
			}
		})
	}
}
