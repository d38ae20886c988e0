package crypt

import "testing"

func TestVerify(t *testing.T) {
	tests := []struct {
		name string
		hash string
		key  []byte
		want bool
	}{
		{
			name: "md5 match",
			hash: "$1$abcd0123$9Qcg8DyviekV3tDGMZynJ1",
			key:  referenceKey,
			want: true,
		},
		{
			name: "md5 wrong key",
			hash: "$1$abcd0123$9Qcg8DyviekV3tDGMZynJ1",
			key:  []byte("not the password"),
			want: false,
		},
		{
			name: "sha256 explicit rounds",
			hash: "$5$rounds=1234$abc0123456789$3VfDjPt05VHFn47C/ojFZ6KRPYrOjj1lLbH.dkF3bZ6",
			key:  referenceKey,
			want: true,
		},
		{
			name: "sha256 default rounds",
			hash: "$5$abc0123456789$Yme2EEjeIDMk5e/GKNJH1avHFdDmURtQZMnFCOlkLQ/",
			key:  referenceKey,
			want: true,
		},
		{
			name: "sha256 wrong key",
			hash: "$5$abc0123456789$Yme2EEjeIDMk5e/GKNJH1avHFdDmURtQZMnFCOlkLQ/",
			key:  []byte("nope"),
			want: false,
		},
		{
			name: "sha512 explicit rounds",
			hash: "$6$rounds=1234$abc0123456789$BCpt8zLrc/RcyuXmCDOE1ALqMXB2MH6n1g891HhFj8.w7LxGv.FTkqq6Vxc/km3Y0jE0j24jY5PIv/oOu6reg1",
			key:  referenceKey,
			want: true,
		},
		{
			name: "sha512 default rounds",
			hash: "$6$abc0123456789$IVRCaB.YXOmKGsQQVf3OXL/mjh6PYUIXdmdjgeLpcqyfx./OzmTlxA/JWjlVLZIm4OTWzfNbr1NIHwAH7BFwC.",
			key:  referenceKey,
			want: true,
		},
		{
			name: "bcrypt 2b match",
			hash: "$2b$06$N9qo8uLOickgx2ZMRZoMyei9.ZrwfzAqmK.o6D3yoSiAo2rILH47W",
			key:  []byte("correcthorse"),
			want: true,
		},
		{
			name: "bcrypt 2a match",
			hash: "$2a$05$N9qo8uLOickgx2ZMRZoMyerud7nk6ogHarCBEzhwlzTpvN4H/2NgS",
			key:  []byte("correcthorse"),
			want: true,
		},
		{
			name: "bcrypt 2y match",
			hash: "$2y$04$N9qo8uLOickgx2ZMRZoMyeFT9k.sdXg4wLQljVC7KPZrzbRp1RCCe",
			key:  []byte("correcthorse"),
			want: true,
		},
		{
			name: "bcrypt 2x ascii matches 2a output",
			hash: "$2x$05$N9qo8uLOickgx2ZMRZoMyerud7nk6ogHarCBEzhwlzTpvN4H/2NgS",
			key:  []byte("correcthorse"),
			want: true,
		},
		{
			name: "bcrypt wrong key",
			hash: "$2b$06$N9qo8uLOickgx2ZMRZoMyei9.ZrwfzAqmK.o6D3yoSiAo2rILH47W",
			key:  []byte("batterystaple"),
			want: false,
		},
		{
			name: "bcrypt invalid cost",
			hash: "$2b$03$N9qo8uLOickgx2ZMRZoMyei9.ZrwfzAqmK.o6D3yoSiAo2rILH47W",
			key:  []byte("correcthorse"),
			want: false,
		},
		{
			name: "bcrypt unknown letter",
			hash: "$2c$06$N9qo8uLOickgx2ZMRZoMyei9.ZrwfzAqmK.o6D3yoSiAo2rILH47W",
			key:  []byte("correcthorse"),
			want: false,
		},
		{
			name: "unknown scheme",
			hash: "$9$whatever$zzzz",
			key:  []byte("correcthorse"),
			want: false,
		},
		{
			name: "des style hash",
			hash: "aaqPiZY5xR5l.",
			key:  []byte("correcthorse"),
			want: false,
		},
		{
			name: "empty hash",
			hash: "",
			key:  []byte("correcthorse"),
			want: false,
		},
		{
			name: "truncated md5",
			hash: "$1$abcd0123",
			key:  referenceKey,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Verify([]byte(tt.hash), tt.key); got != tt.want {
				t.Errorf("Verify(%q, %q) = %v, want %v", tt.hash, tt.key, got, tt.want)
			}
		})
	}
}

func TestCtEqual(t *testing.T) {
	tests := []struct {
		name     string
		computed string
		stored   string
		want     bool
	}{
		{"equal", "abcdef", "abcdef", true},
		{"mismatch first byte", "abcdef", "xbcdef", false},
		{"mismatch last byte", "abcdef", "abcdex", false},
		{"stored shorter", "abcdef", "abcde", false},
		{"stored longer", "abcdef", "abcdefg", false},
		{"both empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ctEqual([]byte(tt.computed), []byte(tt.stored)); got != tt.want {
				t.Errorf("ctEqual(%q, %q) = %v, want %v", tt.computed, tt.stored, got, tt.want)
			}
		})
	}
}
