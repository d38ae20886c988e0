package crypt

import "testing"

var referenceKey = []byte("Xy01@#\x01\x02\x80\x7f\xff\r\n\x81\t !")

func TestMD5Crypt(t *testing.T) {
	tests := []struct {
		name string
		salt string
		key  []byte
		want string
	}{
		{"reference", "abcd0123", referenceKey, "9Qcg8DyviekV3tDGMZynJ1"},
		{"ascii", "saltsalt", []byte("hello world"), "Y.W/rxyzbusnDOkxKcE2b/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := md5Crypt([]byte(tt.salt), tt.key)
			if string(got[:]) != tt.want {
				t.Errorf("md5Crypt(%q, ...) = %q, want %q", tt.salt, got, tt.want)
			}
		})
	}
}
