package user

import (
	"regexp"
	"testing"
)

func Test_parseBearer(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantID     int
		wantSecret string
		wantErr    error
	}{
		{name: "empty header", wantErr: ErrInvalidToken},
		{name: "missing prefix", header: "42|abc", wantErr: ErrInvalidToken},
		{name: "wrong scheme", header: "Basic 42|abc", wantErr: ErrInvalidToken},
		{name: "no separator", header: "Bearer 42abc", wantErr: ErrInvalidToken},
		{name: "too many separators", header: "Bearer 42|abc|def", wantErr: ErrInvalidToken},
		{name: "non-numeric id", header: "Bearer x|abc", wantErr: ErrInvalidToken},
		{name: "valid", header: "Bearer 42|abc", wantID: 42, wantSecret: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, secret, err := parseBearer(tt.header)
			if err != tt.wantErr {
				t.Fatalf("parseBearer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if id != tt.wantID || secret != tt.wantSecret {
				t.Errorf("parseBearer() = (%d, %q), want (%d, %q)", id, secret, tt.wantID, tt.wantSecret)
			}
		})
	}
}

func Test_newRawSecret(t *testing.T) {
	hex64 := regexp.MustCompile(`^[0-9a-f]{64}$`)

	s1, err := newRawSecret()
	if err != nil {
		t.Fatal(err)
	}
	s2, err := newRawSecret()
	if err != nil {
		t.Fatal(err)
	}
	if !hex64.MatchString(s1) {
		t.Errorf("newRawSecret() = %q, want 64 hex chars", s1)
	}
	if s1 == s2 {
		t.Error("newRawSecret() returned the same secret twice")
	}
}

func Test_formatComposite(t *testing.T) {
	if got := formatComposite(7, "cafe"); got != "7|cafe" {
		t.Errorf("formatComposite() = %q, want %q", got, "7|cafe")
	}
}
