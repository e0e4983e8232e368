package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name     string
		validate func(string) error
		input    string
		wantCode Code // empty for valid input
	}{
		{"name plain", ValidateItemName, "ACME", ""},
		{"name spaced", ValidateItemName, "Vanguard Total World", ""},
		{"name accented", ValidateItemName, "Société Générale", ""},
		{"name wide runes", ValidateItemName, "任天堂", ""},
		{"name empty", ValidateItemName, "", ErrCodeInvalidItem},
		{"name blank", ValidateItemName, "   ", ErrCodeInvalidItem},
		{"name too long", ValidateItemName, strings.Repeat("a", 300), ErrCodeInvalidItem},
		{"name escape sequence", ValidateItemName, "ACME\x1b[31m", ErrCodeInvalidItem},
		{"name newline", ValidateItemName, "foo\nbar", ErrCodeInvalidItem},

		{"path file", ValidatePath, "acme.png", ""},
		{"path nested", ValidatePath, "icons/brands/acme-corp.png", ""},
		{"path dotted names", ValidatePath, "v1.2.3/logo..svg", ""},
		{"path current dir", ValidatePath, "./icons/acme.svg", ""},
		{"path empty", ValidatePath, "", ErrCodeInvalidPath},
		{"path too long", ValidatePath, strings.Repeat("a/", 300), ErrCodeInvalidPath},
		{"path absolute", ValidatePath, "/etc/passwd", ErrCodeInvalidPath},
		{"path leading parent", ValidatePath, "../secrets.png", ErrCodeInvalidPath},
		{"path inner parent", ValidatePath, "icons/../../x.png", ErrCodeInvalidPath},
		{"path trailing parent", ValidatePath, "icons/..", ErrCodeInvalidPath},
		{"path null byte", ValidatePath, "foo\x00bar", ErrCodeInvalidPath},
		{"path backslash", ValidatePath, `icons\acme.png`, ErrCodeInvalidPath},

		{"url https", ValidateURL, "https://example.com/acme.svg", ""},
		{"url http with port", ValidateURL, "http://127.0.0.1:8080/acme.png", ""},
		{"url empty", ValidateURL, "", ErrCodeInvalidInput},
		{"url ftp", ValidateURL, "ftp://example.com/a.png", ErrCodeInvalidInput},
		{"url file", ValidateURL, "file:///etc/passwd", ErrCodeInvalidInput},
		{"url javascript", ValidateURL, "javascript:alert(1)", ErrCodeInvalidInput},
		{"url bare host", ValidateURL, "example.com/a.png", ErrCodeInvalidInput},
		{"url no host", ValidateURL, "https:///a.png", ErrCodeInvalidInput},
		{"url space", ValidateURL, "https://example.com/a b.png", ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate(tt.input)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("validate(%q) = %v, want nil", tt.input, err)
				}
				return
			}
			if got := GetCode(err); got != tt.wantCode {
				t.Errorf("GetCode(validate(%q)) = %q, want %q", tt.input, got, tt.wantCode)
			}
		})
	}
}

func TestValidateCanvas(t *testing.T) {
	tests := []struct {
		name                   string
		width, height, padding float64
		wantErr                bool
	}{
		{"typical", 800, 600, 2, false},
		{"one pixel", 1, 1, 0, false},
		{"fractional", 800.5, 600.25, 1.5, false},
		{"zero width", 0, 600, 0, true},
		{"sub-pixel height", 800, 0.5, 0, true},
		{"negative padding", 800, 600, -1, true},
		{"nan padding", 800, 600, math.NaN(), true},
		{"infinite width", math.Inf(1), 600, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCanvas(tt.width, tt.height, tt.padding)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCanvas(%v, %v, %v) = %v, wantErr %v", tt.width, tt.height, tt.padding, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidCanvas {
				t.Errorf("ValidateCanvas() code = %q, want %q", GetCode(err), ErrCodeInvalidCanvas)
			}
		})
	}
}
