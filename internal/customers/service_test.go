package customers

import (
	"testing"

	"github.com/joao-fontenele/storefront-orders/internal/domain"
)

func ptr(s string) *string { return &s }

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name       string
		in         CustomerInput
		wantFields []string
	}{
		{"valid", CustomerInput{Email: ptr("ana@example.com"), FullName: ptr("Ana Lima")}, nil},
		{"missing email", CustomerInput{FullName: ptr("Ana")}, []string{"email"}},
		{"blank email", CustomerInput{Email: ptr("  "), FullName: ptr("Ana")}, []string{"email"}},
		{"malformed email", CustomerInput{Email: ptr("ana-at-example"), FullName: ptr("Ana")}, []string{"email"}},
		{"display name is not an address", CustomerInput{Email: ptr("Ana <ana@example.com>"), FullName: ptr("Ana")}, []string{"email"}},
		{"missing everything", CustomerInput{}, []string{"email", "full_name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCreate(tt.in)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			de, ok := err.(*domain.Error)
			if !ok || de.Kind != domain.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(de.Fields) != len(tt.wantFields) {
				t.Fatalf("expected fields %v, got %v", tt.wantFields, de.Fields)
			}
			for _, f := range tt.wantFields {
				if _, ok := de.Fields[f]; !ok {
					t.Errorf("expected field %s in %v", f, de.Fields)
				}
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := map[string]string{
		"ana@example.com":      "ana@example.com",
		"  Ana@Example.COM ":   "ana@example.com",
		"JOAO.SILVA@MAIL.TEST": "joao.silva@mail.test",
	}
	for in, want := range tests {
		if got := normalizeEmail(in); got != want {
			t.Errorf("normalizeEmail(%q) = %q, want %q", in, got, want)
		}
		if !validEmail(normalizeEmail(in)) {
			t.Errorf("normalized %q should still be a valid address", in)
		}
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ana", "Ana"},
		{"%", `\%`},
		{"a_b", `a\_b`},
		{`50%\off`, `50\%\\off`},
	}
	for _, tt := range tests {
		if got := escapeLike(tt.in); got != tt.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
