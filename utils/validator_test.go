package utils

import "testing"

type regForm struct {
	Username   string `validate:"required"`
	Password   string `validate:"required,pwdmin"`
	ResidentID string `validate:"residentid"`
	Name       string `validate:"nameok"`
}

func TestValidateStruct(t *testing.T) {
	cases := []struct {
		name   string
		in     regForm
		wantOK bool
	}{
		{"valid", regForm{Username: "alice", Password: "secret1", ResidentID: "alice-01", Name: "Alice O'Neil"}, true},
		{"resident id optional", regForm{Username: "alice", Password: "secret1"}, true},
		{"missing username", regForm{Password: "secret1"}, false},
		{"short password", regForm{Username: "alice", Password: "abc"}, false},
		{"resident id with spaces", regForm{Username: "alice", Password: "secret1", ResidentID: "alice smith"}, false},
		{"name with angle brackets", regForm{Username: "alice", Password: "secret1", Name: "<script>"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateStruct(&c.in)
			if c.wantOK && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !c.wantOK && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateStructRejectsNonStruct(t *testing.T) {
	if err := ValidateStruct("not a struct"); err == nil {
		t.Fatal("expected error for non-struct input")
	}
}
