package notifier

import (
	"errors"
	"testing"
)

func TestMapResolver(t *testing.T) {
	r := newMapResolver("https://chat.example.com/default", map[string]string{
		"ops": "https://chat.example.com/ops",
	})

	tests := []struct {
		name    string
		arg     string
		want    string
		wantErr bool
	}{
		{name: "named destination", arg: "ops", want: "https://chat.example.com/ops"},
		{name: "empty name uses default", arg: "", want: "https://chat.example.com/default"},
		{name: "unknown name falls back", arg: "missing", want: "https://chat.example.com/default"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.arg)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.arg, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}

	bare := newMapResolver("", nil)
	if _, err := bare.Resolve("anything"); !errors.Is(err, ErrNoDestination) {
		t.Errorf("Resolve() without default error = %v, want ErrNoDestination", err)
	}
}

func TestDynamicResolver_Update(t *testing.T) {
	r := NewDynamicResolver("https://chat.example.com/v1", nil)

	if got, _ := r.Resolve(""); got != "https://chat.example.com/v1" {
		t.Fatalf("Resolve() = %q before update", got)
	}

	r.Update("https://chat.example.com/v2", map[string]string{
		"ops": "https://chat.example.com/ops",
	})

	if got, _ := r.Resolve(""); got != "https://chat.example.com/v2" {
		t.Errorf("Resolve() = %q after update, want v2", got)
	}
	if got, _ := r.Resolve("ops"); got != "https://chat.example.com/ops" {
		t.Errorf("Resolve(ops) = %q after update", got)
	}
}

func TestDynamicResolver_UpdateDoesNotAliasCallerMap(t *testing.T) {
	m := map[string]string{"ops": "https://chat.example.com/ops"}
	r := NewDynamicResolver("", m)

	m["ops"] = "https://evil.example.com"

	if got, _ := r.Resolve("ops"); got != "https://chat.example.com/ops" {
		t.Errorf("Resolve(ops) = %q, caller mutation leaked in", got)
	}
}
