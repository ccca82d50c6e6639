package prompts

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestExtractVariables(t *testing.T) {
	got := ExtractVariables("Meal {{.Meal}} for {{ .Profile.Summary }} and {{.Meal}} again {{if .X}}")
	want := []string{"Meal", "Profile.Summary"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractVariables() = %v, want %v", got, want)
	}
	if got := ExtractVariables("no variables"); got != nil {
		t.Errorf("ExtractVariables() = %v, want nil", got)
	}
}

func TestHashText(t *testing.T) {
	a := HashText("prompt")
	if len(a) != 64 {
		t.Errorf("HashText() length = %d", len(a))
	}
	if a != HashText("prompt") || a == HashText("prompt ") {
		t.Error("HashText() should be deterministic and change with the text")
	}
}

func TestRender(t *testing.T) {
	out, err := Render("k", "Meal: {{.Meal}}", map[string]string{"Meal": "Dinner"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "Meal: Dinner" {
		t.Errorf("Render() = %q", out)
	}

	if _, err := Render("k", "{{.Missing}}", map[string]string{}); err == nil {
		t.Error("Render() should fail on missing key")
	}
	if _, err := Render("k", "{{.Broken", nil); err == nil {
		t.Error("Render() should fail on parse error")
	}
}

func TestStore(t *testing.T) {
	s := NewStore(t.TempDir() + "/prompts")

	if _, ok, err := s.Get("clinical.profile"); ok || err != nil {
		t.Fatalf("Get() on empty store = ok:%v err:%v", ok, err)
	}
	if keys, err := s.Keys(); err != nil || len(keys) != 0 {
		t.Fatalf("Keys() on missing dir = %v, %v", keys, err)
	}

	if err := s.Put("clinical.profile", "custom"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	text, ok, err := s.Get("clinical.profile")
	if err != nil || !ok || text != "custom" {
		t.Errorf("Get() = %q, %v, %v", text, ok, err)
	}
	if keys, _ := s.Keys(); !reflect.DeepEqual(keys, []string{"clinical.profile"}) {
		t.Errorf("Keys() = %v", keys)
	}

	if err := s.Delete("clinical.profile"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete("clinical.profile"); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}

	for _, bad := range []string{"../etc/passwd", "", "1abc", "a/b"} {
		if err := s.Put(bad, "x"); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidKey", bad, err)
		}
	}
}

func TestResolver(t *testing.T) {
	store := NewStore(t.TempDir())
	r := NewResolver(store, nil)
	r.Register(EmbeddedPrompt{Key: "kitchen.recipes", Text: "Cook {{.Meal}}", Description: "test"})

	t.Run("embedded default", func(t *testing.T) {
		p, err := r.Resolve("kitchen.recipes")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.IsOverride || p.Text != "Cook {{.Meal}}" || p.Hash != HashText("Cook {{.Meal}}") {
			t.Errorf("Resolve() = %+v", p)
		}
		if !reflect.DeepEqual(p.Variables, []string{"Meal"}) {
			t.Errorf("Variables = %v", p.Variables)
		}
	})

	t.Run("override wins", func(t *testing.T) {
		if err := store.Put("kitchen.recipes", "Bake {{.Meal}}"); err != nil {
			t.Fatal(err)
		}
		defer store.Delete("kitchen.recipes")

		text, p, err := r.Render("kitchen.recipes", map[string]string{"Meal": "Lunch"})
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if text != "Bake Lunch" || !p.IsOverride {
			t.Errorf("Render() = %q, %+v", text, p)
		}
		if p.Hash != HashText("Bake {{.Meal}}") {
			t.Error("override hash should be of override text")
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		if _, err := r.Resolve("nope"); err == nil {
			t.Error("Resolve() expected error")
		}
	})

	t.Run("all embedded sorted", func(t *testing.T) {
		r.Register(EmbeddedPrompt{Key: "a.first", Text: "x"})
		all := r.AllEmbedded()
		if len(all) != 2 || all[0].Key != "a.first" {
			t.Errorf("AllEmbedded() = %+v", all)
		}
		if !strings.HasPrefix(all[1].Hash, HashText("Cook {{.Meal}}")[:8]) {
			t.Errorf("hash not computed on register")
		}
	})
}
