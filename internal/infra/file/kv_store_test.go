package file

import (
	"path/filepath"
	"testing"

	"quizmaster/internal/app"
)

func TestKVStorePersistsUserName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profile.yaml")

	if _, ok, err := app.LoadUserName(NewKVStore(path)); err != nil || ok {
		t.Fatalf("expected empty profile, ok=%v err=%v", ok, err)
	}
	if _, err := app.SaveUserName(NewKVStore(path), " Grace "); err != nil {
		t.Fatalf("save: %v", err)
	}

	name, ok, err := app.LoadUserName(NewKVStore(path))
	if err != nil || !ok || name != "Grace" {
		t.Fatalf("expected Grace, got %q ok=%v err=%v", name, ok, err)
	}
}
