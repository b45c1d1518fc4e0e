package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// Fixture reads testdata/name.
func Fixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return data
}

// Golden decodes testdata/name.golden.json into v.
func Golden(t testing.TB, name string, v any) {
	t.Helper()
	if err := json.Unmarshal(Fixture(t, name+".golden.json"), v); err != nil {
		t.Fatalf("decode golden %s: %v", name, err)
	}
}
