// hkxconvert/scan_test.go

package hkxconvert

import (
	"os"
	"path/filepath"
	"testing"
)

// scanTree builds a folder with a mix of convertible and foreign files.
func scanTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := []string{
		"run.hkx",
		"run.xml",
		"walk.kf",
		"readme.txt",
		filepath.Join("sub", "jump.hkx"),
		filepath.Join("sub", "jump.XML"),
		filepath.Join("sub", "deep", "idle.kf"),
	}
	for _, name := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestCollectInputsRecursive(t *testing.T) {
	dir := scanTree(t)

	got, err := CollectInputs(dir, FilterAll, true, nil)
	if err != nil {
		t.Fatalf("CollectInputs failed: %v", err)
	}
	if len(got) != 6 {
		t.Errorf("got %d files, want 6: %v", len(got), got)
	}
	for _, p := range got {
		if filepath.Ext(p) == ".txt" {
			t.Errorf("foreign file picked up: %s", p)
		}
	}
}

func TestCollectInputsNonRecursive(t *testing.T) {
	dir := scanTree(t)

	got, err := CollectInputs(dir, FilterAll, false, nil)
	if err != nil {
		t.Fatalf("CollectInputs failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d files, want the 3 top-level ones: %v", len(got), got)
	}
}

func TestCollectInputsFilter(t *testing.T) {
	dir := scanTree(t)

	cases := []struct {
		filter InputFilter
		want   int
	}{
		{FilterHkx, 2},
		{FilterXml, 2}, // extension match is case-insensitive
		{FilterKf, 2},
	}
	for _, tc := range cases {
		t.Run(tc.filter.Label(), func(t *testing.T) {
			got, err := CollectInputs(dir, tc.filter, true, nil)
			if err != nil {
				t.Fatalf("CollectInputs failed: %v", err)
			}
			if len(got) != tc.want {
				t.Errorf("got %d files, want %d: %v", len(got), tc.want, got)
			}
		})
	}
}

func TestCollectInputsKeepsExisting(t *testing.T) {
	dir := scanTree(t)
	already := filepath.Join(dir, "run.hkx")
	existing := []string{"/elsewhere/extra.hkx", already}

	got, err := CollectInputs(dir, FilterHkx, true, existing)
	if err != nil {
		t.Fatalf("CollectInputs failed: %v", err)
	}

	// The pre-existing entries stay in front and run.hkx is not re-added.
	if got[0] != existing[0] || got[1] != existing[1] {
		t.Errorf("existing entries were reordered: %v", got)
	}
	count := 0
	for _, p := range got {
		if p == already {
			count++
		}
	}
	if count != 1 {
		t.Errorf("run.hkx appears %d times", count)
	}
	if len(got) != 3 {
		t.Errorf("got %d files, want 3: %v", len(got), got)
	}
}

func TestCollectInputsErrors(t *testing.T) {
	if _, err := CollectInputs(filepath.Join(t.TempDir(), "missing"), FilterAll, true, nil); err == nil {
		t.Error("CollectInputs accepted a missing folder")
	}

	file := filepath.Join(t.TempDir(), "plain.hkx")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := CollectInputs(file, FilterAll, true, nil); err == nil {
		t.Error("CollectInputs accepted a file as a folder")
	}
}

func TestAddInput(t *testing.T) {
	list := AddInput(nil, "/in/a.hkx")
	list = AddInput(list, "/in/b.hkx")
	list = AddInput(list, "/in/a.hkx")
	if len(list) != 2 {
		t.Errorf("got %v, want the duplicate dropped", list)
	}
}

func TestInputFilterMatches(t *testing.T) {
	if !FilterAll.Matches(".HKX") || !FilterAll.Matches(".xml") || !FilterAll.Matches(".kf") {
		t.Error("FilterAll must accept every convertible extension")
	}
	if FilterAll.Matches(".txt") || FilterHkx.Matches(".xml") {
		t.Error("filter accepted a foreign extension")
	}
}
