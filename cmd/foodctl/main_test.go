package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Jep4/diabete-random-generate/internal/exchange"
	"github.com/Jep4/diabete-random-generate/internal/nutrition"
)

// run executes foodctl with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DB_URL", "")
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestDescriptionFromFilename(t *testing.T) {
	cases := map[string]string{
		"2026-10-01-002-create-food-exchange-items.sql": "create food exchange items",
		"2026-10-01-003-create-meal-pattern.sql":        "create meal pattern",
		"no-prefix.sql":                                 "no prefix",
	}
	for in, want := range cases {
		if got := descriptionFromFilename(in); got != want {
			t.Errorf("descriptionFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPendingMigrations(t *testing.T) {
	files := []string{
		"db/2026-10-01-003-create-meal-pattern.sql",
		"db/2026-10-01-001-create-migrations.sql",
		"db/2026-10-01-002-create-food-exchange-items.sql",
	}
	applied := map[string]bool{"2026-10-01-001-create-migrations.sql": true}

	got := pendingMigrations(files, applied)
	want := []string{
		"db/2026-10-01-002-create-food-exchange-items.sql",
		"db/2026-10-01-003-create-meal-pattern.sql",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("pending = %v, want %v", got, want)
	}
	if files[0] != "db/2026-10-01-003-create-meal-pattern.sql" {
		t.Error("input slice was reordered")
	}
}

func TestMigrate_RejectsNonPostgres(t *testing.T) {
	if _, err := run(t, "migrate", "--db", filepath.Join(t.TempDir(), "foods.db")); err == nil {
		t.Error("expected an error for a SQLite DSN")
	}
}

func TestCalc(t *testing.T) {
	out, err := run(t, "calc", "--age", "45", "--height", "170", "--weight", "70")
	if err != nil {
		t.Fatalf("calc: %v", err)
	}
	for _, want := range []string{"BMR:       1542.5 kcal", "Daily:     1851 kcal (sedentary x1.2)", "Per meal:  617 kcal"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCalc_JSON(t *testing.T) {
	out, err := run(t, "calc", "--format", "json", "--age", "45", "--height", "170", "--weight", "70", "--sex", "female", "--activity", "moderate")
	if err != nil {
		t.Fatalf("calc: %v", err)
	}
	var resp struct {
		Profile nutrition.Profile `json:"profile"`
		Result  nutrition.Result  `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	// 1376.5 * 1.55 = 2133.575
	if resp.Result.Calories != 2134 || resp.Profile.Sex != nutrition.Female {
		t.Errorf("got %+v", resp)
	}
}

func TestCalc_MissingAge(t *testing.T) {
	_, err := run(t, "calc", "--height", "170", "--weight", "70")
	if err == nil {
		t.Fatal("expected an error")
	}
	if nutrition.NoticeFor(err) != nutrition.MissingFieldsNotice {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestList_Embedded(t *testing.T) {
	out, err := run(t, "list", "--category", "fats")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	c := exchange.DefaultCatalog()
	if !strings.Contains(out, "🥑 지방군") || strings.Contains(out, "🍚 곡류군") {
		t.Errorf("category filter not applied:\n%s", out)
	}
	if got := strings.Count(out, "  - "); got != len(c.Pool(exchange.Fats)) {
		t.Errorf("listed %d items, want %d", got, len(c.Pool(exchange.Fats)))
	}

	if _, err := run(t, "list", "--category", "desserts"); err == nil {
		t.Error("expected an error for an unknown category")
	}
}

func TestSeedThenList_SQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "foods.db")
	custom := filepath.Join(t.TempDir(), "catalog.json")
	writeFile(t, custom, `{
		"pattern": {"grains": 1, "proteins": 1, "vegetables": 1, "fats": 1},
		"categories": {
			"grains": [{"name": "현미밥", "amount": "70g"}],
			"proteins": [{"name": "두부", "amount": "80g"}],
			"vegetables": [{"name": "오이", "amount": "70g"}],
			"fats": [{"name": "참기름", "amount": "5g"}]
		}
	}`)

	out, err := run(t, "seed", "--db", db, "--file", custom)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "Seeded 4 food item(s).") {
		t.Errorf("unexpected seed output: %q", out)
	}

	out, err = run(t, "list", "--db", db, "--format", "json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got, err := exchange.ParseCatalog([]byte(out))
	if err != nil {
		t.Fatalf("list output does not parse: %v", err)
	}
	if p := got.Pool(exchange.Proteins); len(p) != 1 || p[0].Name != "두부" {
		t.Errorf("proteins = %+v", p)
	}
}

func TestSeed_NeedsDatabase(t *testing.T) {
	if _, err := run(t, "seed"); err == nil {
		t.Error("seeding the embedded table should fail")
	}
}

func TestSample_SeedIsRepeatable(t *testing.T) {
	strip := func(s string) string {
		_, rest, _ := strings.Cut(s, "\n")
		return rest
	}
	a, err := run(t, "sample", "--seed", "7")
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	b, _ := run(t, "sample", "--seed", "7")
	if strip(a) != strip(b) {
		t.Errorf("same seed drew different meals:\n%s\n%s", a, b)
	}
	for _, want := range []string{"🍚 곡류군  2 단위", "🥦 채소군  3 단위", "🥑 지방군  1 단위"} {
		if !strings.Contains(a, want) {
			t.Errorf("output missing %q:\n%s", want, a)
		}
	}
}

func TestSample_JSONCount(t *testing.T) {
	out, err := run(t, "sample", "--format", "json", "-n", "3")
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	var meals []exchange.Meal
	if err := json.Unmarshal([]byte(out), &meals); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(meals) != 3 {
		t.Fatalf("got %d meals, want 3", len(meals))
	}
	if meals[0].ID == meals[1].ID {
		t.Error("meal IDs repeat")
	}

	if _, err := run(t, "sample", "-n", "0"); err == nil {
		t.Error("expected an error for --count 0")
	}
}

func TestRoot_RejectsUnknownFormat(t *testing.T) {
	if _, err := run(t, "list", "--format", "yaml"); err == nil {
		t.Error("expected an error for --format yaml")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
