package postgres

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(FS, "sql")
	if err != nil {
		t.Fatalf("read embedded dir: %v", err)
	}

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}
	if len(ups) == 0 {
		t.Fatal("no migrations embedded")
	}
	for v := range ups {
		if !downs[v] {
			t.Errorf("migration %s has no down file", v)
		}
	}
}

func TestBookingsSchemaCarriesOverlapConstraint(t *testing.T) {
	raw, err := fs.ReadFile(FS, "sql/000002_bookings.up.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	schema := string(raw)
	for _, want := range []string{"EXCLUDE USING gist", "tstzrange(start_ts, end_ts, '[)')", "'cancelled', 'no_show'"} {
		if !strings.Contains(schema, want) {
			t.Errorf("bookings schema missing %q", want)
		}
	}
}
