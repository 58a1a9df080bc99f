package models

import "testing"

func TestRowAccessors(t *testing.T) {
	r := Row{
		"id":   float64(7),
		"Name": "Acme",
		"Tools": []any{
			map[string]any{"id": float64(10)},
			"garbage",
			map[string]any{"noid": true},
			map[string]any{"id": float64(11)},
		},
		"Tags": []any{
			map[string]any{"id": float64(1), "value": "ml", "color": "blue"},
			map[string]any{"value": "infra"},
		},
	}

	if r.ID() != 7 {
		t.Errorf("ID() = %d, want 7", r.ID())
	}
	if r.String("Name") != "Acme" {
		t.Errorf("String(Name) = %q", r.String("Name"))
	}
	if r.String("Missing") != "" {
		t.Errorf("String(Missing) = %q, want empty", r.String("Missing"))
	}

	refs := r.Refs("Tools")
	if len(refs) != 2 || refs[0] != 10 || refs[1] != 11 {
		t.Errorf("Refs = %v, want [10 11] with malformed entries skipped", refs)
	}

	opts := r.Options("Tags")
	if len(opts) != 2 {
		t.Fatalf("Options = %v", opts)
	}
	if opts[0].Value != "ml" || opts[0].Color != "blue" {
		t.Errorf("opts[0] = %+v", opts[0])
	}
	if opts[1].Value != "infra" || opts[1].Color != "" {
		t.Errorf("opts[1] = %+v", opts[1])
	}
}

func TestRowValueDefault(t *testing.T) {
	r := Row{"Overall Rating": float64(4), "Annual License Cost": nil}

	if got := r.Value("Overall Rating", "0"); got != float64(4) {
		t.Errorf("Value(present) = %v", got)
	}
	if got := r.Value("Missing", "0"); got != "0" {
		t.Errorf("Value(absent) = %v, want default", got)
	}
	// A field present as null passes through as null, not the default.
	if got := r.Value("Annual License Cost", "fallback"); got != nil {
		t.Errorf("Value(null) = %v, want nil", got)
	}
}

func TestFetchReportAllSucceeded(t *testing.T) {
	r := &FetchReport{Tables: []TableResult{
		{Table: "companies", Status: StatusSuccess},
		{Table: "tools", Status: StatusSuccess},
	}}
	if !r.AllSucceeded() {
		t.Error("all-success report should succeed")
	}
	r.Tables = append(r.Tables, TableResult{Table: "libraries", Status: StatusFailed, Error: "HTTP 404"})
	if r.AllSucceeded() {
		t.Error("report with a failed table must not succeed")
	}
}
