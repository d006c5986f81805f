package model

import (
	"encoding/json"
	"testing"
)

func TestAuthorRelationLabel(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"absent", `null`, "Anonymous"},
		{"empty_array", `[]`, "Anonymous"},
		{"display_name", `{"display_name":"Ada"}`, "Ada"},
		{"null_display_name_falls_back", `{"display_name":null,"username":"ada99"}`, "ada99"},
		{"array_with_record", `[{"display_name":"Ada"}]`, "Ada"},
		{"array_username_only", `[{"username":"ada99"}]`, "ada99"},
		{"empty_record", `{}`, "Anonymous"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rel AuthorRelation
			if err := json.Unmarshal([]byte(tc.raw), &rel); err != nil {
				t.Fatalf("unmarshal %q: %v", tc.raw, err)
			}
			if got := rel.Label(); got != tc.want {
				t.Errorf("Label() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAuthorRelationRowDecode(t *testing.T) {
	raw := `{
		"id": "c1",
		"post_id": "p1",
		"author_id": "u1",
		"body": "hello",
		"created_at": "2024-05-01T10:00:00Z",
		"author": [{"display_name": "Ada", "username": "ada99"}]
	}`

	var row Row
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		t.Fatalf("unmarshal row: %v", err)
	}
	if row.Author.Record == nil {
		t.Fatal("expected author record, got nil")
	}
	if got := row.Author.Label(); got != "Ada" {
		t.Errorf("Label() = %q, want %q", got, "Ada")
	}
	if !row.Root() {
		t.Errorf("row without parent_id should be a root")
	}
}
