package model

import (
	"bytes"
	"encoding/json"
)

// AnonymousLabel is shown when the author relation resolves to nothing usable.
const AnonymousLabel = "Anonymous"

type AuthorRecord struct {
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
}

// AuthorRelation is the author reference attached to a comment row. The
// upstream data-access client is sloppy about its shape: the relation may be
// absent, a single record, or an array holding zero or one records. The codec
// swallows all three shapes; the rest of the code only ever sees an explicit
// optional record.
type AuthorRelation struct {
	Record *AuthorRecord
}

func (a *AuthorRelation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		a.Record = nil
		return nil
	}

	if data[0] == '[' {
		var records []AuthorRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return err
		}
		if len(records) == 0 {
			a.Record = nil
			return nil
		}
		a.Record = &records[0]
		return nil
	}

	var rec AuthorRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	a.Record = &rec
	return nil
}

func (a AuthorRelation) MarshalJSON() ([]byte, error) {
	if a.Record == nil {
		return []byte("null"), nil
	}
	return json.Marshal(a.Record)
}

// Label resolves the relation to a single display string. Total: every input
// maps to a string, falling back to AnonymousLabel.
func (a AuthorRelation) Label() string {
	if a.Record == nil {
		return AnonymousLabel
	}
	if a.Record.DisplayName != "" {
		return a.Record.DisplayName
	}
	if a.Record.Username != "" {
		return a.Record.Username
	}
	return AnonymousLabel
}
