package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// RecordID is a backend identifier. The backend sends numeric ids for its own rows
// and string ids for some provider rows; both decode into the same type.
type RecordID string

func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = RecordID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers so the backend accepts them.
func (id RecordID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id RecordID) String() string {
	return string(id)
}
