package memstore

import (
	"encoding/base64"
	"encoding/json"
)

// cursorData is the position encoded in an opaque cursor.
type cursorData struct {
	AfterID int64 `json:"after_id,omitempty"`
}

func encodeCursor(data cursorData) string {
	if data.AfterID == 0 {
		return ""
	}
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(jsonBytes)
}

func decodeCursor(cursor string) (cursorData, error) {
	if cursor == "" {
		return cursorData{}, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return cursorData{}, err
	}

	var data cursorData
	err = json.Unmarshal(decoded, &data)
	return data, err
}
