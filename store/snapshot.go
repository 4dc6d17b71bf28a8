package store

import (
	"encoding/json"
	"time"
)

// Snapshot is one version of a document as seen by readers and subscribers.
type Snapshot struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Version    int64          `json:"version"`
	Data       map[string]any `json:"data"`
	UpdateTime time.Time      `json:"updateTime"`
}

func (s Snapshot) Exists() bool { return s.Version > 0 }

// DataTo decodes the document data into v.
func (s Snapshot) DataTo(v any) error {
	raw, err := json.Marshal(s.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
