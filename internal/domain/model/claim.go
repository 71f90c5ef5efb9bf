package model

import (
	"encoding/json"
	"strings"
)

// RoleClaim is a raw role assertion as it appears in backend payloads and
// in legacy persisted fragments. Three wire shapes coexist: a bare string
// label, a bare numeric legacy code, and a compound {id, name} object.
type RoleClaim struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

func ClaimFromName(name string) RoleClaim {
	return RoleClaim{Name: name}
}

func ClaimFromCode(code int64) RoleClaim {
	return RoleClaim{ID: code}
}

func (c RoleClaim) Empty() bool {
	return c.ID == 0 && strings.TrimSpace(c.Name) == ""
}

func (c *RoleClaim) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*c = RoleClaim{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*c = RoleClaim{Name: name}
		return nil
	case '{':
		type compound struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		}
		var v compound
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*c = RoleClaim{ID: v.ID, Name: v.Name}
		return nil
	default:
		var code int64
		if err := json.Unmarshal(data, &code); err != nil {
			return err
		}
		*c = RoleClaim{ID: code}
		return nil
	}
}

func (c RoleClaim) MarshalJSON() ([]byte, error) {
	if c.ID == 0 {
		return json.Marshal(c.Name)
	}
	type compound struct {
		ID   int64  `json:"id"`
		Name string `json:"name,omitempty"`
	}
	return json.Marshal(compound{ID: c.ID, Name: c.Name})
}
