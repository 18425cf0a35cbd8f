package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// flexID — непрозрачный идентификатор из JSON: строка или число.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("id must be a string or a number: %s", data)
		}
		*f = flexID(n.String())
	}

	return nil
}

// UnmarshalJSON принимает идентификаторы (id, postId, parentId, authorId)
// как строками, так и числами; наружу они всегда строки.
func (c *Comment) UnmarshalJSON(data []byte) error {
	type plain Comment

	aux := struct {
		*plain
		ID       flexID `json:"id"`
		PostID   flexID `json:"postId"`
		ParentID flexID `json:"parentId"`
		AuthorID flexID `json:"authorId"`
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.ID = string(aux.ID)
	c.PostID = string(aux.PostID)
	c.ParentID = string(aux.ParentID)
	c.AuthorID = string(aux.AuthorID)

	return nil
}
