package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// flexInt accepts a JSON number or a numeric string, since form-driven
// clients often send "3" for a group or id.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("not an integer: %q", s)
		}
		*n = flexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

func (n *flexInt) intPtr() *int {
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}

type createRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Persona     string   `json:"persona" validate:"required"`
	Group       *flexInt `json:"group" validate:"required"`
}

// updateRequest carries the id plus any task fields to merge. Unknown
// fields are ignored.
type updateRequest struct {
	ID          *flexInt `json:"id" validate:"required"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Persona     *string  `json:"persona"`
	Group       *flexInt `json:"group"`
	Completed   *bool    `json:"completed"`
}

// completeRequest names the task by id or, failing that, by exact title.
// Completed is accepted for compatibility and not read.
type completeRequest struct {
	ID        *flexInt `json:"id" validate:"required_without=Title"`
	Title     string   `json:"title" validate:"required_without=ID"`
	Completed *bool    `json:"completed"`
}
