package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the user-maintained state of an obligation. It is informational and is not
// derived from the schedule.
type Status string

const (
	StatusActive  Status = "active"
	StatusOverdue Status = "overdue"
	StatusClosed  Status = "closed"
)

// legacy labels stored as free text by earlier clients
var statusLabels = map[string]Status{
	"активный":  StatusActive,
	"просрочен": StatusOverdue,
	"закрыт":    StatusClosed,
}

// ParseStatus accepts the enumeration values and the legacy Russian labels.
// An empty string maps to StatusActive.
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch Status(key) {
	case "":
		return StatusActive, nil
	case StatusActive, StatusOverdue, StatusClosed:
		return Status(key), nil
	}
	if st, ok := statusLabels[key]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Valid reports whether s is one of the enumeration values.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOverdue, StatusClosed:
		return true
	}
	return false
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
