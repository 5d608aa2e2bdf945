package models

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

/*
StringList is an ordered list of strings stored as a JSON array in a text
column.
*/
type StringList []string

func (l *StringList) Scan(src any) error {
	var (
		b []byte
	)

	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}

	result := []string{}

	if len(strings.TrimSpace(string(b))) > 0 {
		if err := json.Unmarshal(b, &result); err != nil {
			return fmt.Errorf("error decoding string list: %w", err)
		}
	}

	*l = result
	return nil
}

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}

	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("error encoding string list: %w", err)
	}

	return string(b), nil
}

/*
ParseStringList splits a comma-separated value, trimming each entry and
dropping empty ones.
*/
func ParseStringList(value string) StringList {
	result := StringList{}

	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func (l StringList) String() string {
	return strings.Join(l, ", ")
}
