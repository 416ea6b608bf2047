package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UnmarshalJSON принимает как голый массив, так и объект со списком submissions
func (l *SubmissionList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '[' {
		var items []Submission
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("failed to decode submissions: %w", err)
		}
		l.Submissions = items
		l.Count = len(items)
		return nil
	}

	type plain SubmissionList
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode submissions: %w", err)
	}

	*l = SubmissionList(p)
	if l.Count == 0 {
		l.Count = len(l.Submissions)
	}
	return nil
}
