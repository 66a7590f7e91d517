package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gigster-garage/timebilling/internal/models"
	"github.com/spf13/cobra"
)

type convertInput struct {
	Entries  []models.TimeEntry `json:"entries"`
	Existing []models.LineItem  `json:"existing"`
}

// readConvertInput accepts a bare array of entries or the wrapped object form.
func readConvertInput(cmd *cobra.Command, file string) (convertInput, error) {
	var raw json.RawMessage
	if err := readJSON(cmd, file, &raw); err != nil {
		return convertInput{}, err
	}
	return decodeConvertInput(raw)
}

func decodeConvertInput(raw []byte) (convertInput, error) {
	var in convertInput
	body := bytes.TrimSpace(raw)
	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &in.Entries); err != nil {
			return in, fmt.Errorf("decode entries: %w", err)
		}
		return in, nil
	}
	if err := json.Unmarshal(body, &in); err != nil {
		return in, fmt.Errorf("decode input: %w", err)
	}
	return in, nil
}
