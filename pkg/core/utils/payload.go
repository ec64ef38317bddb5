// Package utils decodes appraisal payloads typed or pasted by analysts.
package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrEmptyPayload is returned when there is nothing to decode.
var ErrEmptyPayload = errors.New("empty payload")

// RepairJSON fixes the usual hand-editing mistakes in a JSON document:
// trailing commas, single quotes, unquoted keys, comments and
// markdown code fences around the payload.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("repair json: %w", err)
	}
	return repaired, nil
}

// HJSONToJSON converts an Hjson document (comments, unquoted keys and
// strings, optional commas) to standard JSON.
func HJSONToJSON(data string) (string, error) {
	var v interface{}
	if err := hjson.Unmarshal([]byte(data), &v); err != nil {
		return "", fmt.Errorf("parse hjson: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal hjson: %w", err)
	}
	return string(out), nil
}

// ParseHJSONToStruct decodes Hjson directly into target.
func ParseHJSONToStruct(data string, target interface{}) error {
	if err := hjson.Unmarshal([]byte(data), target); err != nil {
		return fmt.Errorf("decode hjson: %w", err)
	}
	return nil
}

// SmartParse decodes input into target, trying strict JSON first, then
// repaired JSON, then Hjson. It returns the JSON text that decoded.
func SmartParse(input string, target interface{}) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyPayload
	}

	strictErr := decodeJSON(input, target)
	if strictErr == nil {
		return input, nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := decodeJSON(repaired, target); err == nil {
			return repaired, nil
		}
	}

	if converted, err := HJSONToJSON(input); err == nil {
		if err := decodeJSON(converted, target); err == nil {
			return converted, nil
		}
	}

	return "", fmt.Errorf("decode payload: %w", strictErr)
}

func decodeJSON(data string, target interface{}) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	if err := dec.Decode(target); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON value")
	}
	return nil
}
