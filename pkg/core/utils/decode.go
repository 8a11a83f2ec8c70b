package utils

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// Strategy names the parser that accepted a document in SmartParse.
type Strategy string

const (
	StrategyJSON     Strategy = "json"
	StrategyRepaired Strategy = "repaired_json"
	StrategyHJSON    Strategy = "hjson"
)

// ErrUnparseable is returned when no strategy could read the document.
var ErrUnparseable = errors.New("unparseable document")

// RepairJSON fixes common hand-editing mistakes: unquoted keys, single
// quotes, trailing commas, comments and unclosed brackets.
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// ParseHJSON parses Hjson and returns the equivalent standard JSON.
func ParseHJSON(hjsonData string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(hjsonData), &result); err != nil {
		return "", fmt.Errorf("hjson parse failed: %w", err)
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("json marshal failed: %w", err)
	}

	return string(jsonBytes), nil
}

// SmartParse decodes input into out, trying in order:
//  1. standard JSON
//  2. Hjson
//  3. JSON repair
//
// Only syntax errors fall through to the next strategy. A document that is
// well-formed but semantically wrong (a bad enum value, a string where a
// number belongs) fails immediately with the decoder's error.
func SmartParse(input string, out interface{}) (Strategy, error) {
	err := json.Unmarshal([]byte(input), out)
	if err == nil {
		return StrategyJSON, nil
	}
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		return "", err
	}

	if converted, herr := ParseHJSON(input); herr == nil {
		if err := json.Unmarshal([]byte(converted), out); err == nil {
			return StrategyHJSON, nil
		} else if !errors.As(err, &syntaxErr) {
			return "", err
		}
	}

	if repaired, rerr := RepairJSON(input); rerr == nil {
		if err := json.Unmarshal([]byte(repaired), out); err == nil {
			return StrategyRepaired, nil
		} else if !errors.As(err, &syntaxErr) {
			return "", err
		}
	}

	return "", fmt.Errorf("%w: %v", ErrUnparseable, err)
}
