package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoJSON is returned when model output carries no recognisable JSON payload.
var ErrNoJSON = errors.New("no JSON found in model output")

var (
	fencedJSON  = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	bareArray   = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)
	emptyArray  = regexp.MustCompile(`^\s*\[\s*\]\s*$`)
	bareObject  = regexp.MustCompile(`(?s)\{.*\}`)
	leadingNumb = regexp.MustCompile(`^[-+]?\d*\.?\d+`)
)

// locateArray returns the JSON array embedded in text, preferring a fenced block.
func locateArray(text string) (string, error) {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return m[1], nil
	}
	if emptyArray.MatchString(text) {
		return "[]", nil
	}
	if m := bareArray.FindString(text); m != "" {
		return m, nil
	}
	return "", ErrNoJSON
}

// locateObject returns the outermost JSON object embedded in text.
func locateObject(text string) (string, error) {
	if m := fencedJSON.FindStringSubmatch(text); m != nil && strings.HasPrefix(strings.TrimSpace(m[1]), "{") {
		return m[1], nil
	}
	if m := bareObject.FindString(text); m != "" {
		return m, nil
	}
	return "", ErrNoJSON
}

// parseScore reads a bare decimal such as "0.9"; anything else is 0.
func parseScore(text string) float64 {
	m := leadingNumb.FindString(strings.TrimSpace(text))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

// flexInt accepts 7, 7.5 and "7".
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", raw)
	}
	*f = flexInt(math.Round(v))
	return nil
}

// flexStrings accepts either a list of strings or a single string.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single = strings.TrimSpace(single); single != "" {
		*f = []string{single}
	}
	return nil
}

// flexString accepts a string or a number, as models sometimes emit "timeSaved": 40.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*f = ""
		return nil
	}
	*f = flexString(raw)
	return nil
}
