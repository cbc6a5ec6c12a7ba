package migration

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Legacy storage keys.
const (
	keyCommands     = "commands"
	keyLogs         = "logs"
	keyMilestones   = "milestones"
	keyAppointments = "appointments"
	keyWeights      = "weightEntries"
	keyTeeth        = "toothLogs"
	keyGrooming     = "groomingLogs"
	keyFears        = "fearLogs"
	keyCurrentUser  = "currentUser"
)

// element is one legacy record, still keyed by its camelCase field names.
type element map[string]json.RawMessage

func decodeElements(raw []byte) ([]element, error) {
	var elems []element
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("decode legacy array: %w", err)
	}
	return elems, nil
}

// text reads a field that legacy code stored as either a string or a number.
func (e element) text(key string) string {
	raw, ok := e[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// into decodes the element into dst, dropping fields that never carry over:
// legacy ids, creation times and the log kind discriminator.
func into[T any](e element, rename map[string]string, dst *T) error {
	clean := make(map[string]json.RawMessage, len(e))
	for k, v := range e {
		switch k {
		case "id", "createdAt", "commandId", "kind":
			continue
		}
		if to, ok := rename[k]; ok {
			k = to
		}
		clean[k] = v
	}
	data, err := json.Marshal(clean)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// logKind classifies a legacy log entry. Entries written before the kind
// field existed are guessed from their shape.
func logKind(e element) string {
	if k := strings.ToLower(e.text("kind")); k != "" {
		return k
	}
	switch {
	case e["mealType"] != nil:
		return "meal"
	case e["startTime"] != nil:
		return "nap"
	case e["location"] != nil && e["type"] != nil:
		return "potty"
	default:
		return "practice"
	}
}

// currentUser accepts either a bare name or an object with a name field.
func currentUser(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Name != "" {
		return obj.Name
	}
	if s, err := strconv.Unquote(string(raw)); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
