package signal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Field is one caller-supplied extra key/value pair, kept in the order it
// appeared in the payload.
type Field struct {
	Key   string
	Value string
}

// Overrides carries per-request recipient overrides; when set for a channel
// kind they replace the configured defaults for that kind.
type Overrides struct {
	TelegramChatIDs []string
	LineRecipients  []string
}

// Signal is one validated trading-signal notification
type Signal struct {
	Title     string `validate:"required"`
	Action    string `validate:"required,oneof=BUY SELL"`
	Symbol    string `validate:"required"`
	Price     string `validate:"required"`
	Timestamp string
	Extras    []Field
	Overrides Overrides
}

// ValidationError names the payload field that failed validation
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

var validate = validator.New()

// control fields recognized by the relay; everything else is echoed into the
// formatted message in submission order
var controlFields = map[string]bool{
	"title":    true,
	"datetime": true,
	"action":   true,
	"symbol":   true,
	"price":    true,
	"chat_id":  true,
	"chat_ids": true,
	"line_to":  true,
}

// ParsePayload decodes and validates a trading-signal payload. Extra fields
// are preserved in insertion order, which requires walking the JSON token
// stream instead of unmarshalling into a map.
func ParsePayload(data []byte, now func() time.Time) (*Signal, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, &ValidationError{Field: "body", Reason: "payload is not valid JSON"}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &ValidationError{Field: "body", Reason: "payload must be a JSON object"}
	}

	sig := &Signal{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &ValidationError{Field: "body", Reason: "payload is not valid JSON"}
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, &ValidationError{Field: "body", Reason: "payload is not valid JSON"}
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, &ValidationError{Field: key, Reason: "value is not valid JSON"}
		}

		if err := sig.assign(key, raw); err != nil {
			return nil, err
		}
	}

	sig.Action = strings.ToUpper(strings.TrimSpace(sig.Action))

	if err := validate.Struct(sig); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) && len(invalid) > 0 {
			field := strings.ToLower(invalid[0].Field())
			reason := "is required"
			if invalid[0].Tag() == "oneof" {
				reason = "must be BUY or SELL"
			}
			return nil, &ValidationError{Field: field, Reason: reason}
		}
		return nil, &ValidationError{Field: "body", Reason: err.Error()}
	}

	if sig.Timestamp == "" {
		sig.Timestamp = now().Format("2006-01-02 15:04:05")
	}

	return sig, nil
}

func (s *Signal) assign(key string, raw json.RawMessage) error {
	if !controlFields[key] {
		s.Extras = append(s.Extras, Field{Key: key, Value: scalarString(raw)})
		return nil
	}

	switch key {
	case "title":
		s.Title = scalarString(raw)
	case "datetime":
		s.Timestamp = scalarString(raw)
	case "action":
		s.Action = scalarString(raw)
	case "symbol":
		s.Symbol = scalarString(raw)
	case "price":
		s.Price = scalarString(raw)
	case "chat_id":
		if v := scalarString(raw); v != "" {
			s.Overrides.TelegramChatIDs = []string{v}
		}
	case "chat_ids":
		ids, err := stringList(raw)
		if err != nil {
			return &ValidationError{Field: key, Reason: "must be a string or a list of strings"}
		}
		s.Overrides.TelegramChatIDs = ids
	case "line_to":
		ids, err := stringList(raw)
		if err != nil {
			return &ValidationError{Field: key, Reason: "must be a string or a list of strings"}
		}
		s.Overrides.LineRecipients = ids
	}
	return nil
}

// scalarString renders a JSON value as plain text: strings unquoted, numbers
// and booleans verbatim, anything else as compact JSON.
func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func stringList(raw json.RawMessage) ([]string, error) {
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if one == "" {
			return nil, nil
		}
		return []string{one}, nil
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many, nil
	}
	return nil, fmt.Errorf("not a string or string list")
}
