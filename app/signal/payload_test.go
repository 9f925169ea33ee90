package signal

import (
	"errors"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
}

func TestParsePayloadValid(t *testing.T) {
	payload := []byte(`{"title":"t","action":"buy","symbol":"BTCUSD","price":"45000"}`)

	sig, err := ParsePayload(payload, fixedNow)
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}

	if sig.Action != "BUY" {
		t.Errorf("Expected action normalized to 'BUY', got '%s'", sig.Action)
	}
	if sig.Symbol != "BTCUSD" {
		t.Errorf("Expected symbol 'BTCUSD', got '%s'", sig.Symbol)
	}
	if sig.Price != "45000" {
		t.Errorf("Expected price '45000', got '%s'", sig.Price)
	}
	if sig.Timestamp != "2024-03-15 10:30:00" {
		t.Errorf("Expected timestamp defaulted to now, got '%s'", sig.Timestamp)
	}
}

func TestParsePayloadRejectsUnknownAction(t *testing.T) {
	payload := []byte(`{"title":"t","action":"HOLD","symbol":"X","price":"1"}`)

	_, err := ParsePayload(payload, fixedNow)
	if err == nil {
		t.Fatal("Expected validation error for action HOLD")
	}

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	if vErr.Field != "action" {
		t.Errorf("Expected error to name the action field, got '%s'", vErr.Field)
	}
}

func TestParsePayloadRejectsMissingPrice(t *testing.T) {
	payload := []byte(`{"title":"t","action":"BUY","symbol":"X"}`)

	_, err := ParsePayload(payload, fixedNow)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected *ValidationError, got %v", err)
	}
	if vErr.Field != "price" {
		t.Errorf("Expected error to name the price field, got '%s'", vErr.Field)
	}
}

func TestParsePayloadRejectsMissingTitle(t *testing.T) {
	payload := []byte(`{"action":"SELL","symbol":"X","price":"1"}`)

	_, err := ParsePayload(payload, fixedNow)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected *ValidationError, got %v", err)
	}
	if vErr.Field != "title" {
		t.Errorf("Expected error to name the title field, got '%s'", vErr.Field)
	}
}

func TestParsePayloadRejectsNonObject(t *testing.T) {
	for _, payload := range []string{`[]`, `"text"`, `{bad json`} {
		if _, err := ParsePayload([]byte(payload), fixedNow); err == nil {
			t.Errorf("Expected error for payload %s", payload)
		}
	}
}

func TestParsePayloadPreservesExtraFieldOrder(t *testing.T) {
	payload := []byte(`{"title":"t","action":"BUY","symbol":"X","price":"1",
		"stopLoss":"44000","takeProfit":"46000","note":"scalp"}`)

	sig, err := ParsePayload(payload, fixedNow)
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}

	if len(sig.Extras) != 3 {
		t.Fatalf("Expected 3 extra fields, got %d", len(sig.Extras))
	}
	want := []string{"stopLoss", "takeProfit", "note"}
	for i, key := range want {
		if sig.Extras[i].Key != key {
			t.Errorf("Extra field %d: expected key '%s', got '%s'", i, key, sig.Extras[i].Key)
		}
	}
}

func TestParsePayloadNumericValues(t *testing.T) {
	payload := []byte(`{"title":"t","action":"BUY","symbol":"X","price":45000.5,"qty":2}`)

	sig, err := ParsePayload(payload, fixedNow)
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}

	if sig.Price != "45000.5" {
		t.Errorf("Expected numeric price rendered as '45000.5', got '%s'", sig.Price)
	}
	if len(sig.Extras) != 1 || sig.Extras[0].Value != "2" {
		t.Errorf("Expected qty extra '2', got %+v", sig.Extras)
	}
}

func TestParsePayloadExplicitDatetime(t *testing.T) {
	payload := []byte(`{"title":"t","datetime":"2024-01-02 03:04:05","action":"BUY","symbol":"X","price":"1"}`)

	sig, err := ParsePayload(payload, fixedNow)
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}
	if sig.Timestamp != "2024-01-02 03:04:05" {
		t.Errorf("Expected supplied datetime to be kept, got '%s'", sig.Timestamp)
	}
}

func TestParsePayloadRecipientOverrides(t *testing.T) {
	payload := []byte(`{"title":"t","action":"BUY","symbol":"X","price":"1",
		"chat_id":"-100500","line_to":["U1","U2"]}`)

	sig, err := ParsePayload(payload, fixedNow)
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}

	if len(sig.Overrides.TelegramChatIDs) != 1 || sig.Overrides.TelegramChatIDs[0] != "-100500" {
		t.Errorf("Expected telegram override ['-100500'], got %v", sig.Overrides.TelegramChatIDs)
	}
	if len(sig.Overrides.LineRecipients) != 2 {
		t.Errorf("Expected 2 line recipients, got %v", sig.Overrides.LineRecipients)
	}
	if len(sig.Extras) != 0 {
		t.Errorf("Override fields must not leak into extras, got %+v", sig.Extras)
	}
}

func TestParsePayloadChatIDsList(t *testing.T) {
	payload := []byte(`{"title":"t","action":"BUY","symbol":"X","price":"1","chat_ids":["-1","-2"]}`)

	sig, err := ParsePayload(payload, fixedNow)
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}
	if len(sig.Overrides.TelegramChatIDs) != 2 {
		t.Errorf("Expected 2 chat IDs, got %v", sig.Overrides.TelegramChatIDs)
	}
}

func TestParsePayloadBadOverrideType(t *testing.T) {
	payload := []byte(`{"title":"t","action":"BUY","symbol":"X","price":"1","chat_ids":{"a":1}}`)

	if _, err := ParsePayload(payload, fixedNow); err == nil {
		t.Error("Expected validation error for object-valued chat_ids")
	}
}
