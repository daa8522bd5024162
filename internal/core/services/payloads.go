package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gigworks/gigtax/internal/apperrors"
	"github.com/gigworks/gigtax/internal/core/domain"
	"github.com/shopspring/decimal"
)

// payloadFields are the canonical fields every platform adapter must extract
// from its raw payload.
type payloadFields struct {
	SourceRef   string
	Amount      decimal.Decimal
	Description string
	OccurredAt  time.Time
}

// decodePayload dispatches the raw payload to the adapter for its platform.
// The payloads form a tagged union over the known platform set; an unknown
// tag is rejected upstream, so reaching the default branch is a bug.
func decodePayload(platform domain.Platform, raw json.RawMessage) (payloadFields, error) {
	switch platform {
	case domain.PlatformUber:
		return decodeUberPayload(raw)
	case domain.PlatformLyft:
		return decodeLyftPayload(raw)
	case domain.PlatformDoorDash:
		return decodeDoorDashPayload(raw)
	case domain.PlatformUpwork:
		return decodeUpworkPayload(raw)
	case domain.PlatformFiverr:
		return decodeFiverrPayload(raw)
	case domain.PlatformManual:
		return decodeManualPayload(raw)
	default:
		return payloadFields{}, fmt.Errorf("no payload adapter for platform %q: %w", platform, apperrors.ErrMalformedRecord)
	}
}

type uberPayload struct {
	TripUUID    string      `json:"trip_uuid"`
	NetPayout   json.Number `json:"net_payout"`
	Description string      `json:"description"`
	EventTime   string      `json:"event_time"` // RFC 3339
}

func decodeUberPayload(raw json.RawMessage) (payloadFields, error) {
	var p uberPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return payloadFields{}, malformed("uber payload", err)
	}
	if p.TripUUID == "" {
		return payloadFields{}, malformedField("trip_uuid")
	}
	amount, err := parseDecimalField("net_payout", p.NetPayout)
	if err != nil {
		return payloadFields{}, err
	}
	occurredAt, err := parseTimeField("event_time", p.EventTime, time.RFC3339)
	if err != nil {
		return payloadFields{}, err
	}
	return payloadFields{SourceRef: p.TripUUID, Amount: amount, Description: p.Description, OccurredAt: occurredAt}, nil
}

type lyftPayload struct {
	RideID       string      `json:"ride_id"`
	AmountCents  json.Number `json:"amount_cents"`
	Note         string      `json:"note"`
	OccurredAtMS json.Number `json:"occurred_at_ms"` // Unix milliseconds
}

func decodeLyftPayload(raw json.RawMessage) (payloadFields, error) {
	var p lyftPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return payloadFields{}, malformed("lyft payload", err)
	}
	if p.RideID == "" {
		return payloadFields{}, malformedField("ride_id")
	}
	cents, err := p.AmountCents.Int64()
	if err != nil || p.AmountCents == "" {
		return payloadFields{}, malformedField("amount_cents")
	}
	millis, err := p.OccurredAtMS.Int64()
	if err != nil || p.OccurredAtMS == "" {
		return payloadFields{}, malformedField("occurred_at_ms")
	}
	return payloadFields{
		SourceRef:   p.RideID,
		Amount:      decimal.NewFromInt(cents).Shift(-2),
		Description: p.Note,
		OccurredAt:  time.UnixMilli(millis).UTC(),
	}, nil
}

type doorDashPayload struct {
	DeliveryID string      `json:"delivery_id"`
	Payout     json.Number `json:"payout"`
	Memo       string      `json:"memo"`
	Timestamp  json.Number `json:"timestamp"` // Unix seconds
}

func decodeDoorDashPayload(raw json.RawMessage) (payloadFields, error) {
	var p doorDashPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return payloadFields{}, malformed("doordash payload", err)
	}
	if p.DeliveryID == "" {
		return payloadFields{}, malformedField("delivery_id")
	}
	amount, err := parseDecimalField("payout", p.Payout)
	if err != nil {
		return payloadFields{}, err
	}
	seconds, err := p.Timestamp.Int64()
	if err != nil || p.Timestamp == "" {
		return payloadFields{}, malformedField("timestamp")
	}
	return payloadFields{
		SourceRef:   p.DeliveryID,
		Amount:      amount,
		Description: p.Memo,
		OccurredAt:  time.Unix(seconds, 0).UTC(),
	}, nil
}

type upworkPayload struct {
	Reference   string      `json:"reference"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	Date        string      `json:"date"` // YYYY-MM-DD
}

func decodeUpworkPayload(raw json.RawMessage) (payloadFields, error) {
	var p upworkPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return payloadFields{}, malformed("upwork payload", err)
	}
	if p.Reference == "" {
		return payloadFields{}, malformedField("reference")
	}
	amount, err := parseDecimalField("amount", p.Amount)
	if err != nil {
		return payloadFields{}, err
	}
	occurredAt, err := parseTimeField("date", p.Date, "2006-01-02")
	if err != nil {
		return payloadFields{}, err
	}
	return payloadFields{SourceRef: p.Reference, Amount: amount, Description: p.Description, OccurredAt: occurredAt}, nil
}

type fiverrPayload struct {
	OrderID   string      `json:"order_id"`
	Value     json.Number `json:"value"`
	Title     string      `json:"title"`
	CreatedAt string      `json:"created_at"` // RFC 3339
}

func decodeFiverrPayload(raw json.RawMessage) (payloadFields, error) {
	var p fiverrPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return payloadFields{}, malformed("fiverr payload", err)
	}
	if p.OrderID == "" {
		return payloadFields{}, malformedField("order_id")
	}
	amount, err := parseDecimalField("value", p.Value)
	if err != nil {
		return payloadFields{}, err
	}
	occurredAt, err := parseTimeField("created_at", p.CreatedAt, time.RFC3339)
	if err != nil {
		return payloadFields{}, err
	}
	return payloadFields{SourceRef: p.OrderID, Amount: amount, Description: p.Title, OccurredAt: occurredAt}, nil
}

type manualPayload struct {
	ExternalID  string      `json:"external_id"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	OccurredAt  string      `json:"occurred_at"` // RFC 3339
}

func decodeManualPayload(raw json.RawMessage) (payloadFields, error) {
	var p manualPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return payloadFields{}, malformed("manual payload", err)
	}
	if p.ExternalID == "" {
		return payloadFields{}, malformedField("external_id")
	}
	amount, err := parseDecimalField("amount", p.Amount)
	if err != nil {
		return payloadFields{}, err
	}
	occurredAt, err := parseTimeField("occurred_at", p.OccurredAt, time.RFC3339)
	if err != nil {
		return payloadFields{}, err
	}
	return payloadFields{SourceRef: p.ExternalID, Amount: amount, Description: p.Description, OccurredAt: occurredAt}, nil
}

func parseDecimalField(name string, n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, malformedField(name)
	}
	amount, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, malformedField(name)
	}
	return amount, nil
}

func parseTimeField(name, value, layout string) (time.Time, error) {
	if value == "" {
		return time.Time{}, malformedField(name)
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, malformedField(name)
	}
	return t.UTC(), nil
}

func malformed(what string, err error) error {
	return fmt.Errorf("%s: %v: %w", what, err, apperrors.ErrMalformedRecord)
}

func malformedField(name string) error {
	return fmt.Errorf("missing or unparseable field %q: %w", name, apperrors.ErrMalformedRecord)
}
