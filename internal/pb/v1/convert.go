package v1

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/activity-alarms/internal/domain/alarm"
)

// Struct field names of an alarm message.
const (
	FieldID          = "id"
	FieldTimestampMs = "timestamp_ms"
	FieldTitle       = "title"
	FieldVibrate     = "vibrate"
	FieldCreatedAtMs = "created_at_ms"
)

// errNotAStruct is returned when a list element is not an alarm message.
var errNotAStruct = errors.New("list element is not a struct")

// AlarmToStruct converts a domain alarm into its wire message.
func AlarmToStruct(a *domain.Scheduled) (*structpb.Struct, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	fields := map[string]any{
		FieldID:          a.ID,
		FieldTimestampMs: float64(a.At.UnixMilli()),
		FieldTitle:       a.Title,
		FieldVibrate:     a.Vibrate,
	}

	if !a.CreatedAt.IsZero() {
		fields[FieldCreatedAtMs] = float64(a.CreatedAt.UnixMilli())
	}

	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build alarm message: %w", err)
	}

	return msg, nil
}

// AlarmFromStruct converts a wire message into a validated domain alarm.
func AlarmFromStruct(msg *structpb.Struct) (*domain.Scheduled, error) {
	fields := msg.GetFields()

	a := &domain.Scheduled{
		ID:      fields[FieldID].GetStringValue(),
		Title:   fields[FieldTitle].GetStringValue(),
		Vibrate: fields[FieldVibrate].GetBoolValue(),
	}

	if ms := int64(fields[FieldTimestampMs].GetNumberValue()); ms > 0 {
		a.At = time.UnixMilli(ms)
	}

	if ms := int64(fields[FieldCreatedAtMs].GetNumberValue()); ms > 0 {
		a.CreatedAt = time.UnixMilli(ms)
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	return a, nil
}

// AlarmsToList converts domain alarms into a list message.
func AlarmsToList(alarms []*domain.Scheduled) (*structpb.ListValue, error) {
	list := &structpb.ListValue{
		Values: make([]*structpb.Value, 0, len(alarms)),
	}

	for _, a := range alarms {
		msg, err := AlarmToStruct(a)
		if err != nil {
			return nil, err
		}

		list.Values = append(list.Values, structpb.NewStructValue(msg))
	}

	return list, nil
}

// AlarmsFromList converts a list message into domain alarms.
func AlarmsFromList(list *structpb.ListValue) ([]*domain.Scheduled, error) {
	alarms := make([]*domain.Scheduled, 0, len(list.GetValues()))

	for i, value := range list.GetValues() {
		msg := value.GetStructValue()
		if msg == nil {
			return nil, fmt.Errorf("element %d: %w", i, errNotAStruct)
		}

		a, err := AlarmFromStruct(msg)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		alarms = append(alarms, a)
	}

	return alarms, nil
}
