package validation

import (
	"testing"

	"github.com/kbukum/voxscribe/errors"
)

type event struct {
	Type       string `json:"type" validate:"required,oneof=start result error end"`
	ErrorCode  string `json:"error" validate:"max=64"`
	RetryCount int
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		in        event
		wantErr   bool
		wantField string
	}{
		{"valid", event{Type: "result"}, false, ""},
		{"missing type", event{}, true, "type"},
		{"unknown type", event{Type: "pause"}, true, "type"},
		{"long error", event{Type: "error", ErrorCode: string(make([]byte, 65))}, true, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err == nil {
				return
			}
			appErr, ok := errors.AsAppError(err)
			if !ok {
				t.Fatalf("expected AppError, got %T", err)
			}
			if appErr.Code != errors.ErrCodeInvalidInput {
				t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
			}
			fields, _ := appErr.Details["fields"].([]FieldError)
			if len(fields) != 1 || fields[0].Field != tt.wantField {
				t.Errorf("expected field %q, got %+v", tt.wantField, fields)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("RetryCount"); got != "retry_count" {
		t.Errorf("expected 'retry_count', got %q", got)
	}
}
