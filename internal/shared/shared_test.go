package shared

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestMarshalJSON(t *testing.T) {
	payload := map[string]any{
		"playlist_id": "abc",
		"tracks":      []string{"spotify:track:1", "spotify:track:2"},
	}

	t.Run("pretty uses two space indentation", func(t *testing.T) {
		data, err := MarshalJSON(payload, true)
		if err != nil {
			t.Fatalf("MarshalJSON() error = %v", err)
		}

		want := "{\n  \"playlist_id\": \"abc\",\n  \"tracks\": [\n    \"spotify:track:1\",\n    \"spotify:track:2\"\n  ]\n}"
		if string(data) != want {
			t.Errorf("MarshalJSON() = %q, want %q", data, want)
		}
	})

	t.Run("deterministic output", func(t *testing.T) {
		first, _ := MarshalJSON(payload, true)
		for range 10 {
			next, _ := MarshalJSON(payload, true)
			if !bytes.Equal(first, next) {
				t.Fatal("MarshalJSON() produced different bytes for the same input")
			}
		}
	})

	t.Run("compact", func(t *testing.T) {
		data, err := MarshalJSON([]int{1, 2}, false)
		if err != nil {
			t.Fatalf("MarshalJSON() error = %v", err)
		}
		if string(data) != "[1,2]" {
			t.Errorf("MarshalJSON() = %s, want [1,2]", data)
		}
	})

	t.Run("keeps HTML characters unescaped", func(t *testing.T) {
		data, err := MarshalJSON(map[string]string{"song_name": "Rock & Roll <Live>"}, true)
		if err != nil {
			t.Fatalf("MarshalJSON() error = %v", err)
		}

		want := "{\n  \"song_name\": \"Rock & Roll <Live>\"\n}"
		if string(data) != want {
			t.Errorf("MarshalJSON() = %q, want %q", data, want)
		}
	})

	t.Run("unsupported value", func(t *testing.T) {
		if _, err := MarshalJSON(make(chan int), true); err == nil {
			t.Error("expected error for channel value")
		}
	})
}

func TestValidationError(t *testing.T) {
	tc := []struct {
		name    string
		err     error
		param   string
		message string
	}{
		{
			name:    "missing parameter",
			err:     MissingParam("access_token"),
			param:   "access_token",
			message: "Parameter access_token required",
		},
		{
			name:    "invalid parameter",
			err:     InvalidParam("limit", "Value cannot exceed %d.", 50),
			param:   "limit",
			message: "Invalid parameter 'limit'. Value cannot exceed 50.",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.message {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.message)
			}

			wrapped := fmt.Errorf("collect: %w", tt.err)
			if !errors.Is(wrapped, ErrValidation) {
				t.Error("expected wrapped error to match ErrValidation")
			}

			var ve *ValidationError
			if !errors.As(wrapped, &ve) {
				t.Fatal("expected errors.As to find ValidationError")
			}
			if ve.Param != tt.param {
				t.Errorf("Param = %s, want %s", ve.Param, tt.param)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("GenerateID() = %s is not a uuid: %v", id, err)
	}
	if id == GenerateID() {
		t.Error("GenerateID() returned the same id twice")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := WithLogger(NewLogger(&buf), "component", "test")
	logger.Info("hello")

	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "component=test") {
		t.Errorf("unexpected log output %q", out)
	}
}
