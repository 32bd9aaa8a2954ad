package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "simple ID", id: "ses_abc123"},
		{name: "with hyphens", id: "ses-abc-123"},
		{name: "with dots", id: "ses.abc.123"},
		{name: "empty", id: "", wantErr: true},
		{name: "forward slash", id: "../etc/passwd", wantErr: true},
		{name: "backslash", id: `..\windows`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSessionID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateThreadID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "numeric snowflake", id: "1234567890123456789"},
		{name: "alphanumeric", id: "thread_ABC-123"},
		{name: "empty", id: "", wantErr: true},
		{name: "with slash", id: "a/b", wantErr: true},
		{name: "with dots", id: "..", wantErr: true},
		{name: "with spaces", id: "thread 1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateThreadID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
