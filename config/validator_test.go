package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidation(t *testing.T) {
	validator, err := NewSchemaValidator()
	require.NoError(t, err)

	tests := []struct {
		name     string
		config   map[string]interface{}
		errorMsg string
	}{
		{
			name: "valid config",
			config: map[string]interface{}{
				"version":             "1.0",
				"approval_categories": []interface{}{"Library-Compliance"},
				"hooks_dir":           "/srv/gerrit/hooks",
				"install": map[string]interface{}{
					"only": []interface{}{"change-*"},
				},
				"handlers": map[string]interface{}{
					"patchset-created": []interface{}{
						map[string]interface{}{"command": "notify-ci", "args": []interface{}{"--fast"}, "timeout": "30s"},
					},
				},
			},
		},
		{
			name: "extensions are allowed",
			config: map[string]interface{}{
				"logging": map[string]interface{}{"level": "debug"},
			},
		},
		{
			name: "wrong type",
			config: map[string]interface{}{
				"hooks_dir": []interface{}{"a", "b"},
			},
			errorMsg: "/hooks_dir",
		},
		{
			name: "handler without command",
			config: map[string]interface{}{
				"handlers": map[string]interface{}{
					"patchset-created": []interface{}{
						map[string]interface{}{"args": []interface{}{"x"}},
					},
				},
			},
			errorMsg: "command",
		},
		{
			name: "unknown handler field",
			config: map[string]interface{}{
				"handlers": map[string]interface{}{
					"submit": []interface{}{
						map[string]interface{}{"command": "gate", "shell": true},
					},
				},
			},
			errorMsg: "shell",
		},
		{
			name: "unknown install field",
			config: map[string]interface{}{
				"install": map[string]interface{}{"include": []interface{}{"submit"}},
			},
			errorMsg: "include",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.config)
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema validation failed")
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}
