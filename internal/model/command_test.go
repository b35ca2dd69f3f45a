package model

import "testing"

func TestValidateCommandName(t *testing.T) {
	tests := map[string]struct {
		input   string
		wantErr bool
	}{
		"plain":             {input: "review"},
		"hyphenated":        {input: "code-review"},
		"underscored":       {input: "plan_work"},
		"mixed separators":  {input: "a_b-c"},
		"empty":             {input: "", wantErr: true},
		"uppercase":         {input: "Review", wantErr: true},
		"digit":             {input: "review2", wantErr: true},
		"space":             {input: "code review", wantErr: true},
		"path traversal":    {input: "../escape", wantErr: true},
		"unicode character": {input: "revü", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidateCommandName(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateCommandName(%q) succeeded, want error", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateCommandName(%q) error = %v", tt.input, err)
			}
		})
	}
}
