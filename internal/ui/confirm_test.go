package ui

import (
	"strings"
	"testing"
)

func TestReaderConfirmer(t *testing.T) {
	tests := map[string]struct {
		input string
		want  bool
	}{
		"yes":                    {input: "y\n", want: true},
		"yes spelled out":        {input: "yes\n", want: true},
		"uppercase yes":          {input: "Y\n", want: true},
		"no":                     {input: "n\n", want: false},
		"no spelled out":         {input: "no\n", want: false},
		"empty defaults to no":   {input: "\n", want: false},
		"eof counts as no":       {input: "", want: false},
		"garbage then yes":       {input: "maybe\ny\n", want: true},
		"whitespace around yes":  {input: "  y  \n", want: true},
		"garbage then eof is no": {input: "huh\n", want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var out strings.Builder
			c := NewReaderConfirmer(strings.NewReader(tt.input), &out)

			got, err := c.Confirm("Proceed?")
			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(out.String(), "Proceed? [y/N]:") {
				t.Errorf("prompt not written: %q", out.String())
			}
		})
	}
}

func TestReaderConfirmer_Reprompts(t *testing.T) {
	var out strings.Builder
	c := NewReaderConfirmer(strings.NewReader("what\nn\n"), &out)

	got, err := c.Confirm("Proceed?")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if got {
		t.Error("Confirm() = true, want false")
	}
	if strings.Count(out.String(), "[y/N]") != 2 {
		t.Errorf("expected two prompts, got output %q", out.String())
	}
}

func TestStaticConfirmer(t *testing.T) {
	for _, answer := range []bool{true, false} {
		got, err := StaticConfirmer{Answer: answer}.Confirm("anything")
		if err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if got != answer {
			t.Errorf("Confirm() = %v, want %v", got, answer)
		}
	}
}
