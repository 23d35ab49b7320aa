package reasoning

import (
	"context"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"crypto-signal-engine/internal/signal"
)

func TestParseJSONFromTextDirect(t *testing.T) {
	var out llmOutput
	err := parseJSONFromText(`{"summary":"ok","reasons":["a","b"]}`, &out)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if out.Summary != "ok" || len(out.Reasons) != 2 {
		t.Errorf("unexpected output: %+v", out)
	}
}

func TestParseJSONFromTextFenced(t *testing.T) {
	// Models often wrap JSON in markdown fences despite the format hint
	text := "Here is the result:\n```json\n{\"summary\":\"fenced\"}\n```"
	var out llmOutput
	if err := parseJSONFromText(text, &out); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if out.Summary != "fenced" {
		t.Errorf("summary = %q, want fenced", out.Summary)
	}
}

func TestParseJSONFromTextNoObject(t *testing.T) {
	var out llmOutput
	if err := parseJSONFromText("no json here", &out); err == nil {
		t.Error("expected error for text without a JSON object")
	}
}

func TestCleanStringList(t *testing.T) {
	got := cleanStringList([]string{"  a  ", "", "b", "c", "d", "e", "f", "g"}, 4, 6, 180)
	want := []string{"a", "b", "c", "d", "e", "f"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("cleanStringList = %v, want %v", got, want)
	}
}

func TestCleanStringListTooFew(t *testing.T) {
	if got := cleanStringList([]string{"only", "two"}, 4, 6, 180); got != nil {
		t.Errorf("expected nil for under-filled list, got %v", got)
	}
}

func TestCleanStringListCapsLength(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	got := cleanStringList([]string{string(long), "b"}, 2, 3, 180)
	if got == nil || len(got[0]) != 180 {
		t.Errorf("expected first entry capped at 180 chars, got %v", got)
	}
}

func TestEnhanceWithoutAPIKey(t *testing.T) {
	enhancer := NewEnhancer(NewClient(ClientConfig{}), zerolog.Nop())

	enhancement := enhancer.Enhance(context.Background(), signal.Result{Signal: signal.SignalHold})
	if enhancement.Applied {
		t.Error("enhancement must not apply without an API key")
	}
	if enhancement.Warning == "" {
		t.Error("skipped enhancement must carry a warning")
	}
}
