package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"applyflow/pkg/models"
)

func samplePrompt(processID string) ConfirmationPrompt {
	report := &models.FillReport{}
	report.Add(models.FieldSpec{Label: "Email", Selector: "#email", Kind: models.FieldEmail, Required: true}, models.FieldFilled, "")
	report.Add(models.FieldSpec{Label: "Gender", Selector: "#gender", Kind: models.FieldSelect}, models.FieldSkipped, "no value to fill")

	return ConfirmationPrompt{
		ProcessID: processID,
		URL:       "https://jobs.example.com/posting/42",
		SiteKey:   "jobs.example.com",
		Submit:    models.SubmitSpec{Text: "Submit Application", Selector: "#submit"},
		Report:    report,
	}
}

func TestTerminalConfirmerYes(t *testing.T) {
	var out bytes.Buffer
	tc := NewTerminalConfirmer(strings.NewReader("y\n"), &out)

	decision, err := tc.Confirm(context.Background(), samplePrompt("p1"))
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if decision != DecisionConfirmed {
		t.Errorf("decision = %v, want confirmed", decision)
	}
	if !strings.Contains(out.String(), "Submit Application") {
		t.Errorf("prompt output missing submit text:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Gender") {
		t.Errorf("prompt output missing skipped field:\n%s", out.String())
	}
}

func TestTerminalConfirmerDefaultsToDecline(t *testing.T) {
	cases := []string{"n\n", "\n", "whatever\n"}
	for _, input := range cases {
		var out bytes.Buffer
		tc := NewTerminalConfirmer(strings.NewReader(input), &out)

		decision, err := tc.Confirm(context.Background(), samplePrompt("p1"))
		if err != nil {
			t.Fatalf("Confirm(%q) error = %v", input, err)
		}
		if decision != DecisionDeclined {
			t.Errorf("Confirm(%q) = %v, want declined", input, decision)
		}
	}
}

func TestTerminalConfirmerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// A reader that never delivers a line
	blocked, _ := newBlockingReader()
	var out bytes.Buffer
	tc := NewTerminalConfirmer(blocked, &out)

	decision, err := tc.Confirm(ctx, samplePrompt("p1"))
	if err == nil {
		t.Fatal("Confirm() error = nil, want context error")
	}
	if decision != DecisionDeclined {
		t.Errorf("decision = %v, want declined", decision)
	}
}

func newBlockingReader() (*blockingReader, chan struct{}) {
	done := make(chan struct{})
	return &blockingReader{done: done}, done
}

type blockingReader struct {
	done chan struct{}
}

func (b *blockingReader) Read(p []byte) (int, error) {
	<-b.done
	return 0, nil
}

func TestPendingConfirmerResolveConfirmed(t *testing.T) {
	pc := NewPendingConfirmer()

	type result struct {
		decision Decision
		err      error
	}
	ch := make(chan result, 1)
	go func() {
		d, err := pc.Confirm(context.Background(), samplePrompt("p1"))
		ch <- result{d, err}
	}()

	// Wait for the gate to register before resolving
	deadline := time.After(2 * time.Second)
	for len(pc.List()) == 0 {
		select {
		case <-deadline:
			t.Fatal("confirmation never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	pending := pc.List()
	if pending[0].ProcessID != "p1" || pending[0].SiteKey != "jobs.example.com" {
		t.Errorf("pending entry = %+v", pending[0])
	}

	if err := pc.Resolve("p1", true); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	res := <-ch
	if res.err != nil {
		t.Fatalf("Confirm() error = %v", res.err)
	}
	if res.decision != DecisionConfirmed {
		t.Errorf("decision = %v, want confirmed", res.decision)
	}

	if len(pc.List()) != 0 {
		t.Error("gate still listed after resolution")
	}
}

func TestPendingConfirmerResolveUnknownProcess(t *testing.T) {
	pc := NewPendingConfirmer()
	if err := pc.Resolve("missing", true); err == nil {
		t.Fatal("Resolve() error = nil, want unknown process error")
	}
}

func TestPendingConfirmerContextExpiryDeclines(t *testing.T) {
	pc := NewPendingConfirmer()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	decision, err := pc.Confirm(ctx, samplePrompt("p1"))
	if err == nil {
		t.Fatal("Confirm() error = nil, want context error")
	}
	if decision != DecisionDeclined {
		t.Errorf("decision = %v, want declined", decision)
	}
	if len(pc.List()) != 0 {
		t.Error("gate still listed after context expiry")
	}
}
