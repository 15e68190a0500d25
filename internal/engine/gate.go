package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"applyflow/pkg/models"
)

// Decision is the human's answer at the submission gate
type Decision int

const (
	DecisionDeclined Decision = iota
	DecisionConfirmed
)

// ConfirmationPrompt carries everything a human needs to judge a prepared
// submission before it is clicked
type ConfirmationPrompt struct {
	ProcessID string
	URL       string
	SiteKey   string
	Submit    models.SubmitSpec
	Report    *models.FillReport
}

// Confirmer gates form submission behind an explicit human decision
type Confirmer interface {
	Confirm(ctx context.Context, prompt ConfirmationPrompt) (Decision, error)
}

// TerminalConfirmer asks for confirmation on an interactive terminal
type TerminalConfirmer struct {
	in  io.Reader
	out io.Writer
}

// NewTerminalConfirmer creates a confirmer over the given streams
func NewTerminalConfirmer(in io.Reader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{in: in, out: out}
}

// Confirm prints the fill summary and blocks for a yes/no answer
func (tc *TerminalConfirmer) Confirm(ctx context.Context, prompt ConfirmationPrompt) (Decision, error) {
	fmt.Fprintf(tc.out, "\nReady to submit application at %s\n", prompt.URL)
	fmt.Fprintf(tc.out, "Submit button: %q (selector %s)\n", prompt.Submit.Text, prompt.Submit.Selector)

	if prompt.Report != nil {
		fmt.Fprintf(tc.out, "Fields: %d filled, %d skipped, %d failed\n",
			prompt.Report.Count(models.FieldFilled),
			prompt.Report.Count(models.FieldSkipped),
			prompt.Report.Count(models.FieldFailed))
		for _, res := range prompt.Report.Results {
			if res.Status == models.FieldFilled {
				continue
			}
			fmt.Fprintf(tc.out, "  %s: %s (%s)\n", res.Status, res.Label, res.Reason)
		}
	}

	fmt.Fprint(tc.out, "Review the browser window. Submit now? [y/N]: ")

	type answer struct {
		text string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		reader := bufio.NewReader(tc.in)
		line, err := reader.ReadString('\n')
		ch <- answer{text: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return DecisionDeclined, ctx.Err()
	case a := <-ch:
		if a.err != nil && a.text == "" {
			return DecisionDeclined, a.err
		}
		switch strings.ToLower(strings.TrimSpace(a.text)) {
		case "y", "yes":
			return DecisionConfirmed, nil
		default:
			return DecisionDeclined, nil
		}
	}
}

// pendingGate is one submission waiting on an HTTP resolution
type pendingGate struct {
	prompt    ConfirmationPrompt
	createdAt time.Time
	resolved  chan Decision
}

// PendingConfirmer parks submissions until an HTTP client resolves them. It
// backs the server's pending-confirmation endpoints.
type PendingConfirmer struct {
	mu      sync.Mutex
	pending map[string]*pendingGate
}

// NewPendingConfirmer creates an empty confirmation registry
func NewPendingConfirmer() *PendingConfirmer {
	return &PendingConfirmer{
		pending: make(map[string]*pendingGate),
	}
}

// Confirm registers the prompt and blocks until it is resolved or the context
// is done. An unresolved gate counts as declined when the context expires.
func (pc *PendingConfirmer) Confirm(ctx context.Context, prompt ConfirmationPrompt) (Decision, error) {
	gate := &pendingGate{
		prompt:    prompt,
		createdAt: time.Now(),
		resolved:  make(chan Decision, 1),
	}

	pc.mu.Lock()
	pc.pending[prompt.ProcessID] = gate
	pc.mu.Unlock()

	defer func() {
		pc.mu.Lock()
		delete(pc.pending, prompt.ProcessID)
		pc.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return DecisionDeclined, ctx.Err()
	case decision := <-gate.resolved:
		return decision, nil
	}
}

// List returns the submissions currently waiting for a decision
func (pc *PendingConfirmer) List() []models.PendingConfirmation {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	out := make([]models.PendingConfirmation, 0, len(pc.pending))
	for id, gate := range pc.pending {
		out = append(out, models.PendingConfirmation{
			ProcessID: id,
			URL:       gate.prompt.URL,
			SiteKey:   gate.prompt.SiteKey,
			Report:    gate.prompt.Report,
			CreatedAt: gate.createdAt,
		})
	}
	return out
}

// Resolve delivers the human decision for a pending submission
func (pc *PendingConfirmer) Resolve(processID string, confirm bool) error {
	pc.mu.Lock()
	gate, ok := pc.pending[processID]
	pc.mu.Unlock()

	if !ok {
		return fmt.Errorf("no pending confirmation for process %s", processID)
	}

	decision := DecisionDeclined
	if confirm {
		decision = DecisionConfirmed
	}

	select {
	case gate.resolved <- decision:
		return nil
	default:
		return fmt.Errorf("confirmation for process %s already resolved", processID)
	}
}
