package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"applyflow/pkg/models"
)

// fakeSurface records every call and lets tests script failures per selector.
type fakeSurface struct {
	calls []string

	setValueErr  map[string]error
	setFilesErr  map[string]error
	clickErr     map[string]error
	valueMatches map[string]bool
	textMatches  map[string]bool
	selectErr    error

	html       string
	currentURL string

	navigateErr error
	sessionErr  error
	closed      bool
}

func (f *fakeSurface) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeSurface) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	f.record("navigate %s", url)
	return f.navigateErr
}

func (f *fakeSurface) HTML() (string, error) {
	return f.html, nil
}

func (f *fakeSurface) CurrentURL() string {
	return f.currentURL
}

func (f *fakeSurface) SetValue(selector, value string) error {
	f.record("setvalue %s=%s", selector, value)
	if err, ok := f.setValueErr[selector]; ok {
		return err
	}
	return nil
}

func (f *fakeSurface) SetFiles(selector string, paths []string) error {
	f.record("setfiles %s=%v", selector, paths)
	if err, ok := f.setFilesErr[selector]; ok {
		return err
	}
	return nil
}

func (f *fakeSurface) SelectByValue(selector, value string) (bool, error) {
	f.record("selectvalue %s=%s", selector, value)
	if f.selectErr != nil {
		return false, f.selectErr
	}
	return f.valueMatches[value], nil
}

func (f *fakeSurface) SelectByText(selector, text string) (bool, error) {
	f.record("selecttext %s=%s", selector, text)
	if f.selectErr != nil {
		return false, f.selectErr
	}
	return f.textMatches[text], nil
}

func (f *fakeSurface) ScriptClick(selector string) error {
	f.record("click %s", selector)
	if err, ok := f.clickErr[selector]; ok {
		return err
	}
	return nil
}

func (f *fakeSurface) Close() error {
	f.closed = true
	return nil
}

func textField(label, selector string, required bool) models.FieldSpec {
	return models.FieldSpec{Label: label, Selector: selector, Kind: models.FieldText, Required: required}
}

func TestExecutorFillsTextFields(t *testing.T) {
	surface := &fakeSurface{}
	schema := &models.FormSchema{
		Fields: []models.FieldSpec{
			textField("First Name", "#first", true),
			textField("Last Name", "#last", true),
		},
	}
	values := models.FillValues{
		"First Name": "Ada",
		"Last Name":  "Lovelace",
	}

	report := NewExecutor(surface).Fill(context.Background(), schema, values)

	if got := report.Count(models.FieldFilled); got != 2 {
		t.Fatalf("filled count = %d, want 2", got)
	}
	wantCalls := []string{
		"setvalue #first=Ada",
		"setvalue #last=Lovelace",
	}
	if diff := cmp.Diff(wantCalls, surface.calls); diff != "" {
		t.Errorf("surface calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecutorSkipsSentinelWithoutTouchingPage(t *testing.T) {
	surface := &fakeSurface{}
	schema := &models.FormSchema{
		Fields: []models.FieldSpec{
			textField("Gender", "#gender", false),
			textField("Email", "#email", true),
		},
	}
	values := models.FillValues{
		"Gender": models.SkipSentinel,
		"Email":  "ada@example.com",
	}

	report := NewExecutor(surface).Fill(context.Background(), schema, values)

	if got := report.Count(models.FieldSkipped); got != 1 {
		t.Errorf("skipped count = %d, want 1", got)
	}
	wantCalls := []string{"setvalue #email=ada@example.com"}
	if diff := cmp.Diff(wantCalls, surface.calls); diff != "" {
		t.Errorf("surface calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecutorContinuesPastFieldFailure(t *testing.T) {
	surface := &fakeSurface{
		setValueErr: map[string]error{"#broken": errors.New("element not found")},
	}
	schema := &models.FormSchema{
		Fields: []models.FieldSpec{
			textField("Broken", "#broken", false),
			textField("Phone", "#phone", false),
		},
	}
	values := models.FillValues{
		"Broken": "x",
		"Phone":  "555-0100",
	}

	report := NewExecutor(surface).Fill(context.Background(), schema, values)

	if got := report.Count(models.FieldFailed); got != 1 {
		t.Errorf("failed count = %d, want 1", got)
	}
	if got := report.Count(models.FieldFilled); got != 1 {
		t.Errorf("filled count = %d, want 1", got)
	}
	if report.Results[0].Reason != "element not found" {
		t.Errorf("failure reason = %q, want element error", report.Results[0].Reason)
	}
}

func TestExecutorSelectFallsBackToText(t *testing.T) {
	surface := &fakeSurface{
		textMatches: map[string]bool{"United States": true},
	}
	schema := &models.FormSchema{
		Fields: []models.FieldSpec{
			{Label: "Country", Selector: "#country", Kind: models.FieldSelect},
		},
	}
	values := models.FillValues{"Country": "United States"}

	report := NewExecutor(surface).Fill(context.Background(), schema, values)

	if report.Results[0].Status != models.FieldFilled {
		t.Errorf("status = %q, want filled", report.Results[0].Status)
	}
	wantCalls := []string{
		"selectvalue #country=United States",
		"selecttext #country=United States",
	}
	if diff := cmp.Diff(wantCalls, surface.calls); diff != "" {
		t.Errorf("surface calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecutorSelectFailsWhenNoOptionMatches(t *testing.T) {
	surface := &fakeSurface{}
	schema := &models.FormSchema{
		Fields: []models.FieldSpec{
			{Label: "Country", Selector: "#country", Kind: models.FieldSelect},
			textField("City", "#city", false),
		},
	}
	values := models.FillValues{
		"Country": "Atlantis",
		"City":    "Springfield",
	}

	report := NewExecutor(surface).Fill(context.Background(), schema, values)

	if report.Results[0].Status != models.FieldFailed {
		t.Errorf("status = %q, want failed", report.Results[0].Status)
	}
	if report.Results[0].Reason != `no option matching "Atlantis"` {
		t.Errorf("reason = %q", report.Results[0].Reason)
	}
	if report.Results[1].Status != models.FieldFilled {
		t.Errorf("following field status = %q, want filled", report.Results[1].Status)
	}
}

// Duplicate labels share the one FillValues entry; the last generated value
// for the label feeds every field carrying it.
func TestExecutorDuplicateLabelsShareLastValue(t *testing.T) {
	surface := &fakeSurface{}
	schema := &models.FormSchema{
		Fields: []models.FieldSpec{
			textField("Phone", "#phone-home", false),
			textField("Phone", "#phone-mobile", false),
		},
	}
	values := models.FillValues{"Phone": "555-0100"}

	report := NewExecutor(surface).Fill(context.Background(), schema, values)

	if got := report.Count(models.FieldFilled); got != 2 {
		t.Fatalf("filled count = %d, want 2", got)
	}
	wantCalls := []string{
		"setvalue #phone-home=555-0100",
		"setvalue #phone-mobile=555-0100",
	}
	if diff := cmp.Diff(wantCalls, surface.calls); diff != "" {
		t.Errorf("surface calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecutorUnknownKindTakesTextPath(t *testing.T) {
	surface := &fakeSurface{}
	schema := &models.FormSchema{
		Fields: []models.FieldSpec{
			{Label: "Phone", Selector: "#phone", Kind: "tel"},
		},
	}
	values := models.FillValues{"Phone": "555-0100"}

	report := NewExecutor(surface).Fill(context.Background(), schema, values)

	if report.Results[0].Status != models.FieldFilled {
		t.Errorf("status = %q, want filled", report.Results[0].Status)
	}
	wantCalls := []string{"setvalue #phone=555-0100"}
	if diff := cmp.Diff(wantCalls, surface.calls); diff != "" {
		t.Errorf("surface calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecutorRadioClicksOptionByGroupName(t *testing.T) {
	surface := &fakeSurface{}
	schema := &models.FormSchema{
		Fields: []models.FieldSpec{
			{Label: "Veteran Status", Selector: "input[name='applicant[veteran]']", Kind: models.FieldRadio},
		},
	}
	values := models.FillValues{"Veteran Status": "no"}

	report := NewExecutor(surface).Fill(context.Background(), schema, values)

	if report.Results[0].Status != models.FieldFilled {
		t.Fatalf("status = %q, want filled", report.Results[0].Status)
	}
	wantCalls := []string{"click input[name='applicant[veteran]'][value='no']"}
	if diff := cmp.Diff(wantCalls, surface.calls); diff != "" {
		t.Errorf("surface calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecutorRadioFailsOnUnparseableSelector(t *testing.T) {
	surface := &fakeSurface{}
	schema := &models.FormSchema{
		Fields: []models.FieldSpec{
			{Label: "Choice", Selector: "#radio-group", Kind: models.FieldRadio},
		},
	}
	values := models.FillValues{"Choice": "yes"}

	report := NewExecutor(surface).Fill(context.Background(), schema, values)

	if report.Results[0].Status != models.FieldFailed {
		t.Errorf("status = %q, want failed", report.Results[0].Status)
	}
	if len(surface.calls) != 0 {
		t.Errorf("unexpected surface calls: %v", surface.calls)
	}
}

func TestExecutorSkipsMalformedFields(t *testing.T) {
	surface := &fakeSurface{}
	schema := &models.FormSchema{
		Fields: []models.FieldSpec{
			{Label: "", Selector: "#x", Kind: models.FieldText},
			{Label: "No Selector", Selector: "", Kind: models.FieldText},
			{Label: "No Kind", Selector: "#y", Kind: ""},
		},
	}
	values := models.FillValues{
		"No Selector": "v",
		"No Kind":     "v",
	}

	report := NewExecutor(surface).Fill(context.Background(), schema, values)

	if got := report.Count(models.FieldSkipped); got != 3 {
		t.Errorf("skipped count = %d, want 3", got)
	}
	if len(surface.calls) != 0 {
		t.Errorf("unexpected surface calls: %v", surface.calls)
	}
}

func TestExecutorFileFieldSendsPath(t *testing.T) {
	surface := &fakeSurface{}
	schema := &models.FormSchema{
		Fields: []models.FieldSpec{
			{Label: "Resume", Selector: "#resume", Kind: models.FieldFile, Required: true},
		},
	}
	values := models.FillValues{"Resume": "/tmp/resume.pdf"}

	report := NewExecutor(surface).Fill(context.Background(), schema, values)

	if report.Results[0].Status != models.FieldFilled {
		t.Fatalf("status = %q, want filled", report.Results[0].Status)
	}
	wantCalls := []string{"setfiles #resume=[/tmp/resume.pdf]"}
	if diff := cmp.Diff(wantCalls, surface.calls); diff != "" {
		t.Errorf("surface calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecutorCancelledContextSkipsRemaining(t *testing.T) {
	surface := &fakeSurface{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	schema := &models.FormSchema{
		Fields: []models.FieldSpec{
			textField("First Name", "#first", false),
		},
	}
	values := models.FillValues{"First Name": "Ada"}

	report := NewExecutor(surface).Fill(ctx, schema, values)

	if got := report.Count(models.FieldSkipped); got != 1 {
		t.Errorf("skipped count = %d, want 1", got)
	}
	if len(surface.calls) != 0 {
		t.Errorf("unexpected surface calls: %v", surface.calls)
	}
}
