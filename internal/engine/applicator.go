package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"applyflow/internal/config"
	"applyflow/internal/logging"
	"applyflow/internal/ratelimit"
	"applyflow/pkg/models"
)

// Applicator runs full application attempts: navigate, analyze, generate,
// fill, gate, submit. It is safe for concurrent use; each run gets its own
// browser session.
type Applicator struct {
	config    *config.Config
	sessions  SessionSource
	analyzer  *Analyzer
	generator *Generator
	confirmer Confirmer
	limiter   *ratelimit.HostLimiter

	mu          sync.RWMutex
	lastOutcome *models.ApplyOutcome
}

// NewApplicator wires an applicator from its parts
func NewApplicator(cfg *config.Config, sessions SessionSource, analyzer *Analyzer, generator *Generator, confirmer Confirmer, limiter *ratelimit.HostLimiter) *Applicator {
	return &Applicator{
		config:    cfg,
		sessions:  sessions,
		analyzer:  analyzer,
		generator: generator,
		confirmer: confirmer,
		limiter:   limiter,
	}
}

// Apply attempts one application and always returns an outcome; a panic
// anywhere in the run becomes a FAILED outcome rather than taking down the
// process.
func (a *Applicator) Apply(ctx context.Context, processID string, req *models.ApplyRequest) (outcome *models.ApplyOutcome) {
	startTime := time.Now()
	logger := logging.LogWithRequestID(processID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Application run panicked", map[string]interface{}{
				"url":   req.URL,
				"panic": fmt.Sprintf("%v", r),
			})
			outcome = &models.ApplyOutcome{
				Status: models.ApplyFailed,
				Reason: fmt.Sprintf("internal error: %v", r),
				URL:    req.URL,
			}
		}
		outcome.Duration = time.Since(startTime)
		a.setLastOutcome(outcome)
	}()

	siteKey, err := SiteKey(req.URL)
	if err != nil {
		return a.failed(req, "", err)
	}

	outcome = &models.ApplyOutcome{URL: req.URL, SiteKey: siteKey}

	if err := a.limiter.Wait(ctx, siteKey); err != nil {
		return a.failed(req, siteKey, fmt.Errorf("rate limit wait aborted: %w", err))
	}

	session, err := a.sessions.NewSession()
	if err != nil {
		return a.failed(req, siteKey, fmt.Errorf("failed to open browser session: %w", err))
	}
	defer session.Close()

	logger.Info("Navigating to application page", map[string]interface{}{
		"url":      req.URL,
		"site_key": siteKey,
	})

	timeout := a.config.Browser.RequestTimeout
	if req.Options != nil && req.Options.Timeout > 0 {
		timeout = req.Options.Timeout
	}

	if err := session.Navigate(ctx, req.URL, timeout); err != nil {
		return a.failed(req, siteKey, err)
	}

	// Let late scripts finish rendering the form
	time.Sleep(a.config.Engine.NavSettle)

	html, err := session.HTML()
	if err != nil {
		return a.failed(req, siteKey, err)
	}

	schema, cached, err := a.analyzer.Schema(ctx, req.URL, html)
	if err != nil {
		return a.failed(req, siteKey, err)
	}

	profile := a.effectiveProfile(req)

	values, err := a.generator.Values(ctx, schema, profile)
	if err != nil {
		return a.failed(req, siteKey, err)
	}

	report := NewExecutor(session).Fill(ctx, schema, values)

	logger.Info("Form fill pass completed", map[string]interface{}{
		"site_key":      siteKey,
		"cached_schema": cached,
		"filled":        report.Count(models.FieldFilled),
		"skipped":       report.Count(models.FieldSkipped),
		"failed":        report.Count(models.FieldFailed),
	})

	if !schema.HasSubmit() {
		logger.Warn("No submit action found, leaving page for manual submission", map[string]interface{}{
			"site_key": siteKey,
		})
		return &models.ApplyOutcome{
			Status:  models.ApplyAwaitingManual,
			Reason:  "no submit action found",
			URL:     req.URL,
			SiteKey: siteKey,
			Report:  report,
		}
	}

	if schema.HasRequiredFields() && !report.FilledRequired() {
		return &models.ApplyOutcome{
			Status:  models.ApplyFailed,
			Reason:  "no required field could be filled",
			URL:     req.URL,
			SiteKey: siteKey,
			Report:  report,
		}
	}

	// The gate blocks on a human with no deadline of its own; the run
	// context's timeout covers the automated stages only, so the prompt is
	// detached from it before blocking.
	decision, err := a.confirmer.Confirm(context.WithoutCancel(ctx), ConfirmationPrompt{
		ProcessID: processID,
		URL:       req.URL,
		SiteKey:   siteKey,
		Submit:    *schema.Submit,
		Report:    report,
	})
	if err != nil {
		logger.Warn("Confirmation aborted, treating as declined", map[string]interface{}{
			"site_key": siteKey,
			"error":    err.Error(),
		})
		return &models.ApplyOutcome{
			Status:  models.ApplyDeclined,
			Reason:  fmt.Sprintf("confirmation aborted: %v", err),
			URL:     req.URL,
			SiteKey: siteKey,
			Report:  report,
		}
	}

	if decision != DecisionConfirmed {
		logger.Info("Submission declined by reviewer", map[string]interface{}{
			"site_key": siteKey,
		})
		return &models.ApplyOutcome{
			Status:  models.ApplyDeclined,
			Reason:  "submission declined by reviewer",
			URL:     req.URL,
			SiteKey: siteKey,
			Report:  report,
		}
	}

	if err := session.ScriptClick(schema.Submit.Selector); err != nil {
		logger.Error("Failed to click submit button", map[string]interface{}{
			"site_key": siteKey,
			"error":    err.Error(),
		})
		return &models.ApplyOutcome{
			Status:  models.ApplyAwaitingManual,
			Reason:  fmt.Sprintf("failed to click submit button: %v", err),
			URL:     req.URL,
			SiteKey: siteKey,
			Report:  report,
		}
	}

	// Wait for the post-submit page transition
	time.Sleep(a.config.Engine.SettleDelay)

	logger.Info("Application submitted", map[string]interface{}{
		"url":      req.URL,
		"site_key": siteKey,
	})

	return &models.ApplyOutcome{
		Status:  models.ApplySubmitted,
		URL:     req.URL,
		SiteKey: siteKey,
		Report:  report,
	}
}

// LastOutcome returns the most recent outcome, if any
func (a *Applicator) LastOutcome() *models.ApplyOutcome {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastOutcome
}

func (a *Applicator) setLastOutcome(outcome *models.ApplyOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastOutcome = outcome
}

// effectiveProfile applies request options onto the profile without mutating
// the caller's map
func (a *Applicator) effectiveProfile(req *models.ApplyRequest) models.CandidateProfile {
	if req.Options == nil || req.Options.ResumePath == "" {
		return req.Profile
	}

	profile := make(models.CandidateProfile, len(req.Profile)+1)
	for k, v := range req.Profile {
		profile[k] = v
	}
	profile["resume_path"] = req.Options.ResumePath
	return profile
}

func (a *Applicator) failed(req *models.ApplyRequest, siteKey string, err error) *models.ApplyOutcome {
	return &models.ApplyOutcome{
		Status:  models.ApplyFailed,
		Reason:  err.Error(),
		URL:     req.URL,
		SiteKey: siteKey,
	}
}
