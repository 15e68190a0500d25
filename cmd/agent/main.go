package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"applyflow/internal/applog"
	"applyflow/internal/browser"
	"applyflow/internal/config"
	"applyflow/internal/engine"
	"applyflow/internal/llm"
	"applyflow/internal/logging"
	"applyflow/internal/ratelimit"
	"applyflow/internal/schemacache"
	"applyflow/pkg/models"
	"applyflow/pkg/utils"
)

func main() {
	var (
		configPath  = flag.String("config", "configs/config.yaml", "path to configuration file")
		targetURL   = flag.String("url", "", "application page URL")
		profilePath = flag.String("profile", "", "path to candidate profile JSON")
		resumePath  = flag.String("resume", "", "path to resume file for upload fields")
		resumeText  = flag.String("resume-text", "", "path to plain-text resume narrative for open-ended questions")
		timeout     = flag.Duration("timeout", 0, "navigation timeout override")
	)
	flag.Parse()

	urls := flag.Args()
	if *targetURL != "" {
		urls = append([]string{*targetURL}, urls...)
	}
	if len(urls) == 0 || *profilePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()
	logger := logging.GetGlobalLogger()

	profile, err := loadProfile(*profilePath)
	if err != nil {
		logger.Fatal("Failed to load candidate profile", map[string]interface{}{
			"path":  *profilePath,
			"error": err.Error(),
		})
	}

	if *resumeText != "" {
		narrative, err := os.ReadFile(*resumeText)
		if err != nil {
			logger.Fatal("Failed to read resume narrative", map[string]interface{}{
				"path":  *resumeText,
				"error": err.Error(),
			})
		}
		profile["resume_text"] = string(narrative)
	}

	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(); err != nil {
		logger.Fatal("Failed to start LLM manager", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer llmManager.Stop()

	browserManager := browser.NewManager(cfg)
	if err := browserManager.Start(); err != nil {
		logger.Fatal("Failed to start browser", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer browserManager.Close()

	schemaCache, err := schemacache.NewStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize schema cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer schemaCache.Close()

	limiter := ratelimit.NewHostLimiter(cfg)
	defer limiter.Stop()

	applicator := engine.NewApplicator(
		cfg,
		engine.SessionFunc(func() (engine.Surface, error) {
			return browserManager.NewSession()
		}),
		engine.NewAnalyzer(llmManager, schemaCache),
		engine.NewGenerator(llmManager),
		engine.NewTerminalConfirmer(os.Stdin, os.Stdout),
		limiter,
	)

	anyFailed := false
	for _, url := range urls {
		req := &models.ApplyRequest{
			URL:     url,
			Profile: profile,
		}
		if *resumePath != "" || *timeout > 0 {
			req.Options = &models.ApplyOptions{
				ResumePath: *resumePath,
				Timeout:    *timeout,
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.BackgroundTasks.TaskTimeout)
		processID := utils.GenerateRequestID()
		outcome := applicator.Apply(ctx, processID, req)

		recordOutcome(ctx, cfg, outcome, logger)
		cancel()
		printOutcome(outcome)

		if outcome.Status == models.ApplyFailed {
			anyFailed = true
		}
	}

	if anyFailed {
		os.Exit(1)
	}
}

func loadProfile(path string) (models.CandidateProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var profile models.CandidateProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("invalid profile JSON: %w", err)
	}
	return profile, nil
}

func recordOutcome(ctx context.Context, cfg *config.Config, outcome *models.ApplyOutcome, logger logging.Logger) {
	if !cfg.Sheets.Enabled {
		return
	}

	// The run context may have expired while the gate waited on the
	// reviewer; the outcome still gets recorded.
	sheetCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	writer, err := applog.NewSheetWriter(sheetCtx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize sheet writer", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if err := writer.RecordOutcome(sheetCtx, outcome); err != nil {
		logger.Warn("Failed to record outcome to sheet", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func printOutcome(outcome *models.ApplyOutcome) {
	encoded, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		fmt.Printf("Outcome: %s (%s)\n", outcome.Status, outcome.Reason)
		return
	}
	fmt.Println(string(encoded))
}
