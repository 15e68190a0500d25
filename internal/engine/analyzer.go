package engine

import (
	"context"

	"applyflow/internal/logging"
	"applyflow/internal/schemacache"
	"applyflow/pkg/models"
	"applyflow/pkg/utils"
)

// StructureService derives a form schema from page markup
type StructureService interface {
	AnalyzeFormStructure(ctx context.Context, markup, url string) (*models.FormSchema, error)
}

// Analyzer resolves the form schema for a page, consulting the site cache
// before paying for an LLM analysis. Cache failures degrade to a miss so a
// broken cache backend never blocks an application run.
type Analyzer struct {
	llm   StructureService
	cache schemacache.Store
}

// NewAnalyzer creates an analyzer over the given LLM service and cache
func NewAnalyzer(llm StructureService, cache schemacache.Store) *Analyzer {
	return &Analyzer{
		llm:   llm,
		cache: cache,
	}
}

// Schema returns the form schema for the page, and whether it came from the
// cache. A schema with no fields is an analysis failure and is never cached.
func (a *Analyzer) Schema(ctx context.Context, url, html string) (*models.FormSchema, bool, error) {
	logger := logging.GetGlobalLogger()

	siteKey, err := SiteKey(url)
	if err != nil {
		return nil, false, utils.NewAnalysisError(err.Error())
	}

	schema, hit, err := a.cache.Get(ctx, siteKey)
	if err != nil {
		logger.Warn("Schema cache read failed, treating as miss", map[string]interface{}{
			"site_key": siteKey,
			"error":    err.Error(),
		})
	} else if hit {
		logger.Info("Using cached form schema", map[string]interface{}{
			"site_key":    siteKey,
			"field_count": len(schema.Fields),
		})
		return schema, true, nil
	}

	logger.Info("Analyzing new site structure", map[string]interface{}{
		"site_key": siteKey,
	})

	schema, err = a.llm.AnalyzeFormStructure(ctx, html, url)
	if err != nil {
		return nil, false, err
	}

	if len(schema.Fields) == 0 {
		return nil, false, utils.NewAnalysisError("analysis returned no fields to fill")
	}

	if err := a.cache.Put(ctx, siteKey, schema); err != nil {
		logger.Warn("Failed to store schema in cache", map[string]interface{}{
			"site_key": siteKey,
			"error":    err.Error(),
		})
	}

	return schema, false, nil
}
