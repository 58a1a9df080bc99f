package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/stacksight/pipeline/internal/denorm"
	"github.com/stacksight/pipeline/internal/models"
	"github.com/stacksight/pipeline/internal/storage"
)

// Process loads the three snapshots, denormalizes them, and writes the
// web artifacts. All three snapshots must be present: cross-referencing
// needs both sides, so a missing or malformed file fails the whole run.
func Process(store *storage.Store, logger *zap.Logger) (*denorm.Artifacts, error) {
	companies, err := store.ReadSnapshot("companies")
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}
	tools, err := store.ReadSnapshot("tools")
	if err != nil {
		return nil, fmt.Errorf("load tools: %w", err)
	}
	libraries, err := store.ReadSnapshot("libraries")
	if err != nil {
		return nil, fmt.Errorf("load libraries: %w", err)
	}

	logger.Info("snapshots loaded",
		zap.Int("companies", len(companies)),
		zap.Int("tools", len(tools)),
		zap.Int("libraries", len(libraries)))

	a := denorm.Process(companies, tools, libraries)

	artifacts := []struct {
		name string
		data any
	}{
		{"companies.json", a.Companies},
		{"tools.json", a.Tools},
		{"search_index.json", a.SearchIndex},
		{"tags.json", a.Tags},
		{"stats.json", a.Stats},
		{"analysis.json", a.Analysis},
		{"all_data.json", models.AllData{
			Companies:   a.Companies,
			Tools:       a.Tools,
			SearchIndex: a.SearchIndex,
			Tags:        a.Tags,
			Stats:       a.Stats,
		}},
	}
	for _, art := range artifacts {
		if err := store.WriteArtifact(art.name, art.data); err != nil {
			return nil, fmt.Errorf("write %s: %w", art.name, err)
		}
	}

	logger.Info("web artifacts written",
		zap.Int("companies", a.Stats.TotalCompanies),
		zap.Int("tools", a.Stats.TotalTools),
		zap.Int("tags", a.Stats.TotalTags))

	return a, nil
}
