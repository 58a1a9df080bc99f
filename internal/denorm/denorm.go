// Package denorm transforms raw table snapshots into the enriched,
// cross-referenced artifacts the web frontend consumes. Everything here
// is a pure function of the snapshots: no network, no retries, no
// filesystem.
package denorm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stacksight/pipeline/internal/models"
)

// Artifacts is the full set of derived outputs for one run. Recomputed
// wholesale every time; never patched incrementally.
type Artifacts struct {
	Companies   []models.WebCompany
	Tools       []models.WebTool
	SearchIndex []models.SearchEntry
	Tags        []models.Tag
	Stats       models.Stats
	Analysis    models.Analysis
}

// Process runs the whole denormalization over the three snapshots.
// The libraries snapshot is required to be present upstream but carries
// no cross-references today, so it does not contribute to the outputs.
func Process(companies, tools, libraries []models.Row) *Artifacts {
	toolsByID := indexByID(tools)
	companiesByID := indexByID(companies)

	a := &Artifacts{
		Companies: EnrichCompanies(companies, toolsByID),
		Tools:     EnrichTools(tools, companiesByID),
	}
	a.SearchIndex = BuildSearchIndex(a.Companies, a.Tools)
	a.Tags = CollectTags(a.Tools)
	a.Stats = ComputeStats(a.Companies, a.Tools, a.Tags)
	a.Analysis = Analyze(a.Tools)
	return a
}

// indexByID maps internal row id to row, for reference resolution.
func indexByID(rows []models.Row) map[int64]models.Row {
	idx := make(map[int64]models.Row, len(rows))
	for _, r := range rows {
		idx[r.ID()] = r
	}
	return idx
}

// EnrichCompanies resolves each company's tool references against the
// tool index and embeds a summary of every tool that resolves.
// Dangling references are dropped silently.
func EnrichCompanies(companies []models.Row, toolsByID map[int64]models.Row) []models.WebCompany {
	web := make([]models.WebCompany, 0, len(companies))
	for _, company := range companies {
		tools := []models.ToolSummary{}
		for _, refID := range company.Refs("Tools") {
			tool, ok := toolsByID[refID]
			if !ok {
				continue
			}
			tools = append(tools, models.ToolSummary{
				ID:               tool.String("UUID"),
				Name:             tool.String("ToolName"),
				DescriptionShort: tool.String("Tool Description Short"),
				DescriptionLong:  tool.String("ToolDescription_long"),
				Tags:             optionValues(tool.Options("Tool Tags")),
				Rating:           tool.Value("Overall Rating", "0"),
				Cost:             tool.Value("Annual License Cost", nil),
				URL:              tool.String("URL"),
			})
		}

		web = append(web, models.WebCompany{
			ID:        company.String("UUID"),
			Name:      company.String("Company Name"),
			URL:       company.String("URL"),
			Notes:     company.String("Notes"),
			Tools:     tools,
			ToolCount: len(tools),
		})
	}
	return web
}

// EnrichTools resolves each tool's company references and flattens its
// tag options into a plain name list plus a name→color map. When a tag
// name repeats, the first occurrence's color wins.
func EnrichTools(tools []models.Row, companiesByID map[int64]models.Row) []models.WebTool {
	web := make([]models.WebTool, 0, len(tools))
	for _, tool := range tools {
		companies := []models.CompanySummary{}
		for _, refID := range tool.Refs("ToolCompany") {
			comp, ok := companiesByID[refID]
			if !ok {
				continue
			}
			companies = append(companies, models.CompanySummary{
				ID:   comp.String("UUID"),
				Name: comp.String("Company Name"),
				URL:  comp.String("URL"),
			})
		}

		tags := []string{}
		tagColors := map[string]string{}
		for _, opt := range tool.Options("Tool Tags") {
			tags = append(tags, opt.Value)
			if _, seen := tagColors[opt.Value]; !seen {
				tagColors[opt.Value] = opt.Color
			}
		}

		web = append(web, models.WebTool{
			ID:               tool.String("UUID"),
			Name:             tool.String("ToolName"),
			DescriptionShort: tool.String("Tool Description Short"),
			DescriptionLong:  tool.String("ToolDescription_long"),
			Tags:             tags,
			TagColors:        tagColors,
			Companies:        companies,
			Rating:           tool.Value("Overall Rating", "0"),
			Cost:             tool.Value("Annual License Cost", nil),
			URL:              tool.String("URL"),
			LastModified:     tool.String("Last modified"),
		})
	}
	return web
}

// BuildSearchIndex flattens the enriched collections into the lookup
// index: all companies in input order, then all tools in input order.
func BuildSearchIndex(companies []models.WebCompany, tools []models.WebTool) []models.SearchEntry {
	index := make([]models.SearchEntry, 0, len(companies)+len(tools))

	for _, c := range companies {
		toolCount := c.ToolCount
		index = append(index, models.SearchEntry{
			Type:       "company",
			ID:         c.ID,
			Name:       c.Name,
			URL:        c.URL,
			SearchText: strings.ToLower(c.Name),
			ToolCount:  &toolCount,
		})
	}

	for _, t := range tools {
		companyNames := make([]string, len(t.Companies))
		for i, c := range t.Companies {
			companyNames[i] = c.Name
		}
		searchText := fmt.Sprintf("%s %s %s", t.Name, strings.Join(t.Tags, " "), strings.Join(companyNames, " "))
		companyCount := len(t.Companies)
		index = append(index, models.SearchEntry{
			Type:         "tool",
			ID:           t.ID,
			Name:         t.Name,
			URL:          t.URL,
			Tags:         t.Tags,
			SearchText:   strings.ToLower(searchText),
			CompanyCount: &companyCount,
		})
	}

	return index
}

// CollectTags unions every tag seen across the enriched tools, first
// occurrence's color winning, sorted alphabetically by name.
func CollectTags(tools []models.WebTool) []models.Tag {
	colors := map[string]string{}
	for _, t := range tools {
		for _, name := range t.Tags {
			if _, seen := colors[name]; !seen {
				colors[name] = t.TagColors[name]
			}
		}
	}

	tags := make([]models.Tag, 0, len(colors))
	for name, color := range colors {
		tags = append(tags, models.Tag{Name: name, Color: color})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags
}

// ComputeStats derives the aggregate counts for the stats artifact.
func ComputeStats(companies []models.WebCompany, tools []models.WebTool, tags []models.Tag) models.Stats {
	stats := models.Stats{
		TotalCompanies: len(companies),
		TotalTools:     len(tools),
		TotalTags:      len(tags),
	}
	for _, c := range companies {
		if c.ToolCount > 0 {
			stats.CompaniesWithTools++
		}
	}
	for _, t := range tools {
		if len(t.Companies) > 0 {
			stats.ToolsWithCompanies++
		}
	}
	return stats
}

func optionValues(opts []models.SelectOption) []string {
	values := make([]string, len(opts))
	for i, opt := range opts {
		values[i] = opt.Value
	}
	return values
}
