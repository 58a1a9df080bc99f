package models

import "time"

// Row is one record from a Baserow table, kept as the API returned it.
// Baserow rows are open-ended key/value maps; the pipeline only ever reads
// a handful of known fields, so accessors default instead of failing when
// a field is absent or has an unexpected shape.
type Row map[string]any

// SelectOption is one entry of a multi-select field value,
// e.g. a tag with its display color.
type SelectOption struct {
	ID    int64
	Value string
	Color string
}

// ID returns the row's internal numeric id, or 0 if absent.
// Cross-table references point at this id, not at the UUID field.
func (r Row) ID() int64 {
	return asInt64(r["id"])
}

// String returns the named field as a string, or "" when the field is
// absent, null, or not a string.
func (r Row) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Value returns the named field as-is, or def when the field is absent.
// Used for fields that pass through to the output untouched (ratings,
// costs) where the source type is not fixed.
func (r Row) Value(key string, def any) any {
	v, ok := r[key]
	if !ok {
		return def
	}
	return v
}

// Refs returns the row ids of a link field: a list of {id: n} objects
// pointing into another table. Malformed entries are skipped.
func (r Row) Refs(key string) []int64 {
	list, _ := r[key].([]any)
	ids := make([]int64, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if id := asInt64(m["id"]); id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Options returns the entries of a multi-select field: a list of
// {id, value, color} objects. Malformed entries are skipped.
func (r Row) Options(key string) []SelectOption {
	list, _ := r[key].([]any)
	opts := make([]SelectOption, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		value, _ := m["value"].(string)
		color, _ := m["color"].(string)
		opts = append(opts, SelectOption{ID: asInt64(m["id"]), Value: value, Color: color})
	}
	return opts
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}

// ToolSummary is a tool embedded inside a company, with references
// already resolved.
type ToolSummary struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	DescriptionShort string   `json:"description_short"`
	DescriptionLong  string   `json:"description_long"`
	Tags             []string `json:"tags"`
	Rating           any      `json:"rating"`
	Cost             any      `json:"cost"`
	URL              string   `json:"url"`
}

// CompanySummary is a company embedded inside a tool.
type CompanySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// WebCompany is the denormalized, web-ready view of a company row.
type WebCompany struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	URL       string        `json:"url"`
	Notes     string        `json:"notes"`
	Tools     []ToolSummary `json:"tools"`
	ToolCount int           `json:"tool_count"`
}

// WebTool is the denormalized, web-ready view of a tool row.
type WebTool struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	DescriptionShort string            `json:"description_short"`
	DescriptionLong  string            `json:"description_long"`
	Tags             []string          `json:"tags"`
	TagColors        map[string]string `json:"tag_colors"`
	Companies        []CompanySummary  `json:"companies"`
	Rating           any               `json:"rating"`
	Cost             any               `json:"cost"`
	URL              string            `json:"url"`
	LastModified     string            `json:"last_modified"`
}

// SearchEntry is one record of the flat lookup/autocomplete index.
// ToolCount is set for company entries, Tags and CompanyCount for tool
// entries; the other side is omitted from the JSON.
type SearchEntry struct {
	Type         string   `json:"type"`
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	Tags         []string `json:"tags,omitempty"`
	SearchText   string   `json:"search_text"`
	ToolCount    *int     `json:"tool_count,omitempty"`
	CompanyCount *int     `json:"company_count,omitempty"`
}

// Tag is one entry of the deduplicated tag catalog.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Stats are the aggregate counts over the denormalized collections.
type Stats struct {
	TotalCompanies     int `json:"total_companies"`
	TotalTools         int `json:"total_tools"`
	CompaniesWithTools int `json:"companies_with_tools"`
	ToolsWithCompanies int `json:"tools_with_companies"`
	TotalTags          int `json:"total_tags"`
}

// TierCount is the number of tools falling into one license-cost tier.
type TierCount struct {
	Tier  string `json:"tier"`
	Count int    `json:"count"`
}

// FieldStats are descriptive statistics over one numeric field,
// computed from the values that parse as numbers.
type FieldStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// Analysis is the derived market-analysis artifact: cost tiering plus
// descriptive stats over cost and rating.
type Analysis struct {
	CostTiers []TierCount `json:"cost_tiers"`
	Cost      *FieldStats `json:"cost"`
	Rating    *FieldStats `json:"rating"`
}

// AllData is the combined web artifact carrying every collection under
// a named key.
type AllData struct {
	Companies   []WebCompany  `json:"companies"`
	Tools       []WebTool     `json:"tools"`
	SearchIndex []SearchEntry `json:"search_index"`
	Tags        []Tag         `json:"tags"`
	Stats       Stats         `json:"stats"`
}

// Fetch run statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// TableResult records the outcome of fetching one table.
type TableResult struct {
	Table  string `json:"table"`
	Rows   int    `json:"rows"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// FetchReport summarizes one full fetch run across all tables.
type FetchReport struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Tables     []TableResult `json:"tables"`
}

// AllSucceeded reports whether every table in the run fetched cleanly.
func (r *FetchReport) AllSucceeded() bool {
	for _, t := range r.Tables {
		if t.Status != StatusSuccess {
			return false
		}
	}
	return true
}
