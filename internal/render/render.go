// Package render turns Code Engine records into short markdown summaries.
// Every lookup tolerates missing fields, so formatting never fails.
package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Unknown stands in for any field the API did not return.
const Unknown = "Unknown"

type column struct {
	label string
	path  []string
}

func col(label string, path ...string) column {
	return column{label: label, path: path}
}

// Field reads a possibly nested value and renders it as text.
func Field(record map[string]any, path ...string) string {
	value, ok := lookup(record, path...)
	if !ok {
		return Unknown
	}
	text := stringify(value)
	if strings.TrimSpace(text) == "" {
		return Unknown
	}
	return text
}

func lookup(record map[string]any, path ...string) (any, bool) {
	if record == nil || len(path) == 0 {
		return nil, false
	}
	var current any = record
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func scopeSuffix(preposition, scope string) string {
	if strings.TrimSpace(scope) == "" {
		return ""
	}
	return fmt.Sprintf(" %s %s", preposition, scope)
}

func listing(kind, scope string, items []map[string]any, title func(map[string]any) string, columns []column) string {
	if len(items) == 0 {
		return fmt.Sprintf("No %s found%s.", kind, scope)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d %s%s:\n\n", len(items), kind, scope)
	for _, item := range items {
		fmt.Fprintf(&b, "• %s\n", title(item))
		for _, c := range columns {
			fmt.Fprintf(&b, "  %s: %s\n", c.label, Field(item, c.path...))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func detail(kind string, record map[string]any, columns []column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s: %s**\n\n", kind, Field(record, "name"))
	for _, c := range columns {
		fmt.Fprintf(&b, "• %s: %s\n", c.label, Field(record, c.path...))
	}
	return strings.TrimRight(b.String(), "\n")
}

func byName(item map[string]any) string {
	return fmt.Sprintf("**%s**", Field(item, "name"))
}

func Projects(projects []map[string]any) string {
	if len(projects) == 0 {
		return "No projects found."
	}
	title := func(p map[string]any) string {
		return fmt.Sprintf("**%s** (%s)", Field(p, "name"), Field(p, "id"))
	}
	return listing("Code Engine projects", "", projects, title, []column{
		col("Region", "region"),
		col("Status", "status"),
		col("Created", "created_at"),
	})
}

func Applications(apps []map[string]any, projectID string) string {
	return listing("applications", scopeSuffix("in project", projectID), apps, byName, []column{
		col("Status", "status"),
		col("Image", "image_reference"),
		col("Created", "created_at"),
		col("Endpoint", "endpoint"),
	})
}

func AppRevisions(revisions []map[string]any, appName string) string {
	return listing("revisions", scopeSuffix("for application", appName), revisions, byName, []column{
		col("Status", "status"),
		col("Image", "image_reference"),
		col("Created", "created_at"),
	})
}

func DomainMappings(mappings []map[string]any, projectID string) string {
	return listing("domain mappings", scopeSuffix("in project", projectID), mappings, byName, []column{
		col("Status", "status"),
		col("Component", "component", "name"),
		col("Created", "created_at"),
	})
}

func Jobs(jobs []map[string]any, projectID string) string {
	return listing("jobs", scopeSuffix("in project", projectID), jobs, byName, []column{
		col("Image", "image_reference"),
		col("Run mode", "run_mode"),
		col("Created", "created_at"),
	})
}

func JobRuns(runs []map[string]any, projectID, jobName string) string {
	scope := scopeSuffix("in project", projectID)
	if jobName != "" {
		scope = scopeSuffix("for job", jobName) + scope
	}
	return listing("job runs", scope, runs, byName, []column{
		col("Status", "status"),
		col("Job", "job_name"),
		col("Created", "created_at"),
	})
}

func Builds(builds []map[string]any, projectID string) string {
	return listing("builds", scopeSuffix("in project", projectID), builds, byName, []column{
		col("Status", "status"),
		col("Output image", "output_image"),
		col("Strategy", "strategy_type"),
		col("Created", "created_at"),
	})
}

func BuildRuns(runs []map[string]any, projectID, buildName string) string {
	scope := scopeSuffix("in project", projectID)
	if buildName != "" {
		scope = scopeSuffix("for build", buildName) + scope
	}
	return listing("build runs", scope, runs, byName, []column{
		col("Status", "status"),
		col("Build", "build_name"),
		col("Created", "created_at"),
	})
}

// Secrets lists secret metadata only; values are never rendered.
func Secrets(secrets []map[string]any, projectID string) string {
	return listing("secrets", scopeSuffix("in project", projectID), secrets, byName, []column{
		col("Format", "format"),
		col("Created", "created_at"),
	})
}

func dataKeys(record map[string]any) string {
	data, ok := record["data"].(map[string]any)
	if !ok || len(data) == 0 {
		return Unknown
	}
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
