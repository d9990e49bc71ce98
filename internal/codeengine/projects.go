package codeengine

import (
	"context"

	"github.com/IBM/code-engine-go-sdk/codeenginev2"
)

func (c *Client) ListProjects(ctx context.Context, limit int, resourceGroupID string) ([]Resource, error) {
	p, err := c.service.NewProjectsPager(&codeenginev2.ListProjectsOptions{Limit: pageSize(limit)})
	projects, err := drain[codeenginev2.Project](ctx, c, "list_projects", p, err)
	if err != nil {
		return nil, err
	}
	return filterByField(projects, "resource_group_id", resourceGroupID), nil
}

// FindProjectByName scans the full project listing for an exact name match.
// A missing project is reported through found, not as an error.
func (c *Client) FindProjectByName(ctx context.Context, name, resourceGroupID string) (Resource, bool, error) {
	projects, err := c.ListProjects(ctx, 0, resourceGroupID)
	if err != nil {
		return nil, false, err
	}
	project, found := findByName(projects, name)
	return project, found, nil
}

func findByName(records []Resource, name string) (Resource, bool) {
	for _, record := range records {
		if value, _ := record["name"].(string); value == name {
			return record, true
		}
	}
	return nil, false
}

func filterByField(records []Resource, field, want string) []Resource {
	if want == "" {
		return records
	}
	out := make([]Resource, 0, len(records))
	for _, record := range records {
		if value, _ := record[field].(string); value == want {
			out = append(out, record)
		}
	}
	return out
}
