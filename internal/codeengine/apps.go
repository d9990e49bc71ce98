package codeengine

import (
	"context"
	"encoding/json"

	"github.com/IBM/code-engine-go-sdk/codeenginev2"
	"github.com/IBM/go-sdk-core/v5/core"
)

func (c *Client) ListApps(ctx context.Context, projectID string, limit int) ([]Resource, error) {
	p, err := c.service.NewAppsPager(&codeenginev2.ListAppsOptions{
		ProjectID: &projectID,
		Limit:     pageSize(limit),
	})
	return drain[codeenginev2.App](ctx, c, "list_applications", p, err)
}

func (c *Client) GetApp(ctx context.Context, projectID, name string) (Resource, error) {
	return fetch(ctx, c, "get_application", func(ctx context.Context) (*codeenginev2.App, *core.DetailedResponse, error) {
		return c.service.GetAppWithContext(ctx, &codeenginev2.GetAppOptions{ProjectID: &projectID, Name: &name})
	})
}

func (c *Client) CreateApp(ctx context.Context, projectID string, app AppPrototype) (Resource, error) {
	opts := &codeenginev2.CreateAppOptions{
		ProjectID:             &projectID,
		Name:                  &app.Name,
		ImageReference:        &app.ImageReference,
		ImagePort:             optInt(app.ImagePort),
		ScaleMinInstances:     core.Int64Ptr(int64(app.ScaleMinInstances)),
		ScaleMaxInstances:     optInt(app.ScaleMaxInstances),
		ScaleCpuLimit:         optString(app.ScaleCPULimit),
		ScaleMemoryLimit:      optString(app.ScaleMemoryLimit),
		ManagedDomainMappings: optString(app.ManagedDomainMappings),
	}
	return fetch(ctx, c, "create_application", func(ctx context.Context) (*codeenginev2.App, *core.DetailedResponse, error) {
		return c.service.CreateAppWithContext(ctx, opts)
	})
}

// UpdateApp reads the current entity tag and sends a merge patch guarded by
// If-Match.
func (c *Client) UpdateApp(ctx context.Context, projectID, name string, patch AppPatch) (Resource, error) {
	const op = "update_application"
	if patch.Empty() {
		return nil, invalidArgument(op, "no fields to update for application %s", name)
	}
	body, err := patchBody(patch)
	if err != nil {
		return nil, invalidArgument(op, "encode patch: %v", err)
	}

	var (
		current *codeenginev2.App
		resp    *core.DetailedResponse
	)
	err = c.call(ctx, op, func(ctx context.Context) (err error) {
		current, resp, err = c.service.GetAppWithContext(ctx, &codeenginev2.GetAppOptions{ProjectID: &projectID, Name: &name})
		return err
	})
	if err != nil {
		return nil, err
	}
	etag := ""
	if resp != nil && resp.Headers != nil {
		etag = resp.Headers.Get("Etag")
	}
	if etag == "" && current != nil && current.EntityTag != nil {
		etag = *current.EntityTag
	}
	if etag == "" {
		etag = "*"
	}
	return fetch(ctx, c, op, func(ctx context.Context) (*codeenginev2.App, *core.DetailedResponse, error) {
		return c.service.UpdateAppWithContext(ctx, &codeenginev2.UpdateAppOptions{
			ProjectID: &projectID,
			Name:      &name,
			IfMatch:   &etag,
			App:       body,
		})
	})
}

func patchBody(patch AppPatch) (map[string]any, error) {
	data, err := json.Marshal(patch)
	if err != nil {
		return nil, err
	}
	var body map[string]any
	err = json.Unmarshal(data, &body)
	return body, err
}

func (c *Client) ListAppRevisions(ctx context.Context, projectID, appName string, limit int) ([]Resource, error) {
	p, err := c.service.NewAppRevisionsPager(&codeenginev2.ListAppRevisionsOptions{
		ProjectID: &projectID,
		AppName:   &appName,
		Limit:     pageSize(limit),
	})
	return drain[codeenginev2.AppRevision](ctx, c, "list_app_revisions", p, err)
}

func (c *Client) GetAppRevision(ctx context.Context, projectID, appName, revisionName string) (Resource, error) {
	return fetch(ctx, c, "get_app_revision", func(ctx context.Context) (*codeenginev2.AppRevision, *core.DetailedResponse, error) {
		return c.service.GetAppRevisionWithContext(ctx, &codeenginev2.GetAppRevisionOptions{
			ProjectID: &projectID,
			AppName:   &appName,
			Name:      &revisionName,
		})
	})
}

func (c *Client) ListDomainMappings(ctx context.Context, projectID string, limit int) ([]Resource, error) {
	p, err := c.service.NewDomainMappingsPager(&codeenginev2.ListDomainMappingsOptions{
		ProjectID: &projectID,
		Limit:     pageSize(limit),
	})
	return drain[codeenginev2.DomainMapping](ctx, c, "list_domain_mappings", p, err)
}

func (c *Client) GetDomainMapping(ctx context.Context, projectID, name string) (Resource, error) {
	return fetch(ctx, c, "get_domain_mapping", func(ctx context.Context) (*codeenginev2.DomainMapping, *core.DetailedResponse, error) {
		return c.service.GetDomainMappingWithContext(ctx, &codeenginev2.GetDomainMappingOptions{ProjectID: &projectID, Name: &name})
	})
}
