package codeengine

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// Fake is an in-memory API used by tests across packages. Collections are
// keyed by project id, revisions by "<project>/<app>".
type Fake struct {
	mu sync.Mutex

	Projects       []Resource
	Apps           map[string][]Resource
	Revisions      map[string][]Resource
	DomainMappings map[string][]Resource
	Jobs           map[string][]Resource
	JobRuns        map[string][]Resource
	Builds         map[string][]Resource
	BuildRuns      map[string][]Resource
	Secrets        map[string][]Resource

	// Calls records operation names in call order.
	Calls []string
	// LastLimit is the page size hint of the most recent list call.
	LastLimit int
	// LastPatch and LastDeployment capture write inputs.
	LastPatch      AppPatch
	LastDeployment SourceDeployment

	failures map[string][]error
}

var _ API = (*Fake)(nil)

func NewFake() *Fake {
	return &Fake{
		Apps:           map[string][]Resource{},
		Revisions:      map[string][]Resource{},
		DomainMappings: map[string][]Resource{},
		Jobs:           map[string][]Resource{},
		JobRuns:        map[string][]Resource{},
		Builds:         map[string][]Resource{},
		BuildRuns:      map[string][]Resource{},
		Secrets:        map[string][]Resource{},
		failures:       map[string][]error{},
	}
}

// FailNext makes the next call of op return err. Failures queue up per op.
func (f *Fake) FailNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures == nil {
		f.failures = map[string][]error{}
	}
	f.failures[op] = append(f.failures[op], err)
}

func (f *Fake) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, call := range f.Calls {
		if call == op {
			count++
		}
	}
	return count
}

func (f *Fake) begin(op string, limit int) error {
	f.Calls = append(f.Calls, op)
	if limit >= 0 {
		f.LastLimit = limit
	}
	if queued := f.failures[op]; len(queued) > 0 {
		f.failures[op] = queued[1:]
		return queued[0]
	}
	return nil
}

func notFound(op, kind, name string) *Error {
	return &Error{
		Kind:       KindNotFound,
		Op:         op,
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("%s '%s' not found", kind, name),
	}
}

func lookupByName(op, kind string, records []Resource, name string) (Resource, error) {
	if record, ok := findByName(records, name); ok {
		return record, nil
	}
	return nil, notFound(op, kind, name)
}

func orEmpty(records []Resource) []Resource {
	if records == nil {
		return []Resource{}
	}
	return records
}

func (f *Fake) ListProjects(_ context.Context, limit int, resourceGroupID string) ([]Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("list_projects", limit); err != nil {
		return nil, err
	}
	return orEmpty(filterByField(f.Projects, "resource_group_id", resourceGroupID)), nil
}

func (f *Fake) FindProjectByName(_ context.Context, name, resourceGroupID string) (Resource, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("find_project_by_name", -1); err != nil {
		return nil, false, err
	}
	project, found := findByName(filterByField(f.Projects, "resource_group_id", resourceGroupID), name)
	return project, found, nil
}

func (f *Fake) ListApps(_ context.Context, projectID string, limit int) ([]Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("list_applications", limit); err != nil {
		return nil, err
	}
	return orEmpty(f.Apps[projectID]), nil
}

func (f *Fake) GetApp(_ context.Context, projectID, name string) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("get_application", -1); err != nil {
		return nil, err
	}
	return lookupByName("get_application", "application", f.Apps[projectID], name)
}

func (f *Fake) CreateApp(_ context.Context, projectID string, app AppPrototype) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("create_application", -1); err != nil {
		return nil, err
	}
	record := Resource{
		"name":                    app.Name,
		"image_reference":         app.ImageReference,
		"image_port":              float64(app.ImagePort),
		"scale_min_instances":     float64(app.ScaleMinInstances),
		"scale_max_instances":     float64(app.ScaleMaxInstances),
		"scale_cpu_limit":         app.ScaleCPULimit,
		"scale_memory_limit":      app.ScaleMemoryLimit,
		"managed_domain_mappings": app.ManagedDomainMappings,
		"status":                  "deploying",
	}
	f.Apps[projectID] = append(f.Apps[projectID], record)
	return record, nil
}

func (f *Fake) UpdateApp(_ context.Context, projectID, name string, patch AppPatch) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("update_application", -1); err != nil {
		return nil, err
	}
	f.LastPatch = patch
	if patch.Empty() {
		return nil, invalidArgument("update_application", "no fields to update for application %s", name)
	}
	record, err := lookupByName("update_application", "application", f.Apps[projectID], name)
	if err != nil {
		return nil, err
	}
	if patch.ImageReference != nil {
		record["image_reference"] = *patch.ImageReference
	}
	if patch.ScaleMinInstances != nil {
		record["scale_min_instances"] = float64(*patch.ScaleMinInstances)
	}
	if patch.ScaleMaxInstances != nil {
		record["scale_max_instances"] = float64(*patch.ScaleMaxInstances)
	}
	if patch.ScaleCPULimit != nil {
		record["scale_cpu_limit"] = *patch.ScaleCPULimit
	}
	if patch.ScaleMemoryLimit != nil {
		record["scale_memory_limit"] = *patch.ScaleMemoryLimit
	}
	return record, nil
}

func (f *Fake) CreateAppFromSource(_ context.Context, d SourceDeployment) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("create_app_from_source", -1); err != nil {
		return nil, err
	}
	f.LastDeployment = d
	return Resource{
		"name":       d.AppName,
		"project_id": d.ProjectID,
		"source":     d.SourcePath,
		"image":      d.ImageName,
		"status":     "deploying",
	}, nil
}

func (f *Fake) ListAppRevisions(_ context.Context, projectID, appName string, limit int) ([]Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("list_app_revisions", limit); err != nil {
		return nil, err
	}
	return orEmpty(f.Revisions[projectID+"/"+appName]), nil
}

func (f *Fake) GetAppRevision(_ context.Context, projectID, appName, revisionName string) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("get_app_revision", -1); err != nil {
		return nil, err
	}
	return lookupByName("get_app_revision", "revision", f.Revisions[projectID+"/"+appName], revisionName)
}

func (f *Fake) ListDomainMappings(_ context.Context, projectID string, limit int) ([]Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("list_domain_mappings", limit); err != nil {
		return nil, err
	}
	return orEmpty(f.DomainMappings[projectID]), nil
}

func (f *Fake) GetDomainMapping(_ context.Context, projectID, name string) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("get_domain_mapping", -1); err != nil {
		return nil, err
	}
	return lookupByName("get_domain_mapping", "domain mapping", f.DomainMappings[projectID], name)
}

func (f *Fake) ListJobs(_ context.Context, projectID string, limit int) ([]Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("list_jobs", limit); err != nil {
		return nil, err
	}
	return orEmpty(f.Jobs[projectID]), nil
}

func (f *Fake) GetJob(_ context.Context, projectID, name string) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("get_job", -1); err != nil {
		return nil, err
	}
	return lookupByName("get_job", "job", f.Jobs[projectID], name)
}

func (f *Fake) ListJobRuns(_ context.Context, projectID, jobName string, limit int) ([]Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("list_job_runs", limit); err != nil {
		return nil, err
	}
	return orEmpty(filterByField(f.JobRuns[projectID], "job_name", jobName)), nil
}

func (f *Fake) GetJobRun(_ context.Context, projectID, name string) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("get_job_run", -1); err != nil {
		return nil, err
	}
	return lookupByName("get_job_run", "job run", f.JobRuns[projectID], name)
}

func (f *Fake) ListBuilds(_ context.Context, projectID string, limit int) ([]Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("list_builds", limit); err != nil {
		return nil, err
	}
	return orEmpty(f.Builds[projectID]), nil
}

func (f *Fake) CreateBuild(_ context.Context, projectID string, build BuildPrototype) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("create_build", -1); err != nil {
		return nil, err
	}
	record := Resource{
		"name":               build.Name,
		"output_image":       build.OutputImage,
		"output_secret":      build.OutputSecret,
		"source_url":         build.SourceURL,
		"source_revision":    build.SourceRevision,
		"source_context_dir": build.SourceContextDir,
		"strategy_type":      build.StrategyType,
		"strategy_spec_file": build.StrategySpecFile,
		"strategy_size":      build.StrategySize,
		"status":             "ready",
	}
	f.Builds[projectID] = append(f.Builds[projectID], record)
	return record, nil
}

func (f *Fake) ListBuildRuns(_ context.Context, projectID, buildName string, limit int) ([]Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("list_build_runs", limit); err != nil {
		return nil, err
	}
	return orEmpty(filterByField(f.BuildRuns[projectID], "build_name", buildName)), nil
}

func (f *Fake) GetBuildRun(_ context.Context, projectID, name string) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("get_build_run", -1); err != nil {
		return nil, err
	}
	return lookupByName("get_build_run", "build run", f.BuildRuns[projectID], name)
}

func (f *Fake) CreateBuildRun(_ context.Context, projectID string, run BuildRunPrototype) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("create_build_run", -1); err != nil {
		return nil, err
	}
	if _, ok := findByName(f.Builds[projectID], run.BuildName); !ok {
		return nil, notFound("create_build_run", "build", run.BuildName)
	}
	name := run.Name
	if name == "" {
		name = fmt.Sprintf("%s-run-%d", run.BuildName, len(f.BuildRuns[projectID])+1)
	}
	record := Resource{"name": name, "build_name": run.BuildName, "status": "pending"}
	f.BuildRuns[projectID] = append(f.BuildRuns[projectID], record)
	return record, nil
}

func (f *Fake) ListSecrets(_ context.Context, projectID string, limit int) ([]Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("list_secrets", limit); err != nil {
		return nil, err
	}
	return orEmpty(f.Secrets[projectID]), nil
}

func (f *Fake) GetSecret(_ context.Context, projectID, name string) (Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin("get_secret", -1); err != nil {
		return nil, err
	}
	return lookupByName("get_secret", "secret", f.Secrets[projectID], name)
}
