package render

import (
	"fmt"
	"strings"
)

func Application(app map[string]any) string {
	return detail("Application", app, []column{
		col("Status", "status"),
		col("Image", "image_reference"),
		col("Port", "image_port"),
		col("Created", "created_at"),
		col("Updated", "updated_at"),
		col("Endpoint", "endpoint"),
		col("Min instances", "scale_min_instances"),
		col("Max instances", "scale_max_instances"),
		col("CPU limit", "scale_cpu_limit"),
		col("Memory limit", "scale_memory_limit"),
	})
}

func AppRevision(revision map[string]any, appName string) string {
	columns := []column{
		col("Application", "app_name"),
		col("Status", "status"),
		col("Image", "image_reference"),
		col("Created", "created_at"),
		col("Min instances", "scale_min_instances"),
		col("Max instances", "scale_max_instances"),
	}
	out := detail("Revision", revision, columns)
	if appName != "" && Field(revision, "app_name") == Unknown {
		out = strings.Replace(out, "• Application: "+Unknown, "• Application: "+appName, 1)
	}
	return out
}

func DomainMapping(mapping map[string]any) string {
	return detail("Domain mapping", mapping, []column{
		col("Status", "status"),
		col("Component", "component", "name"),
		col("Component type", "component", "resource_type"),
		col("TLS secret", "tls_secret"),
		col("CNAME target", "cname_target"),
		col("Created", "created_at"),
	})
}

func Job(job map[string]any) string {
	return detail("Job", job, []column{
		col("Image", "image_reference"),
		col("Run mode", "run_mode"),
		col("Array spec", "scale_array_spec"),
		col("Retry limit", "scale_retry_limit"),
		col("Max execution time", "scale_max_execution_time"),
		col("Created", "created_at"),
		col("Updated", "updated_at"),
	})
}

func JobRun(run map[string]any) string {
	return detail("Job run", run, []column{
		col("Job", "job_name"),
		col("Status", "status"),
		col("Image", "image_reference"),
		col("Created", "created_at"),
		col("Succeeded", "status_details", "succeeded"),
		col("Failed", "status_details", "failed"),
	})
}

func BuildRun(run map[string]any) string {
	return detail("Build run", run, []column{
		col("Build", "build_name"),
		col("Status", "status"),
		col("Reason", "status_details", "reason"),
		col("Output image", "output_image"),
		col("Created", "created_at"),
	})
}

// Secret shows key names only. Callers are expected to pass a masked record
// anyway.
func Secret(secret map[string]any) string {
	out := detail("Secret", secret, []column{
		col("Format", "format"),
		col("Created", "created_at"),
		col("Updated", "updated_at"),
	})
	return out + "\n• Keys: " + dataKeys(secret)
}

func ProjectMatch(project map[string]any) string {
	return fmt.Sprintf("Found project **%s** (%s)\n  Region: %s\n  Status: %s\n  Resource group: %s",
		Field(project, "name"), Field(project, "id"),
		Field(project, "region"), Field(project, "status"), Field(project, "resource_group_id"))
}

func ProjectNotFound(name string) string {
	return fmt.Sprintf("No project found with name '%s'.", name)
}

func Created(kind string, record map[string]any) string {
	return fmt.Sprintf("Created %s **%s**\n  Status: %s", kind, Field(record, "name"), Field(record, "status"))
}

func Updated(kind string, record map[string]any) string {
	return fmt.Sprintf("Updated %s **%s**\n  Status: %s", kind, Field(record, "name"), Field(record, "status"))
}

// SourceDeployment summarises a build-source deployment driven through the
// CLI.
func SourceDeployment(result map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deployed application **%s** from source\n", Field(result, "name"))
	fmt.Fprintf(&b, "  Project: %s\n", Field(result, "project_id"))
	fmt.Fprintf(&b, "  Image: %s\n", Field(result, "image"))
	fmt.Fprintf(&b, "  Endpoint: %s", Field(result, "endpoint"))
	return b.String()
}
