package codeengine

import "cemcp/internal/mcp"

const (
	defaultLimit = 100
	maxLimit     = 200
	// maxInstances is the Code Engine per-application instance ceiling.
	maxInstances = 250
)

func projectID() mcp.Param {
	return mcp.Param{Name: "project_id", Type: mcp.TypeString, Required: true, Description: "Code Engine project ID"}
}

func limit(kind string) mcp.Param {
	return mcp.Param{
		Name:        "limit",
		Type:        mcp.TypeInteger,
		Description: "Maximum number of " + kind + " to return (default: 100)",
		Default:     defaultLimit,
		Minimum:     mcp.Int(1),
		Maximum:     mcp.Int(maxLimit),
	}
}

func required(name, description string) mcp.Param {
	return mcp.Param{Name: name, Type: mcp.TypeString, Required: true, Description: description}
}

func optional(name, description, def string) mcp.Param {
	p := mcp.Param{Name: name, Type: mcp.TypeString, Description: description}
	if def != "" {
		p.Default = def
	}
	return p
}

func integer(name, description string, def int, min, max *int) mcp.Param {
	return mcp.Param{Name: name, Type: mcp.TypeInteger, Description: description, Default: def, Minimum: min, Maximum: max}
}

func paramsListProjects() []mcp.Param {
	return []mcp.Param{
		limit("projects"),
		optional("resource_group_id", "Only return projects in this resource group", ""),
	}
}

func paramsFindProject() []mcp.Param {
	return []mcp.Param{
		required("project_name", "Exact name of the project"),
		optional("resource_group_id", "Only search projects in this resource group", ""),
	}
}

func paramsProjectList(kind string) []mcp.Param {
	return []mcp.Param{projectID(), limit(kind)}
}

func paramsProjectGet(name, description string) []mcp.Param {
	return []mcp.Param{projectID(), required(name, description)}
}

func paramsFilteredList(filter, description, kind string) []mcp.Param {
	return []mcp.Param{projectID(), optional(filter, description, ""), limit(kind)}
}

func paramsCreateApplication() []mcp.Param {
	return []mcp.Param{
		projectID(),
		required("app_name", "Name of the application"),
		required("image_reference", "Container image to run, for example icr.io/codeengine/helloworld"),
		integer("image_port", "Port the container listens on", 8080, mcp.Int(1), mcp.Int(65535)),
		integer("scale_min_instances", "Minimum number of instances", 0, mcp.Int(0), mcp.Int(maxInstances)),
		integer("scale_max_instances", "Maximum number of instances", 10, mcp.Int(1), mcp.Int(maxInstances)),
		optional("scale_cpu_limit", "CPU limit per instance", "1"),
		optional("scale_memory_limit", "Memory limit per instance", "4G"),
		optional("managed_domain_mappings", "Visibility: local_public, local_private or local", "local_public"),
	}
}

func paramsUpdateApplication() []mcp.Param {
	return []mcp.Param{
		projectID(),
		required("app_name", "Name of the application"),
		optional("image_reference", "New container image", ""),
		{Name: "scale_min_instances", Type: mcp.TypeInteger, Description: "New minimum number of instances", Minimum: mcp.Int(0), Maximum: mcp.Int(maxInstances)},
		{Name: "scale_max_instances", Type: mcp.TypeInteger, Description: "New maximum number of instances", Minimum: mcp.Int(1), Maximum: mcp.Int(maxInstances)},
		optional("scale_cpu_limit", "New CPU limit per instance", ""),
		optional("scale_memory_limit", "New memory limit per instance", ""),
	}
}

func paramsCreateAppFromSource() []mcp.Param {
	return []mcp.Param{
		projectID(),
		required("app_name", "Name of the application"),
		optional("source_path", "Local directory containing a Dockerfile", "."),
		integer("port", "Port the container listens on", 8080, mcp.Int(1), mcp.Int(65535)),
		optional("image_name", "Image name to push, qualified with the configured registry when short", ""),
		integer("min_scale", "Minimum number of instances", 1, mcp.Int(0), mcp.Int(100)),
		integer("max_scale", "Maximum number of instances", 10, mcp.Int(1), mcp.Int(100)),
		optional("cpu_limit", "CPU limit per instance", "0.5"),
		optional("memory_limit", "Memory limit per instance", "4G"),
	}
}

func paramsListAppRevisions() []mcp.Param {
	return []mcp.Param{projectID(), required("app_name", "Name of the application"), limit("revisions")}
}

func paramsGetAppRevision() []mcp.Param {
	return []mcp.Param{
		projectID(),
		required("app_name", "Name of the application"),
		required("revision_name", "Name of the revision"),
	}
}

func paramsCreateBuild() []mcp.Param {
	return []mcp.Param{
		projectID(),
		required("build_name", "Name of the build"),
		required("output_image", "Image reference the build pushes to"),
		required("output_secret", "Registry secret used to push the image"),
		required("source_url", "Git repository URL"),
		optional("source_revision", "Branch, tag or commit to build", "main"),
		optional("source_context_dir", "Directory inside the repository to build from", ""),
		optional("strategy_type", "Build strategy: dockerfile or buildpacks", "dockerfile"),
		optional("strategy_spec_file", "Path to the Dockerfile", "./Dockerfile"),
		optional("strategy_size", "Build size: small, medium, large or xlarge", "medium"),
	}
}

func paramsCreateBuildRun() []mcp.Param {
	return []mcp.Param{
		projectID(),
		required("build_name", "Name of the build to run"),
		optional("name", "Name of the build run, generated when omitted", ""),
	}
}
