package codeengine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cemcp/internal/runner"
)

const endpointDomain = "codeengine.appdomain.cloud"

// CreateAppFromSource builds and deploys a local directory with the IBM Cloud
// CLI build-source flow. The directory must contain a Dockerfile.
func (c *Client) CreateAppFromSource(ctx context.Context, d SourceDeployment) (Resource, error) {
	const op = "create_app_from_source"
	dir, err := filepath.Abs(d.SourcePath)
	if err != nil {
		return nil, invalidArgument(op, "source path %q: %v", d.SourcePath, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Dockerfile")); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, invalidArgument(op, "Dockerfile not found in %s", dir)
		}
		return nil, invalidArgument(op, "source path %s: %v", dir, err)
	}
	if d.MaxScale > 0 && d.MinScale > d.MaxScale {
		return nil, invalidArgument(op, "min_scale %d exceeds max_scale %d", d.MinScale, d.MaxScale)
	}

	if c.deploy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.deploy.Timeout)
		defer cancel()
	}

	image := ImageName(c.deploy.Registry, d.ImageName)
	login := []string{"login", "--quiet"}
	if c.region != "" {
		login = append(login, "-r", c.region)
	}
	steps := []runner.Command{
		c.cli(dir, login...),
		c.cli(dir, "ce", "project", "select", "--id", d.ProjectID),
		c.cli(dir, appCreateArgs(dir, image, d)...),
	}
	var output string
	for _, step := range steps {
		out, err := c.runner.Run(ctx, step)
		if err != nil {
			return nil, &Error{
				Kind:    KindTransport,
				Op:      op,
				Message: fmt.Sprintf("%s %s failed: %v: %s", c.deploy.CLIPath, strings.Join(step.Args[:2], " "), err, lastLines(out, 5)),
				Err:     err,
			}
		}
		output = out
	}

	result := Resource{
		"name":       d.AppName,
		"project_id": d.ProjectID,
		"source":     dir,
		"status":     "deploying",
	}
	if image != "" {
		result["image"] = image
	}
	if endpoint := ExtractEndpoint(output); endpoint != "" {
		result["endpoint"] = endpoint
		result["status"] = "deployed"
	}
	return result, nil
}

func (c *Client) cli(dir string, args ...string) runner.Command {
	env := []string{"IBMCLOUD_API_KEY=" + c.apiKey}
	return runner.Command{Name: c.deploy.CLIPath, Args: args, Dir: dir, Env: env}
}

func appCreateArgs(dir, image string, d SourceDeployment) []string {
	args := []string{
		"ce", "app", "create",
		"--name", d.AppName,
		"--build-source", dir,
		"--port", strconv.Itoa(d.Port),
		"--min-scale", strconv.Itoa(d.MinScale),
		"--max-scale", strconv.Itoa(d.MaxScale),
		"--force",
	}
	if d.CPULimit != "" {
		args = append(args, "--cpu", d.CPULimit)
	}
	if d.MemoryLimit != "" {
		args = append(args, "--memory", d.MemoryLimit)
	}
	if image != "" {
		args = append(args, "--image", image)
	}
	return args
}

// ImageName qualifies a short image name with the registry and the latest tag.
// Fully qualified references are returned unchanged and an empty name lets
// Code Engine choose one.
func ImageName(registry, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	first, _, hasSlash := strings.Cut(name, "/")
	if !hasSlash || !strings.ContainsAny(first, ".:") {
		name = strings.TrimRight(registry, "/") + "/" + name
	}
	last := name[strings.LastIndex(name, "/")+1:]
	if !strings.Contains(last, ":") && !strings.Contains(last, "@") {
		name += ":latest"
	}
	return name
}

// ExtractEndpoint returns the first application URL printed by the CLI.
func ExtractEndpoint(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, endpointDomain) {
			continue
		}
		idx := strings.Index(line, "https://")
		if idx < 0 {
			continue
		}
		fields := strings.Fields(line[idx:])
		if len(fields) > 0 {
			return fields[0]
		}
	}
	return ""
}

func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
