package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gopkg.in/yaml.v3"

	"cemcp/pkg/server"

	_ "cemcp/toolsets/codeengine"
)

const version = "0.1.0"

var (
	runServer           = server.Run
	listTools           = server.Tools
	exit                = os.Exit
	stdout    io.Writer = os.Stdout
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := flags.String("config", "", "config file path (env CEMCP_CONFIG)")
	configDir := flags.String("config-dir", "", "directory of drop-in config files")
	envFile := flags.String("env-file", ".env", "dotenv file loaded before configuration")
	region := flags.String("region", "", "IBM Cloud region")
	endpoint := flags.String("endpoint", "", "Code Engine API endpoint")
	toolsets := flags.String("toolsets", "", "comma-separated toolsets to enable")
	readOnly := flags.Bool("read-only", false, "disable create and update tools")
	logLevel := flags.String("log-level", "", "log level")
	printTools := flags.Bool("print-tools", false, "print the tool catalog and exit")
	toolsFormat := flags.String("tools-format", "json", "catalog format for -print-tools: json or yaml")
	showVersion := flags.Bool("version", false, "print the version and exit")

	_ = flags.Parse(os.Args[1:])

	if *showVersion {
		fmt.Fprintln(stdout, version)
		return
	}

	options := server.Options{
		ConfigPath: *configPath,
		DropInDir:  *configDir,
		EnvFile:    *envFile,
		Version:    version,
		Stderr:     os.Stderr,
	}
	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["region"] {
		options.Region = *region
	}
	if set["endpoint"] {
		options.Endpoint = *endpoint
	}
	if set["toolsets"] {
		options.Toolsets = parseCSV(*toolsets)
	}
	if set["read-only"] {
		options.ReadOnly = *readOnly
	}
	if set["log-level"] {
		options.LogLevel = *logLevel
	}

	if *printTools {
		if err := writeTools(options, *toolsFormat); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			exit(1)
		}
		return
	}

	if err := runServer(ctx, options); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		exit(1)
	}
}

func writeTools(options server.Options, format string) error {
	tools, err := listTools(options)
	if err != nil {
		return err
	}
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tools)
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(tools); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown tools format %q", format)
	}
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
