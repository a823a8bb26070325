package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/temirov/harvest/internal/types"
	"github.com/temirov/harvest/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the per-user configuration directory.
	InitTargetGlobal InitTarget = "global"

	templateIndentSpaces = 2
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
	HomeDirectory    string
}

// InitializeConfiguration writes the default configuration to the requested target
// and returns its path.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.ConfigFileName)
	case InitTargetGlobal:
		homeDirectory := options.HomeDirectory
		if homeDirectory == "" {
			resolvedHome, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home directory for configuration: %w", err)
			}
			homeDirectory = resolvedHome
		}
		destinationPath = GlobalConfigPath(homeDirectory)
		if err := os.MkdirAll(filepath.Dir(destinationPath), 0o755); err != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", filepath.Dir(destinationPath), err)
		}
	default:
		return "", fmt.Errorf("%w: unsupported init target %q", types.ErrInvalidArguments, target)
	}

	if _, err := os.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf("%w: configuration file already exists at %s", types.ErrInvalidArguments, destinationPath)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, err)
	}

	template, err := renderDefaultConfiguration()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(destinationPath, template, 0o600); err != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
	}
	return destinationPath, nil
}

// DefaultApplicationConfiguration returns the built-in defaults written by init.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	parallel := 1
	ignoreCase := false
	return ApplicationConfiguration{
		Generate: GenerateConfiguration{
			Variable:       utils.DefaultVariable,
			ComponentGroup: utils.DefaultComponentGroup,
			DirectoryRef:   utils.DefaultDirectoryRef,
			Format:         types.FormatWXS,
			GUIDs:          types.GUIDModeAuto,
			Parallel:       &parallel,
			IgnoreCase:     &ignoreCase,
			Paths: PathConfiguration{
				Exclude:           []string{},
				ExcludeExtensions: []string{},
			},
		},
	}
}

func renderDefaultConfiguration() ([]byte, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(templateIndentSpaces)
	if err := encoder.Encode(DefaultApplicationConfiguration()); err != nil {
		return nil, fmt.Errorf("render default configuration: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("render default configuration: %w", err)
	}
	return buffer.Bytes(), nil
}
