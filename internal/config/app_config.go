package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/harvest/internal/types"
	"github.com/temirov/harvest/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	HomeDirectory    string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Generate GenerateConfiguration `mapstructure:"generate" yaml:"generate"`
}

// GenerateConfiguration defines defaults for the generate command.
type GenerateConfiguration struct {
	Variable       string            `mapstructure:"variable" yaml:"variable"`
	ComponentGroup string            `mapstructure:"component_group" yaml:"component_group"`
	DirectoryRef   string            `mapstructure:"directory_ref" yaml:"directory_ref"`
	IgnoreFile     string            `mapstructure:"ignore_file" yaml:"ignore_file"`
	Format         string            `mapstructure:"format" yaml:"format"`
	GUIDs          string            `mapstructure:"guids" yaml:"guids"`
	Parallel       *int              `mapstructure:"parallel" yaml:"parallel"`
	IgnoreCase     *bool             `mapstructure:"ignore_case" yaml:"ignore_case"`
	Paths          PathConfiguration `mapstructure:"paths" yaml:"paths"`
}

// PathConfiguration configures exclusion rules for path traversal.
type PathConfiguration struct {
	Exclude           []string `mapstructure:"exclude" yaml:"exclude"`
	ExcludeExtensions []string `mapstructure:"exclude_extensions" yaml:"exclude_extensions"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
// Missing files contribute nothing; local values override global ones.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if resolvedHome, err := os.UserHomeDir(); err == nil {
			homeDirectory = resolvedHome
		}
	}
	if homeDirectory != "" {
		globalConfig, err := loadConfigurationFromPath(GlobalConfigPath(homeDirectory), false)
		if err != nil {
			return ApplicationConfiguration{}, err
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, explicit := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	localConfig, err := loadConfigurationFromPath(localPath, explicit)
	if err != nil {
		return ApplicationConfiguration{}, err
	}
	merged = merged.Merge(localConfig)

	merged.Generate.Paths.Exclude = utils.DeduplicatePatterns(merged.Generate.Paths.Exclude)
	return merged, nil
}

// GlobalConfigPath returns the per-user configuration file under homeDirectory.
func GlobalConfigPath(homeDirectory string) string {
	return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, bool) {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.ConfigFileName), false
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath, true
	}
	return filepath.Join(workingDirectory, explicitPath), true
}

// loadConfigurationFromPath reads one YAML file. A missing file is only an
// error when it was named explicitly.
func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			if required {
				return ApplicationConfiguration{}, fmt.Errorf("%w: configuration %s: %w", types.ErrPathNotFound, path, statErr)
			}
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("%w: stat configuration %s: %w", types.ErrInvalidArguments, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("%w: configuration path %s is a directory", types.ErrInvalidArguments, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("%w: read configuration from %s: %w", types.ErrInvalidArguments, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("%w: decode configuration from %s: %w", types.ErrInvalidArguments, path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Generate = result.Generate.merge(override.Generate)
	return result
}

func (config GenerateConfiguration) merge(override GenerateConfiguration) GenerateConfiguration {
	result := config
	if override.Variable != "" {
		result.Variable = override.Variable
	}
	if override.ComponentGroup != "" {
		result.ComponentGroup = override.ComponentGroup
	}
	if override.DirectoryRef != "" {
		result.DirectoryRef = override.DirectoryRef
	}
	if override.IgnoreFile != "" {
		result.IgnoreFile = override.IgnoreFile
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.GUIDs != "" {
		result.GUIDs = override.GUIDs
	}
	if override.Parallel != nil {
		result.Parallel = cloneInt(override.Parallel)
	}
	if override.IgnoreCase != nil {
		result.IgnoreCase = cloneBool(override.IgnoreCase)
	}
	result.Paths = result.Paths.merge(override.Paths)
	return result
}

func (config PathConfiguration) merge(override PathConfiguration) PathConfiguration {
	result := config
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, override.Exclude...)
	}
	if len(override.ExcludeExtensions) > 0 {
		result.ExcludeExtensions = append([]string{}, override.ExcludeExtensions...)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
