package utils

// Configuration file locations.
const (
	// ConfigFileName is the local configuration file looked up in the working directory.
	ConfigFileName = ".harvest.yaml"
	// GlobalConfigFileName is the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// GlobalConfigDirectoryName is the per-user configuration directory under the home directory.
	GlobalConfigDirectoryName = ".harvest"
	// GitDirectoryName locates the repository when deriving a development version.
	GitDirectoryName = ".git"
)

// Built-in defaults of the generate command.
const (
	DefaultVariable       = "var.HarvestPath"
	DefaultComponentGroup = "HeatGenerated"
	DefaultDirectoryRef   = "INSTALLFOLDER"
)
