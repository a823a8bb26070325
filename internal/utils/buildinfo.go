package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion = "unknown"
	develVersion   = "(devel)"
)

// Version is stamped at link time with -ldflags "-X .../internal/utils.Version=v1.2.3".
var Version = ""

// GetApplicationVersion reports the linked version, then the module version
// from build info, then a git description of the source checkout.
func GetApplicationVersion() string {
	if Version != "" {
		return Version
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != develVersion {
		return buildInfo.Main.Version
	}

	checkoutDirectory, findError := findGitDirectory(".")
	if findError != nil {
		return unknownVersion
	}
	for _, describeArguments := range gitDescribeArguments {
		if description := describeCheckout(checkoutDirectory, describeArguments); description != "" {
			return description
		}
	}
	return unknownVersion
}

var gitDescribeArguments = [][]string{
	{"describe", "--tags", "--exact-match"},
	{"describe", "--tags", "--long", "--dirty"},
}

func describeCheckout(checkoutDirectory string, arguments []string) string {
	// #nosec G204
	command := exec.Command("git", arguments...)
	command.Dir = checkoutDirectory
	output, err := command.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}

// findGitDirectory returns the nearest directory at or above startDirectory
// that contains a .git directory.
func findGitDirectory(startDirectory string) (string, error) {
	absoluteStartDirectory, err := filepath.Abs(startDirectory)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", startDirectory, err)
	}
	for currentDirectory := absoluteStartDirectory; ; {
		if info, statErr := os.Stat(filepath.Join(currentDirectory, GitDirectoryName)); statErr == nil && info.IsDir() {
			return currentDirectory, nil
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", fmt.Errorf("%s not found in or above %s", GitDirectoryName, absoluteStartDirectory)
		}
		currentDirectory = parentDirectory
	}
}
