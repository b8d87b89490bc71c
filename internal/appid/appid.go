// Package appid holds the identity the binary uses for config paths, env
// prefixes and telemetry namespaces.
package appid

import (
	"context"
	"os"
	"strings"
)

// EnvBinaryName lets packagers rebrand the binary without a rebuild. The env
// prefix and config name follow the binary name.
const EnvBinaryName = "CLAIMLENS_BINARY_NAME"

// DefaultBinaryName is the name used when no override is set.
const DefaultBinaryName = "claimlens"

// Identity describes the application.
type Identity struct {
	Vendor             string
	BinaryName         string
	ConfigName         string
	EnvPrefix          string
	Description        string
	TelemetryNamespace string
}

var defaultIdentity = Identity{
	Vendor:             "claimlens",
	BinaryName:         DefaultBinaryName,
	ConfigName:         "claimlens",
	EnvPrefix:          "CLAIMLENS_",
	Description:        "Fact-check claims and URLs with search-grounded language models",
	TelemetryNamespace: "claimlens",
}

// Get returns the application identity, applying EnvBinaryName.
func Get(_ context.Context) (*Identity, error) {
	identity := defaultIdentity

	name := strings.TrimSpace(os.Getenv(EnvBinaryName))
	if name != "" && name != identity.BinaryName {
		identity.BinaryName = name
		identity.ConfigName = name
		identity.TelemetryNamespace = strings.ReplaceAll(name, "-", "_")
		identity.EnvPrefix = strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_"
	}
	return &identity, nil
}
