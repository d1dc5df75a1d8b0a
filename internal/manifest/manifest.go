package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Target kind discriminators used in the manifest's `type` field.
const (
	kindDocker = "docker"
	kindLambda = "aws-lambda"
)

// The loaded workspace manifest.
type Manifest struct {
	// Directory containing the manifest file. Package roots are
	// resolved relative to it.
	Dir string `yaml:"-"`

	Packages []*Package `yaml:"packages"`
}

// A buildable unit of the monorepo.
type Package struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Directory of the package, relative to the manifest.
	Root string `yaml:"root"`

	// Names of the binaries the package builds, in declaration order.
	Binaries []string `yaml:"binaries"`

	// Author-maintained fingerprint of the transitive dependency
	// closure. Empty on first use.
	DepsDigest string `yaml:"deps_digest"`

	Targets []*Target `yaml:"targets"`
}

// A named distribution target attached to a package.
//
// Exactly one of Docker or Lambda is set, selected by the `type` field.
type Target struct {
	Name   string
	Docker *DockerTarget
	Lambda *LambdaTarget
}

// Returns the target kind discriminator for display.
func (t *Target) Kind() string {
	if t.Docker != nil {
		return kindDocker
	}
	return kindLambda
}

// Decodes a target, dispatching on the `type` discriminator.
func (t *Target) UnmarshalYAML(node *yaml.Node) error {
	var probe struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
	}
	if err := node.Decode(&probe); err != nil {
		return err
	}

	t.Name = probe.Name

	switch probe.Type {
	case kindDocker:
		t.Docker = &DockerTarget{TargetBinDir: DefaultTargetBinDir}
		return node.Decode(t.Docker)
	case kindLambda:
		t.Lambda = &LambdaTarget{}
		return node.Decode(t.Lambda)
	case "":
		return fmt.Errorf("target %q: missing type", probe.Name)
	default:
		return fmt.Errorf("target %q: unknown type %q", probe.Name, probe.Type)
	}
}

// Default in-image directory for copied binaries.
const DefaultTargetBinDir = "/bin"

// Configuration for a Docker image target.
type DockerTarget struct {
	Registry     string `yaml:"registry"`
	Template     string `yaml:"template"`
	TargetBinDir string `yaml:"target_bin_dir"`

	ExtraFiles    []CopyRule `yaml:"extra_files"`
	ExtraEnv      []EnvVar   `yaml:"extra_env"`
	ExtraCommands []string   `yaml:"extra_commands"`
	ExposedPorts  []int      `yaml:"exposed_ports"`

	Base    string   `yaml:"base"`
	Workdir string   `yaml:"workdir"`
	Command []string `yaml:"command"`

	AllowRegistryCreation bool `yaml:"allow_registry_auto_creation"`
}

// Whether any discrete instruction field is set alongside a custom
// template. Used to flag the configuration conflict at load time.
func (d *DockerTarget) HasDiscreteFields() bool {
	return d.Base != "" || len(d.ExtraEnv) > 0 || len(d.ExtraCommands) > 0 ||
		len(d.ExposedPorts) > 0 || d.Workdir != "" || len(d.Command) > 0
}

// Configuration for an AWS Lambda archive target.
type LambdaTarget struct {
	Bucket       string `yaml:"bucket"`
	BucketPrefix string `yaml:"bucket_prefix"`
	Region       string `yaml:"region"`

	// Binary to package. Required when the package builds more than one.
	BinaryName string `yaml:"binary_name"`

	ExtraFiles []CopyRule `yaml:"extra_files"`
}

// An ordered source-glob to destination mapping.
type CopyRule struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
}

// An ordered environment variable declaration.
type EnvVar struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}
