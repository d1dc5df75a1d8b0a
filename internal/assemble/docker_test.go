package assemble

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cruciblehq/monopack/internal/manifest"
)

// Lays out a package source tree and a binary directory for assembly.
func dockerFixture(t *testing.T) (pkg *manifest.Package, root, binDir string) {
	t.Helper()

	root = t.TempDir()
	binDir = t.TempDir()

	for _, name := range []string{"foo", "bar"} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!"+name), 0755); err != nil {
			t.Fatal(err)
		}
	}

	if err := os.MkdirAll(filepath.Join(root, "configs"), 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.yaml", "a.yaml"} {
		if err := os.WriteFile(filepath.Join(root, "configs", name), []byte(name+": {}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	pkg = &manifest.Package{
		Name:     "app",
		Version:  "1.2.3",
		Binaries: []string{"foo", "bar"},
	}
	return pkg, root, binDir
}

func TestDockerTemplateScenario(t *testing.T) {
	pkg, root, binDir := dockerFixture(t)

	target := &manifest.DockerTarget{
		Registry:     "docker.io/acme",
		TargetBinDir: manifest.DefaultTargetBinDir,
		Template:     "{{ copy_all_binaries }}\nCMD [{{ binaries.0 }}]",
	}

	ctx, err := Docker(pkg, target, "app", root, binDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "COPY foo /bin/foo\nCOPY bar /bin/bar\nCMD [/bin/foo]"
	if ctx.Dockerfile != want {
		t.Errorf("dockerfile = %q, want %q", ctx.Dockerfile, want)
	}
	if ctx.Tag != "docker.io/acme/app:1.2.3" {
		t.Errorf("tag = %q", ctx.Tag)
	}
}

func TestDockerSynthesized(t *testing.T) {
	pkg, root, binDir := dockerFixture(t)

	target := &manifest.DockerTarget{
		Registry:     "docker.io/acme",
		TargetBinDir: manifest.DefaultTargetBinDir,
		Base:         "alpine:3.20",
		ExtraEnv: []manifest.EnvVar{
			{Name: "MODE", Value: "prod"},
			{Name: "REGION", Value: "ca-central-1"},
		},
		ExtraFiles: []manifest.CopyRule{
			{Source: "configs/*.yaml", Destination: "/etc/app/"},
		},
		ExtraCommands: []string{"RUN adduser -D app"},
		ExposedPorts:  []int{8080, 9090},
		Workdir:       "/srv",
	}

	ctx, err := Docker(pkg, target, "app", root, binDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `FROM alpine:3.20
ENV MODE=prod REGION=ca-central-1
COPY foo /bin/foo
COPY bar /bin/bar
COPY configs/a.yaml /etc/app/
COPY configs/b.yaml /etc/app/
RUN adduser -D app
EXPOSE 8080 9090
WORKDIR /srv
CMD ["/bin/foo"]
`
	if diff := cmp.Diff(want, ctx.Dockerfile); diff != "" {
		t.Errorf("dockerfile mismatch (-want +got):\n%s", diff)
	}

	wantFiles := []StagedFile{
		{Source: filepath.Join(binDir, "foo"), Dest: "foo"},
		{Source: filepath.Join(binDir, "bar"), Dest: "bar"},
		{Source: filepath.Join(root, "configs", "a.yaml"), Dest: "configs/a.yaml"},
		{Source: filepath.Join(root, "configs", "b.yaml"), Dest: "configs/b.yaml"},
	}
	if diff := cmp.Diff(wantFiles, ctx.Files); diff != "" {
		t.Errorf("staged files mismatch (-want +got):\n%s", diff)
	}
}

func TestDockerDeterminism(t *testing.T) {
	pkg, root, binDir := dockerFixture(t)

	target := &manifest.DockerTarget{
		Registry:     "docker.io/acme",
		TargetBinDir: manifest.DefaultTargetBinDir,
		Base:         "alpine:3.20",
		ExtraFiles: []manifest.CopyRule{
			{Source: "configs/*.yaml", Destination: "/etc/app/"},
		},
	}

	first, err := Docker(pkg, target, "app", root, binDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Docker(pkg, target, "app", root, binDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("assembly is not deterministic (-first +second):\n%s", diff)
	}
}

func TestDockerGlobZeroMatch(t *testing.T) {
	pkg, root, binDir := dockerFixture(t)

	target := &manifest.DockerTarget{
		Registry:     "docker.io/acme",
		TargetBinDir: manifest.DefaultTargetBinDir,
		Base:         "alpine:3.20",
		ExtraFiles: []manifest.CopyRule{
			{Source: "missing/*.txt", Destination: "/etc/app/"},
		},
	}

	_, err := Docker(pkg, target, "app", root, binDir)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrAssembly) {
		t.Errorf("error %v is not ErrAssembly", err)
	}
}

func TestDockerGlobEscapingRoot(t *testing.T) {
	pkg, _, binDir := dockerFixture(t)

	parent := t.TempDir()
	root := filepath.Join(parent, "pkg")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("token"), 0644); err != nil {
		t.Fatal(err)
	}

	target := &manifest.DockerTarget{
		Registry:     "docker.io/acme",
		TargetBinDir: manifest.DefaultTargetBinDir,
		Base:         "alpine:3.20",
		ExtraFiles: []manifest.CopyRule{
			{Source: "../*.txt", Destination: "/etc/app/"},
		},
	}

	_, err := Docker(pkg, target, "app", root, binDir)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrAssembly) {
		t.Errorf("error %v is not ErrAssembly", err)
	}
}

func TestDockerMissingBinary(t *testing.T) {
	pkg, root, binDir := dockerFixture(t)
	pkg.Binaries = append(pkg.Binaries, "baz")

	target := &manifest.DockerTarget{
		Registry:     "docker.io/acme",
		TargetBinDir: manifest.DefaultTargetBinDir,
		Base:         "alpine:3.20",
	}

	if _, err := Docker(pkg, target, "app", root, binDir); !errors.Is(err, ErrAssembly) {
		t.Errorf("error %v is not ErrAssembly", err)
	}
}

func TestDockerTemplateOverridesDiscreteFields(t *testing.T) {
	pkg, root, binDir := dockerFixture(t)

	target := &manifest.DockerTarget{
		Registry:     "docker.io/acme",
		TargetBinDir: manifest.DefaultTargetBinDir,
		Template:     "FROM scratch\n{{ copy_all_binaries }}",
		Base:         "alpine:3.20",
		ExposedPorts: []int{8080},
	}

	ctx, err := Docker(pkg, target, "app", root, binDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "FROM scratch\nCOPY foo /bin/foo\nCOPY bar /bin/bar"
	if ctx.Dockerfile != want {
		t.Errorf("dockerfile = %q, want %q (discrete fields must be ignored)", ctx.Dockerfile, want)
	}
}

func TestContextMaterialize(t *testing.T) {
	pkg, root, binDir := dockerFixture(t)

	target := &manifest.DockerTarget{
		Registry:     "docker.io/acme",
		TargetBinDir: manifest.DefaultTargetBinDir,
		Base:         "alpine:3.20",
		ExtraFiles: []manifest.CopyRule{
			{Source: "configs/*.yaml", Destination: "/etc/app/"},
		},
	}

	ctx, err := Docker(pkg, target, "app", root, binDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := t.TempDir()
	if err := ctx.Materialize(out); err != nil {
		t.Fatalf("materialize: %v", err)
	}

	dockerfile, err := os.ReadFile(filepath.Join(out, "Dockerfile"))
	if err != nil {
		t.Fatalf("reading Dockerfile: %v", err)
	}
	if string(dockerfile) != ctx.Dockerfile {
		t.Error("materialized Dockerfile differs from assembled text")
	}

	for _, file := range ctx.Files {
		if _, err := os.Stat(filepath.Join(out, file.Dest)); err != nil {
			t.Errorf("staged file %q missing: %v", file.Dest, err)
		}
	}
}
