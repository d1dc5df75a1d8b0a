package assemble

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/opencontainers/go-digest"

	"github.com/cruciblehq/monopack/internal/manifest"
)

func lambdaFixture(t *testing.T) (pkg *manifest.Package, root, binDir string) {
	t.Helper()

	root = t.TempDir()
	binDir = t.TempDir()

	if err := os.WriteFile(filepath.Join(binDir, "handler"), []byte("binary"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "assets"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "assets", "schema.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	pkg = &manifest.Package{
		Name:     "ingest",
		Version:  "2.0.1",
		Binaries: []string{"handler"},
	}
	return pkg, root, binDir
}

func TestLambda(t *testing.T) {
	pkg, root, binDir := lambdaFixture(t)

	target := &manifest.LambdaTarget{
		Bucket:       "dist",
		BucketPrefix: "lambdas/",
		ExtraFiles: []manifest.CopyRule{
			{Source: "assets/*.json", Destination: "/assets/"},
		},
	}

	archive, err := Lambda(pkg, target, root, binDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if archive.Key != "lambdas/ingest-2.0.1.zip" {
		t.Errorf("key = %q, want lambdas/ingest-2.0.1.zip", archive.Key)
	}

	wantEntries := []string{"assets/schema.json", "bootstrap"}
	if diff := cmp.Diff(wantEntries, archive.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	if archive.Digest != digest.FromBytes(archive.Data) {
		t.Error("digest does not cover archive bytes")
	}
}

func TestLambdaDeterminism(t *testing.T) {
	pkg, root, binDir := lambdaFixture(t)

	target := &manifest.LambdaTarget{
		Bucket: "dist",
		ExtraFiles: []manifest.CopyRule{
			{Source: "assets/*.json", Destination: "/assets/"},
		},
	}

	first, err := Lambda(pkg, target, root, binDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Lambda(pkg, target, root, binDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(first.Data, second.Data) {
		t.Error("archive bytes differ between assemblies")
	}
	if first.Digest != second.Digest {
		t.Errorf("digests differ: %s vs %s", first.Digest, second.Digest)
	}
}

func TestLambdaExplicitBinary(t *testing.T) {
	pkg, root, binDir := lambdaFixture(t)
	pkg.Binaries = []string{"other", "handler"}

	target := &manifest.LambdaTarget{Bucket: "dist", BinaryName: "handler"}

	archive, err := Lambda(pkg, target, root, binDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"bootstrap"}, archive.Entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestLambdaGlobZeroMatch(t *testing.T) {
	pkg, root, binDir := lambdaFixture(t)

	target := &manifest.LambdaTarget{
		Bucket: "dist",
		ExtraFiles: []manifest.CopyRule{
			{Source: "missing/*", Destination: "/assets/"},
		},
	}

	if _, err := Lambda(pkg, target, root, binDir); !errors.Is(err, ErrAssembly) {
		t.Errorf("error %v is not ErrAssembly", err)
	}
}

func TestArchiveMaterialize(t *testing.T) {
	pkg, root, binDir := lambdaFixture(t)

	archive, err := Lambda(pkg, &manifest.LambdaTarget{Bucket: "dist"}, root, binDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	file := filepath.Join(t.TempDir(), "out", "ingest.zip")
	if err := archive.Materialize(file); err != nil {
		t.Fatalf("materialize: %v", err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, archive.Data) {
		t.Error("materialized bytes differ from archive data")
	}
}
