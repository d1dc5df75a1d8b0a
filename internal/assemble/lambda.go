package assemble

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/opencontainers/go-digest"

	"github.com/cruciblehq/monopack/internal/manifest"
	"github.com/cruciblehq/monopack/internal/paths"
)

// Entry name of the function binary. The name is fixed by the AWS
// Lambda custom-runtime contract.
const bootstrapName = "bootstrap"

// Fixed modification time for archive entries. The zip format cannot
// represent anything earlier, and a variable timestamp would break
// byte-reproducibility.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// A fully assembled AWS Lambda deployment archive.
type Archive struct {
	Data    []byte        // Complete zip file contents.
	Digest  digest.Digest // Content checksum over Data, for upload integrity.
	Key     string        // Object key: "<prefix><package>-<version>.zip".
	Entries []string      // Archive entry names, in archive order.
}

// Assembles the Lambda archive for one target.
//
// The selected binary is staged as "bootstrap" together with every
// resolved extra-file match. Entries are sorted and timestamps fixed,
// so the same inputs always produce byte-identical archive data.
func Lambda(pkg *manifest.Package, target *manifest.LambdaTarget, root, binDir string) (*Archive, error) {
	binary := target.BinaryName
	if binary == "" {
		binary = pkg.Binaries[0]
	}

	source := filepath.Join(binDir, binary)
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("%w: binary %q not found at %s (has it been built?)", ErrAssembly, binary, source)
	}

	staged := []StagedFile{{Source: source, Dest: bootstrapName}}

	rules := make([]copyRule, 0, len(target.ExtraFiles))
	for _, rule := range target.ExtraFiles {
		rules = append(rules, copyRule{source: rule.Source, destination: rule.Destination})
	}

	extras, err := resolveExtraFiles(root, rules)
	if err != nil {
		return nil, err
	}

	for _, extra := range extras {
		staged = append(staged, StagedFile{
			Source: extra.staged.Source,
			Dest:   path.Join(strings.Trim(extra.imageDest, "/"), path.Base(extra.staged.Source)),
		})
	}

	if err := checkCollisions(staged); err != nil {
		return nil, err
	}

	sort.Slice(staged, func(i, j int) bool { return staged[i].Dest < staged[j].Dest })

	data, err := writeArchive(staged)
	if err != nil {
		return nil, err
	}

	entries := make([]string, 0, len(staged))
	for _, file := range staged {
		entries = append(entries, file.Dest)
	}

	archive := &Archive{
		Data:    data,
		Digest:  digest.FromBytes(data),
		Key:     fmt.Sprintf("%s%s-%s.zip", target.BucketPrefix, pkg.Name, pkg.Version),
		Entries: entries,
	}

	slog.Debug("lambda archive assembled",
		"package", pkg.Name,
		"key", archive.Key,
		"entries", len(entries),
		"size", len(data),
	)

	return archive, nil
}

// Writes the staged files into a deterministic zip archive.
//
// Entry modes are normalized (executable bootstrap, read-only data
// files) so the archive bytes do not depend on checkout umask.
func writeArchive(staged []StagedFile) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, file := range staged {
		header := &zip.FileHeader{
			Name:     file.Dest,
			Method:   zip.Deflate,
			Modified: archiveEpoch,
		}
		if file.Dest == bootstrapName {
			header.SetMode(0755)
		} else {
			header.SetMode(0644)
		}

		entry, err := w.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
		}

		data, err := os.ReadFile(file.Source)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
		}
		if _, err := entry.Write(data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}

	return buf.Bytes(), nil
}

// Writes the archive to the given file path.
func (a *Archive) Materialize(file string) error {
	if err := os.MkdirAll(filepath.Dir(file), paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	if err := os.WriteFile(file, a.Data, paths.DefaultFileMode); err != nil {
		return fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	return nil
}
