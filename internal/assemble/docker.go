package assemble

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cruciblehq/monopack/internal/manifest"
	"github.com/cruciblehq/monopack/internal/paths"
)

// Name of the rendered build-instruction file inside the context.
const dockerfileName = "Dockerfile"

// A fully assembled Docker build context.
//
// The context is immutable: the Dockerfile text and the staged file
// list are fixed at assembly time, and Materialize only writes them out.
type Context struct {
	Dockerfile string
	Files      []StagedFile // Ordered: binaries first, then extra files.
	Tag        string       // "<registry>/<target_name>:<version>".
}

// Assembles the Docker build context for one target.
//
// root is the package's source directory (extra-file globs resolve
// against it) and binDir is the directory holding the package's built
// binaries. Every declared binary must already exist there.
func Docker(pkg *manifest.Package, target *manifest.DockerTarget, targetName, root, binDir string) (*Context, error) {
	staged := make([]StagedFile, 0, len(pkg.Binaries))
	copyLines := make([]string, 0, len(pkg.Binaries))

	for _, bin := range pkg.Binaries {
		source := filepath.Join(binDir, bin)
		if _, err := os.Stat(source); err != nil {
			return nil, fmt.Errorf("%w: binary %q not found at %s (has it been built?)", ErrAssembly, bin, source)
		}

		staged = append(staged, StagedFile{Source: source, Dest: bin})
		copyLines = append(copyLines, fmt.Sprintf("COPY %s %s", bin, imagePath(target.TargetBinDir, bin)))
	}

	rules := make([]copyRule, 0, len(target.ExtraFiles))
	for _, rule := range target.ExtraFiles {
		rules = append(rules, copyRule{source: rule.Source, destination: rule.Destination})
	}

	extras, err := resolveExtraFiles(root, rules)
	if err != nil {
		return nil, err
	}

	extraCopies := make([]string, 0, len(extras))
	for _, extra := range extras {
		staged = append(staged, extra.staged)
		extraCopies = append(extraCopies, fmt.Sprintf("COPY %s %s", extra.staged.Dest, extra.imageDest))
	}

	if err := checkCollisions(staged); err != nil {
		return nil, err
	}

	rc := &renderContext{
		binaries:    pkg.Binaries,
		binDir:      target.TargetBinDir,
		copyLines:   copyLines,
		extraCopies: extraCopies,
	}

	dockerfile, err := renderDockerfile(target, rc)
	if err != nil {
		return nil, err
	}

	return &Context{
		Dockerfile: dockerfile,
		Files:      staged,
		Tag:        fmt.Sprintf("%s/%s:%s", target.Registry, targetName, pkg.Version),
	}, nil
}

// Produces the Dockerfile text for a target.
//
// A custom template is authoritative: when one is declared, the
// discrete instruction fields are ignored entirely (the conflict was
// already flagged at load time). Without a template, the instructions
// are synthesized from the discrete fields in a fixed order.
func renderDockerfile(target *manifest.DockerTarget, rc *renderContext) (string, error) {
	if target.Template != "" {
		return render(target.Template, rc)
	}
	return synthesizeDockerfile(target, rc)
}

// Builds a Dockerfile from the discrete instruction fields.
//
// Block order is stable: FROM, ENV (one combined instruction, declared
// order), COPY (binaries then extra files), raw extra commands
// verbatim, EXPOSE, WORKDIR, CMD. The CMD defaults to the first
// declared binary's in-image path.
func synthesizeDockerfile(target *manifest.DockerTarget, rc *renderContext) (string, error) {
	if target.Base == "" {
		return "", fmt.Errorf("%w: target declares neither a template nor a base image", ErrAssembly)
	}

	var lines []string
	lines = append(lines, "FROM "+target.Base)

	if len(target.ExtraEnv) > 0 {
		pairs := make([]string, 0, len(target.ExtraEnv))
		for _, env := range target.ExtraEnv {
			pairs = append(pairs, env.Name+"="+env.Value)
		}
		lines = append(lines, "ENV "+strings.Join(pairs, " "))
	}

	lines = append(lines, rc.copyLines...)
	lines = append(lines, rc.extraCopies...)
	lines = append(lines, target.ExtraCommands...)

	if len(target.ExposedPorts) > 0 {
		ports := make([]string, 0, len(target.ExposedPorts))
		for _, port := range target.ExposedPorts {
			ports = append(ports, strconv.Itoa(port))
		}
		lines = append(lines, "EXPOSE "+strings.Join(ports, " "))
	}

	if target.Workdir != "" {
		lines = append(lines, "WORKDIR "+target.Workdir)
	}

	lines = append(lines, "CMD "+jsonCommand(target, rc))

	return strings.Join(lines, "\n") + "\n", nil
}

// Renders the CMD arguments in exec form.
func jsonCommand(target *manifest.DockerTarget, rc *renderContext) string {
	args := target.Command
	if len(args) == 0 {
		args = []string{imagePath(rc.binDir, rc.binaries[0])}
	}

	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		quoted = append(quoted, strconv.Quote(arg))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// Writes the build context to dir: the Dockerfile plus every staged
// file at its context-relative path.
func (c *Context) Materialize(dir string) error {
	if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %v", ErrAssembly, err)
	}

	dockerfile := filepath.Join(dir, dockerfileName)
	if err := os.WriteFile(dockerfile, []byte(c.Dockerfile), paths.DefaultFileMode); err != nil {
		return fmt.Errorf("%w: %v", ErrAssembly, err)
	}

	for _, file := range c.Files {
		dest := filepath.Join(dir, filepath.FromSlash(file.Dest))
		if err := copyFile(file.Source, dest); err != nil {
			return fmt.Errorf("%w: %v", ErrAssembly, err)
		}
	}

	slog.Debug("build context materialized", "dir", dir, "files", len(c.Files))

	return nil
}

// Copies a file, preserving its mode.
func copyFile(source, dest string) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dest), paths.DefaultDirMode); err != nil {
		return err
	}

	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
