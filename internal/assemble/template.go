package assemble

import (
	"fmt"
	"strconv"
	"strings"
)

// Values the recognized template placeholders expand to.
//
// The template surface is intentionally tiny: literal text plus the
// four placeholder forms below. It is not a general template language.
type renderContext struct {
	binaries    []string // Declared binary names, in order.
	binDir      string   // In-image directory binaries are copied to.
	copyLines   []string // "COPY" instruction per binary, declared order.
	extraCopies []string // "COPY" instruction per resolved extra file.
}

// Renders a target template, expanding `{{ ... }}` placeholders.
//
// Recognized placeholders:
//
//	copy_all_binaries      one COPY instruction per declared binary
//	copy_all_extra_files   one COPY instruction per resolved extra file
//	binaries.<index>       in-image path of the i-th binary (0-based)
//	binaries["<name>"]     in-image path of the named binary
//
// An out-of-range index, unknown binary name, or unrecognized
// placeholder is an assembly error, never silently empty.
func render(template string, rc *renderContext) (string, error) {
	var out strings.Builder

	rest := template
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			out.WriteString(rest)
			return out.String(), nil
		}

		out.WriteString(rest[:open])
		rest = rest[open+2:]

		closing := strings.Index(rest, "}}")
		if closing < 0 {
			return "", fmt.Errorf("%w: unterminated placeholder", ErrAssembly)
		}

		expanded, err := rc.expand(strings.TrimSpace(rest[:closing]))
		if err != nil {
			return "", err
		}
		out.WriteString(expanded)

		rest = rest[closing+2:]
	}
}

// Expands a single placeholder token.
func (rc *renderContext) expand(token string) (string, error) {
	switch {
	case token == "copy_all_binaries":
		return strings.Join(rc.copyLines, "\n"), nil

	case token == "copy_all_extra_files":
		return strings.Join(rc.extraCopies, "\n"), nil

	case strings.HasPrefix(token, "binaries."):
		index, err := strconv.Atoi(token[len("binaries."):])
		if err != nil {
			return "", fmt.Errorf("%w: malformed placeholder %q", ErrAssembly, token)
		}
		if index < 0 || index >= len(rc.binaries) {
			return "", fmt.Errorf("%w: binary index %d out of range (%d binaries)", ErrAssembly, index, len(rc.binaries))
		}
		return imagePath(rc.binDir, rc.binaries[index]), nil

	case strings.HasPrefix(token, "binaries["):
		name, ok := parseBinaryName(token)
		if !ok {
			return "", fmt.Errorf("%w: malformed placeholder %q", ErrAssembly, token)
		}
		for _, bin := range rc.binaries {
			if bin == name {
				return imagePath(rc.binDir, bin), nil
			}
		}
		return "", fmt.Errorf("%w: unknown binary %q", ErrAssembly, name)

	default:
		return "", fmt.Errorf("%w: unknown placeholder %q", ErrAssembly, token)
	}
}

// Parses the name out of a `binaries["<name>"]` token.
func parseBinaryName(token string) (string, bool) {
	inner, ok := strings.CutPrefix(token, "binaries[")
	if !ok {
		return "", false
	}
	inner, ok = strings.CutSuffix(inner, "]")
	if !ok {
		return "", false
	}

	inner = strings.TrimSpace(inner)
	if len(inner) < 2 || inner[0] != '"' || inner[len(inner)-1] != '"' {
		return "", false
	}

	return inner[1 : len(inner)-1], true
}
