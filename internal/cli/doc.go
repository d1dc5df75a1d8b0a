// Parses flags and configures logging for the monopack tool.
//
// The tool accepts the following global flags:
//
//	-q, --quiet         Suppress informational output.
//	-v, --verbose       Enable verbose output.
//	-d, --debug         Enable debug output.
//	-m, --manifest-path Workspace manifest path.
//	-f, --force         Override mismatches and push conflicts.
//	    --release       Use release-mode binaries.
//	-j, --concurrency   Parallel target workers.
//	-o, --output        Artifact output directory.
//	    --bin-dir       Built-binaries directory.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level before the selected
// pipeline runs.
package cli
