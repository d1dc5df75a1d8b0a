// Provides platform-appropriate paths and permission modes.
//
// Scratch space follows XDG conventions on Linux and platform-native
// conventions on macOS and Windows, under a "monopack" subdirectory.
// Build outputs default to a dist/ directory next to the manifest.
package paths
