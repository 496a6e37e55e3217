// Package checkpoint remembers which community is being crawled so that a
// bare invocation can resume it.
//
// The checkpoint is a single line of text holding the community name. It
// is written atomically (temporary file, fsync, rename) and validated on
// load; a missing file yields ErrNoCheckpoint and a malformed one an
// invalid_name error. By default it lives in the platform data directory:
//
//   - Linux: $XDG_DATA_HOME/imgurr or ~/.local/share/imgurr
//   - macOS: ~/Library/Application Support/imgurr
//   - Windows: %APPDATA%/imgurr
package checkpoint
