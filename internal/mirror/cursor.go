package mirror

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
)

// NoCursor is the cursor value when nothing has been persisted yet.
const NoCursor int64 = -1

// fileNamePattern matches "<update_id>.json" and the older
// "<zero-padded update_id>.<kind>.json" layout.
var fileNamePattern = regexp.MustCompile(`^(\d+)(?:\.[a-z_]+)?\.json$`)

// FileName returns the name of the file holding the message of an update.
func FileName(updateID int64) string {
	return strconv.FormatInt(updateID, 10) + ".json"
}

// ParseFileName extracts the update identifier from a persisted file name.
func ParseFileName(name string) (int64, bool) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// RecoverCursor returns the highest update identifier persisted in dir, or
// NoCursor when there is none. Entries that are not regular files with a
// recognised name are ignored; a missing directory counts as empty.
func RecoverCursor(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NoCursor, nil
		}
		return NoCursor, fmt.Errorf("failed to list messages directory %s: %w", dir, err)
	}

	cursor := NoCursor
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if id, ok := ParseFileName(entry.Name()); ok && id > cursor {
			cursor = id
		}
	}
	return cursor, nil
}
