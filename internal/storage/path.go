package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

const (
	snapshotRoot     = "snapshots"
	manifestFileName = "manifest.json"
)

var pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// BuildSnapshotTablePath returns snapshots/<snapshot>/<table>.parquet.
func BuildSnapshotTablePath(snapshot, tableName string) (string, error) {
	if err := validatePathComponent(snapshot, "snapshot name"); err != nil {
		return "", err
	}
	if err := validatePathComponent(tableName, "table name"); err != nil {
		return "", err
	}
	return path.Join(snapshotRoot, snapshot, tableName+".parquet"), nil
}

func BuildSnapshotManifestPath(snapshot string) (string, error) {
	if err := validatePathComponent(snapshot, "snapshot name"); err != nil {
		return "", err
	}
	return path.Join(snapshotRoot, snapshot, manifestFileName), nil
}

func SnapshotListPrefix() string {
	return snapshotRoot + "/"
}

// SnapshotNameFromManifestKey extracts the snapshot name from a manifest key,
// reporting false for any other object.
func SnapshotNameFromManifestKey(key string) (string, bool) {
	parts := strings.Split(strings.TrimPrefix(key, "/"), "/")
	if len(parts) < 3 {
		return "", false
	}
	n := len(parts)
	if parts[n-1] != manifestFileName || parts[n-3] != snapshotRoot {
		return "", false
	}
	if validatePathComponent(parts[n-2], "snapshot name") != nil {
		return "", false
	}
	return parts[n-2], true
}

func ValidateSnapshotName(name string) error {
	return validatePathComponent(name, "snapshot name")
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}
