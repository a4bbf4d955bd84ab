package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sqlchat/sqlchat/internal/storage"
)

const parquetContentType = "application/vnd.apache.parquet"

type Manifest struct {
	Name      string          `json:"name"`
	Seed      int64           `json:"seed"`
	CreatedAt time.Time       `json:"created_at"`
	Tables    []ManifestTable `json:"tables"`
}

type ManifestTable struct {
	Name      string `json:"name"`
	ObjectKey string `json:"object_key"`
	Rows      int    `json:"rows"`
	SizeBytes int64  `json:"size_bytes"`
}

// Publish writes one Parquet object per table and then the manifest. The
// manifest goes last so a snapshot is only visible once all its tables are.
func Publish(ctx context.Context, objects storage.ObjectStore, name string, seed int64, ds Dataset) (Manifest, error) {
	if objects == nil {
		return Manifest{}, fmt.Errorf("object store is required")
	}
	manifestKey, err := storage.BuildSnapshotManifestPath(name)
	if err != nil {
		return Manifest{}, err
	}
	files, err := EncodeDataset(ds)
	if err != nil {
		return Manifest{}, err
	}
	counts := ds.Counts()
	rowCounts := map[string]int{TableUser: counts.Users, TableEvent: counts.Events, TableTask: counts.Tasks}

	manifest := Manifest{Name: name, Seed: seed, CreatedAt: time.Now().UTC()}
	var written []string
	for _, table := range TableNames() {
		key, err := storage.BuildSnapshotTablePath(name, table)
		if err != nil {
			return Manifest{}, err
		}
		data := files[table]
		info, err := objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), storage.PutOptions{ContentType: parquetContentType})
		if err != nil {
			cleanupObjects(ctx, objects, written)
			return Manifest{}, fmt.Errorf("upload %s table: %w", table, err)
		}
		written = append(written, key)
		size := info.Size
		if size == 0 {
			size = int64(len(data))
		}
		manifest.Tables = append(manifest.Tables, ManifestTable{
			Name:      table,
			ObjectKey: key,
			Rows:      rowCounts[table],
			SizeBytes: size,
		})
	}

	body, err := json.Marshal(manifest)
	if err != nil {
		cleanupObjects(ctx, objects, written)
		return Manifest{}, fmt.Errorf("marshal manifest: %w", err)
	}
	if _, err := objects.Put(ctx, manifestKey, bytes.NewReader(body), int64(len(body)), storage.PutOptions{ContentType: "application/json"}); err != nil {
		cleanupObjects(ctx, objects, written)
		return Manifest{}, fmt.Errorf("upload manifest: %w", err)
	}
	return manifest, nil
}

func cleanupObjects(ctx context.Context, objects storage.ObjectStore, keys []string) {
	for _, key := range keys {
		_ = objects.Delete(ctx, key)
	}
}

func ReadManifest(ctx context.Context, objects storage.ObjectStore, name string) (Manifest, error) {
	key, err := storage.BuildSnapshotManifestPath(name)
	if err != nil {
		return Manifest{}, err
	}
	body, err := readObject(ctx, objects, key)
	if err != nil {
		return Manifest{}, err
	}
	var manifest Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %q: %w", key, err)
	}
	return manifest, nil
}

// FetchFiles downloads the raw Parquet payload of every table in the snapshot.
func FetchFiles(ctx context.Context, objects storage.ObjectStore, name string) (Manifest, map[string][]byte, error) {
	if objects == nil {
		return Manifest{}, nil, fmt.Errorf("object store is required")
	}
	manifest, err := ReadManifest(ctx, objects, name)
	if err != nil {
		return Manifest{}, nil, err
	}
	files := make(map[string][]byte, len(manifest.Tables))
	for _, table := range manifest.Tables {
		body, err := readObject(ctx, objects, table.ObjectKey)
		if err != nil {
			return Manifest{}, nil, fmt.Errorf("fetch %s table: %w", table.Name, err)
		}
		files[table.Name] = body
	}
	for _, table := range TableNames() {
		if _, ok := files[table]; !ok {
			return Manifest{}, nil, fmt.Errorf("snapshot %q has no %s table", name, table)
		}
	}
	return manifest, files, nil
}

func Fetch(ctx context.Context, objects storage.ObjectStore, name string) (Manifest, Dataset, error) {
	manifest, files, err := FetchFiles(ctx, objects, name)
	if err != nil {
		return Manifest{}, Dataset{}, err
	}
	ds, err := DecodeDataset(files)
	if err != nil {
		return Manifest{}, Dataset{}, fmt.Errorf("decode snapshot %q: %w", name, err)
	}
	return manifest, ds, nil
}

// ListSnapshots returns the names of all published snapshots, sorted.
func ListSnapshots(ctx context.Context, objects storage.ObjectStore) ([]string, error) {
	items, err := objects.List(ctx, storage.SnapshotListPrefix())
	if err != nil {
		return nil, err
	}
	var names []string
	for _, item := range items {
		if name, ok := storage.SnapshotNameFromManifestKey(item.Key); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func readObject(ctx context.Context, objects storage.ObjectStore, key string) ([]byte, error) {
	reader, err := objects.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("object %q: %w", key, storage.ErrObjectNotFound)
		}
		return nil, err
	}
	defer func() { _ = reader.Close() }()
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", key, err)
	}
	return body, nil
}
