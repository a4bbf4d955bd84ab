package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

const (
	TableUser  = "user"
	TableEvent = "event"
	TableTask  = "task"
)

// TableNames lists the calendar tables in load order.
func TableNames() []string {
	return []string{TableUser, TableEvent, TableTask}
}

func EncodeTable[T any](rows []T) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[T](buf)
	if _, err := writer.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeTable[T any](data []byte) ([]T, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("parquet payload is empty")
	}
	if _, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	reader := parquet.NewGenericReader[T](bytes.NewReader(data))
	defer func() { _ = reader.Close() }()

	out := make([]T, 0, reader.NumRows())
	batch := make([]T, 128)
	for {
		n, err := reader.Read(batch)
		out = append(out, batch[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return out, nil
}

// EncodeDataset encodes each table of the dataset into its own Parquet file.
func EncodeDataset(ds Dataset) (map[string][]byte, error) {
	users, err := EncodeTable(ds.Users)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", TableUser, err)
	}
	events, err := EncodeTable(ds.Events)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", TableEvent, err)
	}
	tasks, err := EncodeTable(ds.Tasks)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", TableTask, err)
	}
	return map[string][]byte{TableUser: users, TableEvent: events, TableTask: tasks}, nil
}

func DecodeDataset(files map[string][]byte) (Dataset, error) {
	var ds Dataset
	var err error
	if ds.Users, err = DecodeTable[User](files[TableUser]); err != nil {
		return Dataset{}, fmt.Errorf("decode %s: %w", TableUser, err)
	}
	if ds.Events, err = DecodeTable[Event](files[TableEvent]); err != nil {
		return Dataset{}, fmt.Errorf("decode %s: %w", TableEvent, err)
	}
	if ds.Tasks, err = DecodeTable[Task](files[TableTask]); err != nil {
		return Dataset{}, fmt.Errorf("decode %s: %w", TableTask, err)
	}
	return ds, nil
}
