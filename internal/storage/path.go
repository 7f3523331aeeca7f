package storage

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

const (
	ParquetExtension    = ".parquet"
	datePartitionPrefix = "date="
)

var pathComponentPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// TablePrefix is the key prefix under which every extract of dataset.table
// lives.
func TablePrefix(dataset, table string) (string, error) {
	if err := validatePathComponent(dataset, "dataset"); err != nil {
		return "", err
	}
	if err := validatePathComponent(table, "table"); err != nil {
		return "", err
	}
	return dataset + "/" + table + "/", nil
}

// BuildExtractPath returns <dataset>/<table>/date=YYYY-MM-DD/part-NNNNN.parquet.
func BuildExtractPath(dataset, table string, extractedAt time.Time, sequence int) (string, error) {
	prefix, err := TablePrefix(dataset, table)
	if err != nil {
		return "", err
	}
	if sequence < 0 {
		return "", fmt.Errorf("sequence must be >= 0")
	}
	ts := extractedAt.UTC()
	return path.Join(
		prefix,
		fmt.Sprintf(datePartitionPrefix+"%04d-%02d-%02d", ts.Year(), ts.Month(), ts.Day()),
		fmt.Sprintf("part-%05d%s", sequence, ParquetExtension),
	), nil
}

func IsParquetKey(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), ParquetExtension)
}

func validatePathComponent(value, field string) error {
	if !pathComponentPattern.MatchString(value) {
		return fmt.Errorf("invalid %s: %q", field, value)
	}
	return nil
}
