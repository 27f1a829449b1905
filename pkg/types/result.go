package types

import "time"

// CheckResult is the flattened outcome of one partition check, as printed by
// the CLI and published to the result sink.
type CheckResult struct {
	RunID        string    `json:"run_id"`
	Database     string    `json:"database"`
	Table        string    `json:"table"`
	PartitionKey string    `json:"partition_key"`
	Partition    string    `json:"partition"`
	RowCount     int64     `json:"row_count"`
	Threshold    int64     `json:"threshold"`
	Mode         string    `json:"mode"`
	SchemaStatus string    `json:"schema_status,omitempty"`
	Extracted    []string  `json:"extracted_columns,omitempty"`
	ValidColumns []string  `json:"valid_columns,omitempty"`
	Issues       []Issue   `json:"issues,omitempty"`
	Status       string    `json:"status"`
	CheckedAt    time.Time `json:"checked_at"`
}

type Issue struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Column   string `json:"column,omitempty"`
	Message  string `json:"message"`
}
