package types

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Engine represents the database engine type
type Engine int32

const (
	Engine_ENGINE_UNSPECIFIED Engine = 0
	Engine_MYSQL              Engine = 1
	Engine_POSTGRES           Engine = 2
	Engine_SQLITE             Engine = 3
)

func (e Engine) String() string {
	switch e {
	case Engine_ENGINE_UNSPECIFIED:
		return "ENGINE_UNSPECIFIED"
	case Engine_MYSQL:
		return "MYSQL"
	case Engine_POSTGRES:
		return "POSTGRES"
	case Engine_SQLITE:
		return "SQLITE"
	default:
		return "UNKNOWN"
	}
}

func engineFromString(s string) Engine {
	switch strings.ToUpper(s) {
	case "MYSQL", "MARIADB":
		return Engine_MYSQL
	case "POSTGRES", "POSTGRESQL":
		return Engine_POSTGRES
	case "SQLITE", "SQLITE3":
		return Engine_SQLITE
	default:
		return Engine_ENGINE_UNSPECIFIED
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for Engine
func (e *Engine) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*e = engineFromString(s)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Engine
func (e *Engine) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*e = engineFromString(s)
	return nil
}

// DetectorLevel represents the severity level configured for a detector
type DetectorLevel int32

const (
	DetectorLevel_LEVEL_UNSPECIFIED DetectorLevel = 0
	DetectorLevel_INFO              DetectorLevel = 1
	DetectorLevel_WARNING           DetectorLevel = 2
	DetectorLevel_TIP               DetectorLevel = 3
	DetectorLevel_SUGGESTION        DetectorLevel = 4
	DetectorLevel_ERROR             DetectorLevel = 5
	DetectorLevel_DISABLED          DetectorLevel = 6
)

func (l DetectorLevel) String() string {
	switch l {
	case DetectorLevel_INFO:
		return "INFO"
	case DetectorLevel_WARNING:
		return "WARNING"
	case DetectorLevel_TIP:
		return "TIP"
	case DetectorLevel_SUGGESTION:
		return "SUGGESTION"
	case DetectorLevel_ERROR:
		return "ERROR"
	case DetectorLevel_DISABLED:
		return "DISABLED"
	default:
		return "LEVEL_UNSPECIFIED"
	}
}

func detectorLevelFromString(s string) DetectorLevel {
	switch s {
	case "INFO":
		return DetectorLevel_INFO
	case "WARNING":
		return DetectorLevel_WARNING
	case "TIP":
		return DetectorLevel_TIP
	case "SUGGESTION":
		return DetectorLevel_SUGGESTION
	case "ERROR":
		return DetectorLevel_ERROR
	case "DISABLED":
		return DetectorLevel_DISABLED
	default:
		return DetectorLevel_LEVEL_UNSPECIFIED
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for DetectorLevel
func (l *DetectorLevel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*l = detectorLevelFromString(s)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for DetectorLevel
func (l *DetectorLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = detectorLevelFromString(s)
	return nil
}

// EventLevel represents the severity attached to an emitted finding or event
type EventLevel int32

const (
	EventLevel_LEVEL_UNSPECIFIED EventLevel = 0
	EventLevel_INFO              EventLevel = 1
	EventLevel_WARNING           EventLevel = 2
	EventLevel_TIP               EventLevel = 3
	EventLevel_SUGGESTION        EventLevel = 4
	EventLevel_ERROR             EventLevel = 5
)

func (l EventLevel) String() string {
	switch l {
	case EventLevel_INFO:
		return "INFO"
	case EventLevel_WARNING:
		return "WARNING"
	case EventLevel_TIP:
		return "TIP"
	case EventLevel_SUGGESTION:
		return "SUGGESTION"
	case EventLevel_ERROR:
		return "ERROR"
	default:
		return "LEVEL_UNSPECIFIED"
	}
}

// MarshalJSON implements json.Marshaler for EventLevel
func (l EventLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// MarshalYAML implements yaml.Marshaler for EventLevel
func (l EventLevel) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

// UnmarshalJSON implements json.Unmarshaler for EventLevel
func (l *EventLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "INFO":
		*l = EventLevel_INFO
	case "WARNING":
		*l = EventLevel_WARNING
	case "TIP":
		*l = EventLevel_TIP
	case "SUGGESTION":
		*l = EventLevel_SUGGESTION
	case "ERROR":
		*l = EventLevel_ERROR
	default:
		*l = EventLevel_LEVEL_UNSPECIFIED
	}
	return nil
}

// FindingType identifies one class of query inefficiency.
type FindingType string

const (
	FindingNPlusOne              FindingType = "N+1 Query"
	FindingMissingIndexWhere     FindingType = "Missing Index on WHERE"
	FindingMissingIndexJoin      FindingType = "Missing Index on JOIN"
	FindingMissingIndexOrderBy   FindingType = "Missing Index on ORDER BY"
	FindingMissingIndexAggregate FindingType = "Missing Index on AGGREGATE"
	FindingUnnecessaryDistinct   FindingType = "Unnecessary DISTINCT"
	FindingSubqueryOveruse       FindingType = "Overuse of Subqueries"
	FindingCartesianJoin         FindingType = "Cartesian Product in JOIN"
	FindingCartesianCrossJoin    FindingType = "Cartesian Product in CROSS JOIN"
	FindingSlowQuery             FindingType = "Slow Query"
	FindingDuplicateQuery        FindingType = "Duplicate Query"
	FindingMissingLimit          FindingType = "Missing LIMIT"
	FindingFullTableScan         FindingType = "Full Table Scan"
	FindingSelectStar            FindingType = "Inefficient SELECT *"
	FindingInefficientPagination FindingType = "Inefficient Pagination"
	FindingNonSargable           FindingType = "Non-Sargable Query"
	FindingLockingIssue          FindingType = "Locking Issue"
	FindingExplicitLock          FindingType = "Explicit LOCK Statement"
	FindingTransactionOveruse    FindingType = "Overuse of Transactions"
)

// DetectorRule configures one detector: which finding type it covers and at
// which level its findings are reported. DetectorLevel_DISABLED turns the
// detector off.
type DetectorRule struct {
	Type    FindingType   `json:"type"              yaml:"type"`
	Level   DetectorLevel `json:"level"             yaml:"level"`
	Comment string        `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// QueryRecord is one executed (or candidate) SQL statement under analysis.
// Time is the execution time in seconds as a stringified decimal; it may be
// empty for statements that were never executed. Params and StackTrace are
// opaque to the detectors and only carried through for display.
type QueryRecord struct {
	SQL        string        `json:"sql"                   yaml:"sql"`
	Time       string        `json:"time,omitempty"        yaml:"time,omitempty"`
	Params     []interface{} `json:"params,omitempty"      yaml:"params,omitempty"`
	StackTrace []string      `json:"stack_trace,omitempty" yaml:"stack_trace,omitempty"`
}

// ExecutionSeconds parses the stringified execution time. An empty Time is
// zero seconds, not an error.
func (r *QueryRecord) ExecutionSeconds() (float64, error) {
	t := strings.TrimSpace(r.Time)
	if t == "" {
		return 0, nil
	}
	return strconv.ParseFloat(t, 64)
}

// Finding is one detected inefficiency. The optional fields are populated per
// finding type: Count for N+1 and duplicate groups, Time for slow queries,
// ExecutionTime for locking and transaction findings, Table and Columns for
// missing-index findings.
type Finding struct {
	Type          FindingType `json:"type"                     yaml:"type"`
	Query         string      `json:"query"                    yaml:"query"`
	Suggestion    string      `json:"suggestion,omitempty"     yaml:"suggestion,omitempty"`
	Count         int         `json:"count,omitempty"          yaml:"count,omitempty"`
	Time          float64     `json:"time,omitempty"           yaml:"time,omitempty"`
	ExecutionTime float64     `json:"execution_time,omitempty" yaml:"execution_time,omitempty"`
	Table         string      `json:"table,omitempty"          yaml:"table,omitempty"`
	Columns       []string    `json:"columns,omitempty"        yaml:"columns,omitempty"`
	Level         EventLevel  `json:"level,omitempty"          yaml:"level,omitempty"`
}

// Position represents a position in the source text
type Position struct {
	Line   int32 `json:"line"`
	Column int32 `json:"column"`
}

// TableMetadata represents table metadata for the static schema provider
type TableMetadata struct {
	Name     string            `json:"name"               yaml:"name"`
	RowCount int64             `json:"rowCount"           yaml:"rowCount"`
	Columns  []*ColumnMetadata `json:"columns,omitempty"  yaml:"columns,omitempty"`
	Indexes  []*IndexMetadata  `json:"indexes,omitempty"  yaml:"indexes,omitempty"`
}

// ColumnMetadata represents column metadata
type ColumnMetadata struct {
	Name    string `json:"name"              yaml:"name"`
	Type    string `json:"type,omitempty"    yaml:"type,omitempty"`
	Indexed bool   `json:"indexed,omitempty" yaml:"indexed,omitempty"`
}

// IndexMetadata represents index metadata
type IndexMetadata struct {
	Name        string   `json:"name"              yaml:"name"`
	Expressions []string `json:"expressions"       yaml:"expressions"`
	Unique      bool     `json:"unique,omitempty"  yaml:"unique,omitempty"`
	Primary     bool     `json:"primary,omitempty" yaml:"primary,omitempty"`
}
