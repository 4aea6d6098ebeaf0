package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"
)

// AssessmentRecord is one row of the optional assessment history. The nine
// symptom probabilities are stored as a pgvector column (dimension order is
// SymptomKeys) so past assessments can be matched by symptom profile.
type AssessmentRecord struct {
	ID           int64           `json:"id" db:"id"`
	Constitution string          `json:"constitution" db:"constitution"`
	Score        int             `json:"score" db:"score"`
	Source       string          `json:"source" db:"source"`
	Issues       JSONArray       `json:"issues" db:"issues"`
	Symptoms     pgvector.Vector `json:"-" db:"symptoms"`
	Distance     *float64        `json:"distance,omitempty" db:"distance"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// JSONArray represents a JSON array field
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}
