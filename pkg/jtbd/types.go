// Package jtbd defines the entities of the job-decomposition hierarchy:
// a Graph owns a four-level tree of Jobs (big → core → small → micro),
// each Job may carry Solutions, and Edges express explicit non-hierarchical
// relations used by the diagram view.
package jtbd

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Level is the fixed rank of a Job in the hierarchy. It is assigned at
// creation and never reassigned.
type Level string

const (
	LevelBig   Level = "big"
	LevelCore  Level = "core"
	LevelSmall Level = "small"
	LevelMicro Level = "micro"
)

// Valid reports whether l is one of the four known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelBig, LevelCore, LevelSmall, LevelMicro:
		return true
	}
	return false
}

// Phase is the temporal position of a Job relative to its Core Job.
// Big and Core Jobs are always "during"; micro Jobs inherit from their
// small parent.
type Phase string

const (
	PhaseBefore  Phase = "before"
	PhaseDuring  Phase = "during"
	PhaseAfter   Phase = "after"
	PhaseUnknown Phase = "unknown"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseBefore, PhaseDuring, PhaseAfter, PhaseUnknown:
		return true
	}
	return false
}

// Cadence says whether a Job happens once or recurs.
type Cadence string

const (
	CadenceOnce   Cadence = "once"
	CadenceRepeat Cadence = "repeat"
)

func (c Cadence) Valid() bool {
	return c == CadenceOnce || c == CadenceRepeat
}

// SolutionType classifies how a Job gets accomplished.
type SolutionType string

const (
	SolutionSelf       SolutionType = "self"
	SolutionProduct    SolutionType = "product"
	SolutionService    SolutionType = "service"
	SolutionOurProduct SolutionType = "our_product"
	SolutionPartner    SolutionType = "partner"
)

func (s SolutionType) Valid() bool {
	switch s {
	case SolutionSelf, SolutionProduct, SolutionService, SolutionOurProduct, SolutionPartner:
		return true
	}
	return false
}

// EdgeType classifies an explicit relation between two Jobs.
type EdgeType string

const (
	EdgeNext      EdgeType = "next"
	EdgeDependsOn EdgeType = "depends_on"
	EdgeOptional  EdgeType = "optional"
	EdgeRepeats   EdgeType = "repeats"
)

func (e EdgeType) Valid() bool {
	switch e {
	case EdgeNext, EdgeDependsOn, EdgeOptional, EdgeRepeats:
		return true
	}
	return false
}

// Per-level sibling bounds. Batch generation treats them as advisory
// (validation warnings); single insertion enforces the maxima as a hard cap.
const (
	MinSmallJobs = 8
	MaxSmallJobs = 12
	MinMicroJobs = 3
	MaxMicroJobs = 6
)

// Scores holds the optional user cost/benefit assessment of a Job.
// It is stored as a single JSON column.
type Scores struct {
	UserCost         int    `json:"userCost"`
	UserBenefit      int    `json:"userBenefit"`
	CostRationale    string `json:"costRationale,omitempty"`
	BenefitRationale string `json:"benefitRationale,omitempty"`
}

// Value implements driver.Valuer so a *Scores column round-trips as JSON.
func (s *Scores) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner. A stored value that is not valid JSON is a
// corrupt record, not a silently partial object.
func (s *Scores) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("%w: scores column has type %T", ErrCorruptRecord, src)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("%w: scores column: %v", ErrCorruptRecord, err)
	}
	return nil
}

// StringList is a JSON-encoded string array column (graph warnings).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal([]string(l))
}

func (l *StringList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("%w: list column has type %T", ErrCorruptRecord, src)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	if err := json.Unmarshal(data, (*[]string)(l)); err != nil {
		return fmt.Errorf("%w: list column: %v", ErrCorruptRecord, err)
	}
	return nil
}

// Graph is one decomposition session. It owns exactly one root subtree,
// referenced through CoreJobID (and optionally BigJobID).
type Graph struct {
	ID                 string     `json:"id"`
	Language           string     `json:"language"`
	SegmentDescription string     `json:"segmentDescription"`
	CoreJobText        string     `json:"coreJobText"`
	BigJobText         *string    `json:"bigJobText,omitempty"`
	CoreJobID          *string    `json:"coreJobId,omitempty"`
	BigJobID           *string    `json:"bigJobId,omitempty"`
	Warnings           StringList `json:"warnings,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// Job is a node of the four-level hierarchy.
type Job struct {
	ID            string    `json:"id"`
	GraphID       string    `json:"graphId"`
	ParentID      *string   `json:"parentId,omitempty"`
	Level         Level     `json:"level"`
	Formulation   string    `json:"formulation"`
	Label         string    `json:"label"`
	Phase         Phase     `json:"phase"`
	Cadence       Cadence   `json:"cadence"`
	CadenceHint   string    `json:"cadenceHint,omitempty"`
	Scores        *Scores   `json:"scores,omitempty"`
	SortOrder     int       `json:"sortOrder"`
	WhenText      string    `json:"whenText,omitempty"`
	Want          string    `json:"want,omitempty"`
	SoThat        string    `json:"soThat,omitempty"`
	SuggestedNext string    `json:"suggestedNext,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CheckRow validates the enum fields of a Job as read back from storage.
func (j *Job) CheckRow() error {
	if !j.Level.Valid() {
		return fmt.Errorf("job %s: level %q", j.ID, j.Level)
	}
	if !j.Phase.Valid() {
		return fmt.Errorf("job %s: phase %q", j.ID, j.Phase)
	}
	if !j.Cadence.Valid() {
		return fmt.Errorf("job %s: cadence %q", j.ID, j.Cadence)
	}
	return nil
}

// Solution is one approach to accomplishing a Job.
type Solution struct {
	ID          string       `json:"id"`
	JobID       string       `json:"jobId"`
	Type        SolutionType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (s *Solution) CheckRow() error {
	if !s.Type.Valid() {
		return fmt.Errorf("solution %s: type %q", s.ID, s.Type)
	}
	return nil
}

// Edge is an explicit relation between two Jobs of the same Graph,
// orthogonal to the parent/child tree. Only the diagram view consumes it.
type Edge struct {
	ID        string    `json:"id"`
	GraphID   string    `json:"graphId"`
	FromJobID string    `json:"fromJobId"`
	ToJobID   string    `json:"toJobId"`
	Type      EdgeType  `json:"type"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (e *Edge) CheckRow() error {
	if !e.Type.Valid() {
		return fmt.Errorf("edge %s: type %q", e.ID, e.Type)
	}
	return nil
}
