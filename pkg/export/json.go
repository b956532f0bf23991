package export

import (
	"context"
	"encoding/json"
	"os"

	"github.com/liip/sheriff"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/segmentspeed"
)

// Document is the JSON view of a result. Field groups follow the API convention: basic
// for the everyday fields, detailed adds geometry and diagnostics.
type Document struct {
	ShapeID           string               `json:"shape_id" groups:"basic,detailed"`
	EPSG              int                  `json:"epsg" groups:"basic,detailed"`
	System            string               `json:"system" groups:"detailed"`
	Timezone          string               `json:"timezone" groups:"basic,detailed"`
	Segments          []*SegmentRecord     `json:"segments" groups:"basic,detailed"`
	Observations      []*ObservationRecord `json:"observations" groups:"basic,detailed"`
	Skipped           int                  `json:"skipped" groups:"detailed"`
	Flagged           int                  `json:"flagged" groups:"detailed"`
	MissingReferences []string             `json:"missing_references" groups:"detailed"`
}

func NewDocument(result *segmentspeed.Result) *Document {
	document := &Document{
		ShapeID:           result.ShapeID,
		Segments:          segmentRecords(result),
		Observations:      observationRecords(result),
		Skipped:           result.Skipped,
		Flagged:           result.FlaggedCount(),
		MissingReferences: []string{},
	}
	if result.Location != nil {
		document.Timezone = result.Location.String()
	}
	if result.System != nil {
		document.EPSG = result.System.EPSG
		document.System = result.System.String()
	}
	for _, missing := range result.MissingReferences {
		document.MissingReferences = append(document.MissingReferences, missing.Error())
	}
	return document
}

// Reduce marshals the document down to the fields in groups.
func (d *Document) Reduce(groups []string) (interface{}, error) {
	if len(groups) == 0 {
		groups = []string{"basic"}
	}
	return sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, d)
}

type JSONSink struct {
	Path   string
	Groups []string
}

func NewJSONSink(path string, groups []string) *JSONSink {
	return &JSONSink{Path: path, Groups: groups}
}

func (s *JSONSink) Name() string {
	return "json"
}

func (s *JSONSink) Write(_ context.Context, result *segmentspeed.Result) error {
	reduced, err := NewDocument(result).Reduce(s.Groups)
	if err != nil {
		return err
	}

	body, err := json.MarshalIndent(reduced, "", "  ")
	if err != nil {
		return err
	}

	log.Info().Str("path", s.Path).Strs("groups", s.Groups).Msg("Wrote JSON")
	return os.WriteFile(s.Path, body, 0o644)
}

func (s *JSONSink) Close() error {
	return nil
}
