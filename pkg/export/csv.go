package export

import (
	"context"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/segmentspeed"
)

type CSVSink struct {
	Path string
}

func NewCSVSink(path string) *CSVSink {
	return &CSVSink{Path: path}
}

func (s *CSVSink) Name() string {
	return "csv"
}

func (s *CSVSink) Write(_ context.Context, result *segmentspeed.Result) error {
	file, err := os.Create(s.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	records := observationRecords(result)
	if err := gocsv.MarshalFile(&records, file); err != nil {
		return err
	}

	log.Info().Str("path", s.Path).Int("rows", len(records)).Msg("Wrote CSV")
	return file.Close()
}

func (s *CSVSink) Close() error {
	return nil
}
