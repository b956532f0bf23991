package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/segmentspeed"
)

const flushTimeout = 10 * time.Second

// TripSpeedsMessage carries every row of one trip on one service date.
type TripSpeedsMessage struct {
	ShapeID     string               `json:"shape_id"`
	TripID      string               `json:"trip_id"`
	ServiceDate string               `json:"service_date"`
	DayType     string               `json:"day_type"`
	Rows        []*ObservationRecord `json:"rows"`
}

type NATSSink struct {
	Subject string

	conn *nats.Conn
}

func NewNATSSink(url string, subject string) (*NATSSink, error) {
	conn, err := nats.Connect(url,
		nats.Name("routespeed"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			log.Info().Str("url", conn.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}

	return &NATSSink{Subject: subject, conn: conn}, nil
}

func (s *NATSSink) Name() string {
	return "nats"
}

// TripMessages groups the rows by trip and service date, keeping row order.
func TripMessages(result *segmentspeed.Result) []*TripSpeedsMessage {
	messages := []*TripSpeedsMessage{}
	var current *TripSpeedsMessage

	for _, record := range observationRecords(result) {
		if current == nil || current.TripID != record.TripID || current.ServiceDate != record.Date {
			current = &TripSpeedsMessage{
				ShapeID:     record.ShapeID,
				TripID:      record.TripID,
				ServiceDate: record.Date,
				DayType:     record.DayType,
			}
			messages = append(messages, current)
		}
		current.Rows = append(current.Rows, record)
	}

	return messages
}

func (s *NATSSink) Write(ctx context.Context, result *segmentspeed.Result) error {
	subject := fmt.Sprintf("%s.%s", s.Subject, subjectToken(result.ShapeID))
	messages := TripMessages(result)

	for _, message := range messages {
		body, err := json.Marshal(message)
		if err != nil {
			return err
		}
		if err := s.conn.Publish(subject, body); err != nil {
			return err
		}
	}

	flushCtx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := s.conn.FlushWithContext(flushCtx); err != nil {
		return err
	}

	log.Info().Str("subject", subject).Int("messages", len(messages)).Msg("Published segment speeds")
	return nil
}

func (s *NATSSink) Close() error {
	return s.conn.Drain()
}

// subjectToken makes an identifier safe to use as one token of a subject.
func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_").Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
