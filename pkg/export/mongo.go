package export

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/database"
	"github.com/travigo/routespeed/pkg/segmentspeed"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoBatchSize = 1000

type MongoSink struct {
	Collection string

	instance *database.MongoInstance
}

func NewMongoSink(ctx context.Context, uri string, dbName string, collection string) (*MongoSink, error) {
	instance, err := database.ConnectMongoDB(ctx, uri, dbName)
	if err != nil {
		return nil, err
	}
	instance.CreateSpeedIndexes(ctx, collection)

	return &MongoSink{Collection: collection, instance: instance}, nil
}

func (s *MongoSink) Name() string {
	return "mongodb"
}

func (s *MongoSink) Write(ctx context.Context, result *segmentspeed.Result) error {
	collection := s.instance.GetCollection(s.Collection)
	writeID := uuid.New().String()
	documents := speedDocuments(result, time.Now(), writeID)

	operations := []mongo.WriteModel{}
	flush := func() error {
		if len(operations) == 0 {
			return nil
		}
		log.Debug().Int("Length", len(operations)).Msg("Bulk write")
		_, err := collection.BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(false))
		operations = []mongo.WriteModel{}
		return err
	}

	for _, document := range documents {
		bsonRep, err := bson.Marshal(bson.M{"$set": document})
		if err != nil {
			return err
		}

		updateModel := mongo.NewUpdateOneModel()
		updateModel.SetFilter(bson.M{
			"shapeid":     document.ShapeID,
			"tripid":      document.TripID,
			"segmentid":   document.SegmentID,
			"servicedate": document.ServiceDate,
		})
		updateModel.SetUpdate(bsonRep)
		updateModel.SetUpsert(true)
		operations = append(operations, updateModel)

		if len(operations) >= mongoBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}

	deleted, err := collection.DeleteMany(ctx, staleSpeedsQuery(result.ShapeID, writeID))
	if err != nil {
		return err
	}

	log.Info().
		Str("collection", s.Collection).
		Int("documents", len(documents)).
		Int64("stale", deleted.DeletedCount).
		Msg("Upserted segment speeds")
	return nil
}

// staleSpeedsQuery matches the shape's documents written by any other write.
func staleSpeedsQuery(shapeID string, writeID string) bson.M {
	return bson.M{
		"$and": bson.A{
			bson.M{"shapeid": shapeID},
			bson.M{"writeid": bson.M{"$ne": writeID}},
		},
	}
}

func (s *MongoSink) Close() error {
	return s.instance.Disconnect(context.Background())
}
