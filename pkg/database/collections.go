package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateSpeedIndexes indexes a segment speed collection on its upsert key and the
// usual query shapes.
func (m *MongoInstance) CreateSpeedIndexes(ctx context.Context, collectionName string) {
	collection := m.GetCollection(collectionName)

	speedIndex := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "shapeid", Value: 1},
				{Key: "tripid", Value: 1},
				{Key: "segmentid", Value: 1},
				{Key: "servicedate", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "shapeid", Value: 1}, {Key: "segmentindex", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "startdatetime", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := collection.Indexes().CreateMany(ctx, speedIndex, opts)
	if err != nil {
		log.Error().Err(err).Str("collection", collectionName).Msg("Creating Index")
	}
}
