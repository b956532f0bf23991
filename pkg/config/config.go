package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/travigo/routespeed/pkg/crs"
	"github.com/travigo/routespeed/pkg/util"
	"gopkg.in/yaml.v3"
)

const (
	defaultMongoDatabase   = "routespeed"
	defaultMongoCollection = "segment_speeds"
	defaultNATSSubject     = "routespeed.speeds"
	defaultElasticIndex    = "routespeed-segment-speeds"
	defaultQueueName       = "routespeed-speeds"
	defaultNeo4jDatabase   = "neo4j"
	defaultCacheExpiration = 6 * time.Hour
)

type Config struct {
	Source           string `yaml:"source" validate:"required"`
	ShapeID          string `yaml:"shape_id" validate:"required_without=RouteID"`
	RouteID          string `yaml:"route_id"`
	TripFilter       string `yaml:"trip_filter"`
	EPSG             int    `yaml:"epsg" validate:"gte=0"`
	StrictProjection bool   `yaml:"strict_projection"`
	Workers          int    `yaml:"workers" validate:"gte=0"`

	Output  OutputConfig  `yaml:"output"`
	Cache   CacheConfig   `yaml:"cache"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type OutputConfig struct {
	CSV             string   `yaml:"csv"`
	JSON            string   `yaml:"json"`
	JSONGroups      []string `yaml:"json_groups" validate:"dive,oneof=basic detailed"`
	GeoJSON         string   `yaml:"geojson"`
	SQLite          string   `yaml:"sqlite"`
	MongoURI        string   `yaml:"mongodb_uri" validate:"omitempty,uri"`
	MongoDatabase   string   `yaml:"mongodb_database"`
	MongoCollection string   `yaml:"mongodb_collection"`
	NATSURL         string   `yaml:"nats_url" validate:"omitempty,uri"`
	NATSSubject     string   `yaml:"nats_subject"`

	ElasticsearchAddress  string `yaml:"elasticsearch_address" validate:"omitempty,url"`
	ElasticsearchUsername string `yaml:"elasticsearch_username"`
	ElasticsearchPassword string `yaml:"elasticsearch_password"`
	ElasticsearchIndex    string `yaml:"elasticsearch_index"`

	QueueRedisAddress  string `yaml:"queue_redis_address"`
	QueueRedisPassword string `yaml:"queue_redis_password"`
	QueueName          string `yaml:"queue_name"`

	Neo4jURI      string `yaml:"neo4j_uri" validate:"omitempty,uri"`
	Neo4jUsername string `yaml:"neo4j_username"`
	Neo4jPassword string `yaml:"neo4j_password"`
	Neo4jDatabase string `yaml:"neo4j_database"`
}

// CacheConfig enables the Redis feed cache when RedisAddress is set.
type CacheConfig struct {
	RedisAddress  string        `yaml:"redis_address"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDatabase int           `yaml:"redis_database" validate:"gte=0"`
	Expiration    time.Duration `yaml:"expiration" validate:"gte=0"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Overrides come from command line flags. Empty fields leave the loaded value alone.
type Overrides struct {
	Source           string
	ShapeID          string
	RouteID          string
	TripFilter       string
	EPSG             int
	StrictProjection bool
	Workers          int

	Outputs OutputConfig
}

func Default() *Config {
	return &Config{
		EPSG: crs.DefaultEPSG,
		Output: OutputConfig{
			JSONGroups:      []string{"basic"},
			MongoDatabase:   defaultMongoDatabase,
			MongoCollection: defaultMongoCollection,
			NATSSubject:     defaultNATSSubject,

			ElasticsearchIndex: defaultElasticIndex,
			QueueName:          defaultQueueName,
			Neo4jDatabase:      defaultNeo4jDatabase,
		},
		Cache: CacheConfig{
			Expiration: defaultCacheExpiration,
		},
	}
}

// Load reads the optional YAML file at path, then a .env file if present, then ROUTESPEED_*
// environment variables. Later sources win.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(body, config); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Could not read .env file")
	}

	if err := config.applyEnvironment(util.GetEnvironmentVariables("ROUTESPEED_")); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyEnvironment(env map[string]string) error {
	text := map[string]*string{
		"ROUTESPEED_SOURCE":             &c.Source,
		"ROUTESPEED_SHAPE_ID":           &c.ShapeID,
		"ROUTESPEED_ROUTE_ID":           &c.RouteID,
		"ROUTESPEED_TRIP_FILTER":        &c.TripFilter,
		"ROUTESPEED_MONGODB_CONNECTION": &c.Output.MongoURI,
		"ROUTESPEED_MONGODB_DATABASE":   &c.Output.MongoDatabase,
		"ROUTESPEED_NATS_URL":           &c.Output.NATSURL,

		"ROUTESPEED_ELASTICSEARCH_ADDRESS":  &c.Output.ElasticsearchAddress,
		"ROUTESPEED_ELASTICSEARCH_USERNAME": &c.Output.ElasticsearchUsername,
		"ROUTESPEED_ELASTICSEARCH_PASSWORD": &c.Output.ElasticsearchPassword,

		"ROUTESPEED_REDIS_ADDRESS":        &c.Cache.RedisAddress,
		"ROUTESPEED_REDIS_PASSWORD":       &c.Cache.RedisPassword,
		"ROUTESPEED_QUEUE_REDIS_ADDRESS":  &c.Output.QueueRedisAddress,
		"ROUTESPEED_QUEUE_REDIS_PASSWORD": &c.Output.QueueRedisPassword,

		"ROUTESPEED_NEO4J_URI":      &c.Output.Neo4jURI,
		"ROUTESPEED_NEO4J_USERNAME": &c.Output.Neo4jUsername,
		"ROUTESPEED_NEO4J_PASSWORD": &c.Output.Neo4jPassword,

		"ROUTESPEED_METRICS_TEXTFILE": &c.Metrics.Textfile,
	}
	for name, destination := range text {
		if env[name] != "" {
			*destination = env[name]
		}
	}

	integers := map[string]*int{
		"ROUTESPEED_EPSG":           &c.EPSG,
		"ROUTESPEED_WORKERS":        &c.Workers,
		"ROUTESPEED_REDIS_DATABASE": &c.Cache.RedisDatabase,
	}
	for name, destination := range integers {
		if env[name] == "" {
			continue
		}
		value, err := strconv.Atoi(env[name])
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*destination = value
	}

	if value := env["ROUTESPEED_STRICT_PROJECTION"]; value != "" {
		c.StrictProjection = isTrue(value)
	}

	return nil
}

func isTrue(value string) bool {
	switch strings.ToUpper(value) {
	case "YES", "TRUE", "1":
		return true
	default:
		return false
	}
}

func (c *Config) Apply(overrides Overrides) error {
	options := copier.Option{IgnoreEmpty: true}

	if err := copier.CopyWithOption(c, &overrides, options); err != nil {
		return err
	}
	return copier.CopyWithOption(&c.Output, &overrides.Outputs, options)
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if _, err := crs.Lookup(c.EPSG); err != nil {
		return err
	}

	return nil
}
