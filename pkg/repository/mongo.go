package repository

import (
	"context"
	"time"

	"github.com/example/clickmenu/pkg/config"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return &MongoRepository{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// NewMongoRepositoryWithCollection wraps an already connected collection.
func NewMongoRepositoryWithCollection(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{client: coll.Database().Client(), collection: coll}
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// AuditLog records one state change. EntityID is a request id or store id.
type AuditLog struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Service   string    `bson:"service" json:"service"`
	Action    string    `bson:"action" json:"action"`
	StoreID   string    `bson:"store_id,omitempty" json:"store_id,omitempty"`
	EntityID  string    `bson:"entity_id" json:"entity_id"`
	Actor     string    `bson:"actor,omitempty" json:"actor,omitempty"`
	Data      bson.M    `bson:"data,omitempty" json:"data,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func (m *MongoRepository) CreateAuditLog(ctx context.Context, log *AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	_, err := m.collection.InsertOne(ctx, log)
	return err
}

// GetAuditLogs returns the newest entries for entityID first.
func (m *MongoRepository) GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*AuditLog, error) {
	filter := bson.M{"entity_id": entityID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []*AuditLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}

	return logs, nil
}
