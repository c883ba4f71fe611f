package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fourline-game/fourline-backend/config"
	"github.com/fourline-game/fourline-backend/models"
)

// ConnectMongoDB connects and pings the document database used for
// finished-game archives.
func ConnectMongoDB(cfg *config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// MongoArchiver implements Archiver on a MongoDB collection.
type MongoArchiver struct {
	games *mongo.Collection
}

func NewMongoArchiver(client *mongo.Client, database string) *MongoArchiver {
	return &MongoArchiver{games: client.Database(database).Collection("game_history")}
}

func (a *MongoArchiver) ArchiveGame(ctx context.Context, rec *models.GameRecord) error {
	_, err := a.games.InsertOne(ctx, rec)
	return err
}

func (a *MongoArchiver) GameHistory(ctx context.Context, gameID string) (*models.GameRecord, error) {
	var rec models.GameRecord
	err := a.games.FindOne(ctx, bson.M{"gameId": gameID}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
