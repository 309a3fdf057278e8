package db

import (
	"context"
	"fmt"
	"os"

	"github.com/taskade/taskade-backend/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect builds the cluster URI from the environment, connects and pings
// the primary. The returned client is held for the process lifetime.
func Connect(ctx context.Context) (*mongo.Client, error) {
	log := logger.FromCtx(ctx)

	uri, err := clusterURI()
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, &connectionError{err}
	}

	log.Info("pinging mongo db")
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, &pingError{err}
	}
	log.Info("mongo db ping successful")
	return client, nil
}

// clusterURI prefers a full MONGO_URI, otherwise assembles the Atlas URI
// from the DB_USER/DB_PASSWORD credential pair.
func clusterURI() (string, error) {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		return uri, nil
	}

	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	if user == "" || password == "" {
		return "", &configError{"MONGO_URI or DB_USER/DB_PASSWORD must be set"}
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "cluster0.apm2kiq.mongodb.net"
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority", user, password, host), nil
}

type configError struct {
	message string
}

func (e *configError) Error() string {
	return e.message
}

type connectionError struct {
	err error
}

func (e *connectionError) Error() string {
	return "Failed to connect to MongoDB: " + e.err.Error()
}

type pingError struct {
	err error
}

func (e *pingError) Error() string {
	return "Failed to ping MongoDB: " + e.err.Error()
}
