package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalemusser/eventdesk/internal/app/system/timeouts"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

var (
	version = "dev"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "eventdeskctl",
	Short:         "Maintenance commands for EventDesk",
	Long:          `Seed sample registrations, manage admin accounts and export registrations from the EventDesk database.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	rootCmd.PersistentFlags().String("mongo-database", "eventdesk", "MongoDB database name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	// Flags fall back to the same EVENTDESK_* variables the server reads.
	viper.SetEnvPrefix("EVENTDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("mongo_uri", rootCmd.PersistentFlags().Lookup("mongo-uri"))
	_ = viper.BindPFlag("mongo_database", rootCmd.PersistentFlags().Lookup("mongo-database"))
}

func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// connect opens the configured database. The caller disconnects the client.
func connect(ctx context.Context) (*mongo.Database, error) {
	uri := viper.GetString("mongo_uri")
	if err := wafflemongo.ValidateURI(uri); err != nil {
		return nil, fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetAppName("eventdeskctl"))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client.Database(viper.GetString("mongo_database")), nil
}
