package main

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/jwoglom/djtree/config"
	"github.com/jwoglom/djtree/pkg/database"
	"github.com/jwoglom/djtree/pkg/graph"
	"github.com/jwoglom/djtree/pkg/kafka"
)

// postgresDependency connects the relational store during startup.
type postgresDependency struct {
	cfg    *config.Config
	logger ectologger.Logger
	db     database.DB
}

func (d *postgresDependency) GetName() string {
	return "postgres"
}

func (d *postgresDependency) DependsOn() []string {
	return nil
}

func (d *postgresDependency) Start(ctx context.Context) error {
	db, err := database.Connect(database.Config{
		Driver:          d.cfg.DatabaseDriver,
		Host:            d.cfg.DatabaseHost,
		Port:            d.cfg.DatabasePort,
		User:            d.cfg.DatabaseUserName,
		Password:        d.cfg.DatabasePassword,
		Name:            d.cfg.DatabaseName,
		SSLMode:         d.cfg.DatabaseSSLMode,
		MaxOpenConns:    d.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    d.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: d.cfg.DatabaseConnMaxLifetime,
	}, d.logger)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	d.db = db
	return nil
}

func (d *postgresDependency) Stop(ctx context.Context) error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// graphDependency connects the graph projection database during startup.
type graphDependency struct {
	cfg    *config.Config
	logger ectologger.Logger
	client *graph.Client
}

func (d *graphDependency) GetName() string {
	return "graph"
}

func (d *graphDependency) DependsOn() []string {
	return nil
}

func (d *graphDependency) Start(ctx context.Context) error {
	client, err := graph.NewClient(graph.Config{
		Host:     d.cfg.GraphDBHost,
		Port:     d.cfg.GraphDBPort,
		Username: d.cfg.GraphDBUser,
		Password: d.cfg.GraphDBPassword,
	}, d.logger)
	if err != nil {
		return err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		return err
	}
	d.client = client
	return nil
}

func (d *graphDependency) Stop(ctx context.Context) error {
	if d.client == nil {
		return nil
	}
	return d.client.Close(ctx)
}

// kafkaDependency builds the lifecycle event producer during startup. The
// underlying writer connects lazily on first publish, so Start only
// constructs it.
type kafkaDependency struct {
	cfg      *config.Config
	logger   ectologger.Logger
	producer *kafka.Producer
}

func (d *kafkaDependency) GetName() string {
	return "kafka"
}

func (d *kafkaDependency) DependsOn() []string {
	return nil
}

func (d *kafkaDependency) Start(ctx context.Context) error {
	d.producer = kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      d.cfg.KafkaBrokers,
		Topic:        d.cfg.KafkaOutputTopic,
		BatchSize:    d.cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(d.cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: d.cfg.KafkaRequiredAcks,
		Compression:  d.cfg.KafkaCompression,
	}, d.logger)
	return nil
}

func (d *kafkaDependency) Stop(ctx context.Context) error {
	if d.producer == nil {
		return nil
	}
	return d.producer.Close()
}
