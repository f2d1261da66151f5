//go:build integration

package integration

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const testDatabase = "prompts_test"

// backends holds the running databases shared by every test in the package.
type backends struct {
	ctx      context.Context
	pgURL    string
	mongoURL string
	mongo    *mongo.Client

	teardown []func()
}

var suite *backends

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)

	b := &backends{ctx: ctx}
	if err := b.start(); err != nil {
		log.Printf("starting backends: %v", err)
		b.stop()
		cancel()
		os.Exit(1)
	}
	suite = b

	code := m.Run()

	b.stop()
	cancel()
	os.Exit(code)
}

func (b *backends) start() error {
	pg, err := postgres.Run(b.ctx, "postgres:16-alpine",
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	b.onStop(func() { _ = testcontainers.TerminateContainer(pg) })
	if err != nil {
		return fmt.Errorf("postgres container: %w", err)
	}
	if b.pgURL, err = pg.ConnectionString(b.ctx, "sslmode=disable"); err != nil {
		return fmt.Errorf("postgres connection string: %w", err)
	}

	mc, err := mongodb.Run(b.ctx, "mongo:7")
	b.onStop(func() { _ = testcontainers.TerminateContainer(mc) })
	if err != nil {
		return fmt.Errorf("mongodb container: %w", err)
	}
	if b.mongoURL, err = mc.ConnectionString(b.ctx); err != nil {
		return fmt.Errorf("mongodb connection string: %w", err)
	}

	// Seeding client; lookups under test open their own.
	if b.mongo, err = mongo.Connect(options.Client().ApplyURI(b.mongoURL)); err != nil {
		return fmt.Errorf("mongodb client: %w", err)
	}
	b.onStop(func() { _ = b.mongo.Disconnect(context.Background()) })

	return b.mongo.Ping(b.ctx, nil)
}

func (b *backends) onStop(fn func()) {
	b.teardown = append(b.teardown, fn)
}

// stop runs teardown in reverse order of setup.
func (b *backends) stop() {
	for i := len(b.teardown) - 1; i >= 0; i-- {
		b.teardown[i]()
	}
}
