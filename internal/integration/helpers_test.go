//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/collision-severity-service/internal/domain"
	"github.com/couchcryptid/collision-severity-service/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker for the duration of the test and
// returns its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("collision-severity-test"),
	)
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate kafka container: %v", err)
		}
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// collisionReport mirrors the pipeline fixtures in internal/pipeline/testdata.
type collisionReport struct {
	Name         string          `json:"name"`
	Key          string          `json:"key"`
	Payload      json.RawMessage `json:"payload"`
	PayloadRaw   string          `json:"payload_raw"`
	WantSeverity string          `json:"want_severity"`
	WantKind     string          `json:"want_kind"`
}

func (r collisionReport) value() []byte {
	if r.PayloadRaw != "" {
		return []byte(r.PayloadRaw)
	}
	return r.Payload
}

func loadMockReports(t *testing.T) []collisionReport {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "pipeline", "testdata", "collision_reports.json"))
	require.NoError(t, err)

	var reports []collisionReport
	require.NoError(t, json.Unmarshal(data, &reports))
	return reports
}

func loadClassifier(t *testing.T) domain.Classifier {
	t.Helper()
	a, err := model.ReadFile(filepath.Join("..", "model", "testdata", "logistic.json"))
	require.NoError(t, err)
	clf, err := a.Classifier()
	require.NoError(t, err)
	return clf
}
