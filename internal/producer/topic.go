package producer

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// TopicSpec describes one topic's operational contract.
type TopicSpec struct {
	Name            string
	Partitions      int
	Retention       time.Duration
	MaxMessageBytes int
}

// TopicSpecs returns the topic layout for the hub. The alert-created and
// user-alert topics use delete-based retention with compression enabled on
// the producer side; the dead-letter topic keeps failures for 30 days on a
// single partition for manual inspection.
func TopicSpecs(alertCreatedTopic, userAlertTopic, dlqTopic string, partitions int) []TopicSpec {
	return []TopicSpec{
		{Name: alertCreatedTopic, Partitions: partitions, Retention: 7 * 24 * time.Hour},
		{Name: userAlertTopic, Partitions: partitions, Retention: 7 * 24 * time.Hour, MaxMessageBytes: 2 << 20},
		{Name: dlqTopic, Partitions: 1, Retention: 30 * 24 * time.Hour},
	}
}

// EnsureTopics attempts to create the given topics if they don't exist.
// This is a best-effort operation; failures are logged but don't prevent
// startup, since topics may be provisioned out of band.
func EnsureTopics(broker string, specs []TopicSpec) {
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		slog.Warn("Could not connect to Kafka to check/create topics",
			"broker", broker,
			"error", err,
			"note", "Topics may need to be created manually",
		)
		return
	}
	defer conn.Close()

	for _, spec := range specs {
		ensureTopic(conn, spec)
	}
}

func ensureTopic(conn *kafka.Conn, spec TopicSpec) {
	partitions, err := conn.ReadPartitions(spec.Name)
	if err == nil && len(partitions) > 0 {
		slog.Info("Topic already exists",
			"topic", spec.Name,
			"partitions", len(partitions),
		)
		return
	}

	configEntries := []kafka.ConfigEntry{
		{ConfigName: "cleanup.policy", ConfigValue: "delete"},
		{ConfigName: "retention.ms", ConfigValue: strconv.FormatInt(spec.Retention.Milliseconds(), 10)},
	}
	if spec.MaxMessageBytes > 0 {
		configEntries = append(configEntries, kafka.ConfigEntry{
			ConfigName:  "max.message.bytes",
			ConfigValue: strconv.Itoa(spec.MaxMessageBytes),
		})
	}

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             spec.Name,
		NumPartitions:     spec.Partitions,
		ReplicationFactor: 1,
		ConfigEntries:     configEntries,
	})
	if err != nil {
		slog.Warn("Could not create topic (may need to be created manually)",
			"topic", spec.Name,
			"error", err,
		)
		return
	}

	slog.Info("Created topic",
		"topic", spec.Name,
		"partitions", spec.Partitions,
		"retention", spec.Retention.String(),
	)

	// Topic creation is asynchronous; wait briefly for the partitions to
	// become readable before the first produce.
	for i := 0; i < 5; i++ {
		time.Sleep(time.Second)
		partitions, err := conn.ReadPartitions(spec.Name)
		if err == nil && len(partitions) > 0 {
			return
		}
	}

	slog.Warn("Topic created but may not be fully available yet",
		"topic", spec.Name,
		"note", "Producer will retry on first write if topic is not ready",
	)
}
