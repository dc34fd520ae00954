package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// JobProducer interface defines the contract for publishing confirmation jobs
type JobProducer interface {
	PublishConfirmation(ctx context.Context, job *ConfirmationJob) error
	Close() error
	HealthCheck(ctx context.Context) error
}

// KafkaProducerConfig contains configuration for the Kafka job producer
type KafkaProducerConfig struct {
	Brokers           []string
	NotificationTopic string
	RetryMax          int
	TimeoutMs         int
	RequiredAcks      sarama.RequiredAcks
	CompressionType   sarama.CompressionCodec
	IdempotentWrites  bool
	MaxMessageBytes   int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:           []string{"localhost:9092"},
		NotificationTopic: "booking-notifications",
		RetryMax:          3,
		TimeoutMs:         10000,
		RequiredAcks:      sarama.WaitForAll,
		CompressionType:   sarama.CompressionSnappy,
		IdempotentWrites:  true,
		MaxMessageBytes:   1000000,
	}
}

// KafkaJobProducer publishes confirmation jobs to Kafka
type KafkaJobProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
}

// NewKafkaJobProducer creates a new Kafka job producer
func NewKafkaJobProducer(config *KafkaProducerConfig) (JobProducer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps every job for a booking on one partition
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Printf("Kafka confirmation producer created")
	return &KafkaJobProducer{
		producer: producer,
		config:   config,
	}, nil
}

// PublishConfirmation publishes a single confirmation job to Kafka
func (kp *KafkaJobProducer) PublishConfirmation(ctx context.Context, job *ConfirmationJob) error {
	job.Status = JobStatusQueued
	job.UpdatedAt = time.Now()

	messageBytes, err := job.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation job: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.NotificationTopic,
		Key:       sarama.StringEncoder(job.PartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   kp.createHeaders(job),
		Timestamp: job.CreatedAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		job.MarkFailed(err)
		return fmt.Errorf("failed to send confirmation job to Kafka: %w", err)
	}

	log.Printf("Confirmation job published - Topic: %s, Partition: %d, Offset: %d, Booking: %s",
		kp.config.NotificationTopic, partition, offset, job.BookingRef)

	return nil
}

// createHeaders creates Kafka headers for confirmation jobs
func (kp *KafkaJobProducer) createHeaders(job *ConfirmationJob) []sarama.RecordHeader {
	return []sarama.RecordHeader{
		{Key: []byte("job_id"), Value: []byte(job.ID.String())},
		{Key: []byte("booking_id"), Value: []byte(job.BookingID)},
		{Key: []byte("booking_ref"), Value: []byte(job.BookingRef)},
		{Key: []byte("recipient_email"), Value: []byte(job.CustomerEmail)},
		{Key: []byte("producer"), Value: []byte("roamly-payments")},
		{Key: []byte("created_at"), Value: []byte(job.CreatedAt.Format(time.RFC3339))},
	}
}

// Close closes the Kafka producer
func (kp *KafkaJobProducer) Close() error {
	if kp.producer != nil {
		if err := kp.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
		log.Printf("Kafka confirmation producer closed")
	}
	return nil
}

// HealthCheck performs a health check on the Kafka producer
func (kp *KafkaJobProducer) HealthCheck(ctx context.Context) error {
	if kp.producer == nil {
		return fmt.Errorf("health check failed - producer is nil")
	}
	if kp.config.NotificationTopic == "" {
		return fmt.Errorf("health check failed - notification topic not configured")
	}
	return nil
}
