package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/IBM/sarama"
)

// JobConsumer drains the confirmation topic and delivers emails
type JobConsumer interface {
	StartConsumers(ctx context.Context, numWorkers int) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeoutMs     int
	HeartbeatMs          int
	RetryBackoffMs       int
	MaxProcessingTime    time.Duration
	AutoCommit           bool
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "roamly-notifier",
		Topics:               []string{"booking-notifications"},
		SessionTimeoutMs:     30000,
		HeartbeatMs:          3000,
		RetryBackoffMs:       100,
		MaxProcessingTime:    5 * time.Minute,
		AutoCommit:           true,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

type KafkaJobConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	sender        *ConfirmationSender
	topics        []string
	ctx           context.Context
	cancel        context.CancelFunc
}

func NewKafkaJobConsumer(config *ConsumerConfig, sender *ConfirmationSender) (JobConsumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(config.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	if config.AutoCommit {
		saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
		saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &KafkaJobConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		sender:        sender,
		topics:        config.Topics,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func (kc *KafkaJobConsumer) StartConsumers(ctx context.Context, numWorkers int) error {
	log.Printf("Starting %d confirmation workers for topics: %v", numWorkers, kc.topics)

	go kc.handleErrors()

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			kc.runWorker(ctx, workerID)
		}(i)
	}

	return nil
}

func (kc *KafkaJobConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &confirmationGroupHandler{
		consumer: kc,
		workerID: workerID,
		sender:   kc.sender,
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("Confirmation worker %d shutting down", workerID)
			return
		default:
			if err := kc.consumerGroup.Consume(ctx, kc.topics, handler); err != nil {
				log.Printf("Confirmation worker %d consume error: %v", workerID, err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (kc *KafkaJobConsumer) handleErrors() {
	for err := range kc.consumerGroup.Errors() {
		log.Printf("Confirmation consumer group error: %v", err)
	}
}

func (kc *KafkaJobConsumer) Stop() error {
	log.Println("Stopping confirmation consumer...")
	kc.cancel()

	if err := kc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}

	log.Println("Confirmation consumer stopped")
	return nil
}

func (kc *KafkaJobConsumer) HealthCheck(ctx context.Context) error {
	select {
	case <-kc.ctx.Done():
		return fmt.Errorf("consumer context is cancelled")
	default:
		if kc.sender == nil {
			return fmt.Errorf("confirmation sender not configured")
		}
		return nil
	}
}

type confirmationGroupHandler struct {
	consumer *KafkaJobConsumer
	workerID int
	sender   *ConfirmationSender
}

func (h *confirmationGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Printf("Worker %d: consumer group session started", h.workerID)
	return nil
}

func (h *confirmationGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Printf("Worker %d: consumer group session ended", h.workerID)
	return nil
}

func (h *confirmationGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			if err := h.processMessage(session.Context(), message); err != nil {
				// Confirmation delivery must never wedge the partition:
				// log and move on, the booking itself is already confirmed.
				log.Printf("Worker %d: dropping confirmation job after retries: %v", h.workerID, err)
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *confirmationGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var job ConfirmationJob
	if err := json.Unmarshal(message.Value, &job); err != nil {
		return fmt.Errorf("failed to unmarshal confirmation job: %w", err)
	}

	job.Status = JobStatusSending

	if err := h.executeWithRetry(ctx, &job); err != nil {
		job.MarkFailed(err)
		return err
	}

	job.MarkSent()
	log.Printf("Worker %d: confirmation sent for booking %s to %s", h.workerID, job.BookingRef, job.CustomerEmail)
	return nil
}

func (h *confirmationGroupHandler) executeWithRetry(ctx context.Context, job *ConfirmationJob) error {
	maxRetries := h.consumer.config.MaxRetries
	backoff := h.consumer.config.RetryBackoffDuration

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := h.sender.Send(ctx, job)
		if err == nil {
			return nil
		}

		if attempt == maxRetries {
			return err
		}

		// Exponential backoff
		delay := backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}
