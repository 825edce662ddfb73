package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Consumer metrics are labeled by topic and consumer group, producer metrics
// by topic only.
var (
	ConsumerMessagesReceived   = consumerCounter("kafka_consumer_messages_received_total", "Total number of Kafka messages received (fetched from broker)")
	ConsumerMessagesProcessed  = consumerCounter("kafka_consumer_messages_processed_total", "Total number of successfully processed Kafka messages")
	ConsumerMessagesFailed     = consumerCounter("kafka_consumer_messages_failed_total", "Total number of Kafka messages that failed all retries (sent to DLQ or dropped)")
	ConsumerDLQPublished       = consumerCounter("kafka_consumer_dlq_published_total", "Total number of messages published to dead-letter queue")
	ConsumerProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_consumer_processing_duration_seconds",
			Help:    "Duration of Kafka message processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic", "consumer_group"},
	)

	ProducerMessagesPublished = producerCounter("kafka_producer_messages_published_total", "Total number of Kafka messages published")
	ProducerPublishErrors     = producerCounter("kafka_producer_publish_errors_total", "Total number of Kafka publish errors")
	ProducerPublishDuration   = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_producer_publish_duration_seconds",
			Help:    "Duration of Kafka publish operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic"},
	)
)

func consumerCounter(name, help string) *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{Name: name, Help: help},
		[]string{"topic", "consumer_group"},
	)
}

func producerCounter(name, help string) *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{Name: name, Help: help},
		[]string{"topic"},
	)
}
