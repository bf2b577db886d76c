// Package kafka publishes transcript events over segmentio/kafka-go.
//
// The producer subpackage holds the retrying Producer, its provider.Sink
// adapter and the TranscriptPublisher that turns transcript writes into
// transcript.updated events. Component manages the producer lifecycle.
//
//	kafka:
//	  enabled: true
//	  brokers: ["localhost:9092"]
//	  topic: voxscribe.transcripts
package kafka
