// Package messaging publishes and consumes events over a pluggable broker
// (NSQ, NATS, Kafka, Google Pub/Sub or an in-process memory broker).
//
// Handlers return nil to acknowledge a delivery. A non-nil error asks the
// broker to redeliver when it supports that; brokers without redelivery
// drop the message after logging it.
package messaging
