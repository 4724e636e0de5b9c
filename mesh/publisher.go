package mesh

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultPublishPrefix is the topic root used when none is configured
const DefaultPublishPrefix = "beaconmesh"

// ScannerMessage is the payload published for each resolved scanner
type ScannerMessage struct {
	RunID    string `json:"runId"`
	Name     string `json:"name"`
	Position Point  `json:"position"`
	Rotation int    `json:"rotation"`
	Parent   int    `json:"parent"`
}

// SummaryMessage is the payload published on the summary topic
type SummaryMessage struct {
	RunID              string `json:"runId"`
	ScannerCount       int    `json:"scannerCount"`
	BeaconCount        int    `json:"beaconCount"`
	MaxScannerDistance int    `json:"maxScannerDistance"`
	Timestamp          int64  `json:"timestamp"`
}

// Publisher publishes assembly results to MQTT
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
	timeout       time.Duration
}

// NewPublisher creates a publisher writing under prefix.
// If client is nil, publishing is disabled (for testing)
func NewPublisher(client mqtt.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultPublishPrefix
	}
	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           1,    // Results are published once per run; ask the broker to ack them
		retain:        true, // Late subscribers see the latest run
		timeout:       2 * time.Second,
	}
}

// ScannerTopic returns the topic a scanner's position is published to
func (p *Publisher) ScannerTopic(name string) string {
	return fmt.Sprintf("%s/scanners/%s", p.publishPrefix, topicSafe(name))
}

// SummaryTopic returns the topic the run summary is published to
func (p *Publisher) SummaryTopic() string {
	return p.publishPrefix + "/summary"
}

// PublishReport publishes every scanner's resolved position followed by the summary.
func (p *Publisher) PublishReport(r *Report) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	for _, s := range r.Scanners {
		msg := ScannerMessage{
			RunID:    r.RunID,
			Name:     s.Name,
			Position: s.Position,
			Rotation: s.Rotation,
			Parent:   s.Parent,
		}
		if err := p.publishJSON(p.ScannerTopic(s.Name), msg); err != nil {
			return err
		}
	}

	summary := SummaryMessage{
		RunID:              r.RunID,
		ScannerCount:       len(r.Scanners),
		BeaconCount:        r.Metrics.BeaconCount,
		MaxScannerDistance: r.Metrics.MaxScannerDistance,
		Timestamp:          r.GeneratedAt,
	}
	if err := p.publishJSON(p.SummaryTopic(), summary); err != nil {
		return err
	}

	log.Printf("[MQTT] published %d scanner positions and summary under %s/", len(r.Scanners), p.publishPrefix)
	return nil
}

func (p *Publisher) publishJSON(topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling payload for %s: %w", topic, err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publishing to %s: timed out after %v", topic, p.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2)
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}

// topicSafe replaces characters that are wildcards or separators in MQTT topics.
func topicSafe(name string) string {
	out := []rune(name)
	for i, r := range out {
		switch r {
		case '/', '+', '#', ' ':
			out[i] = '_'
		}
	}
	return string(out)
}
