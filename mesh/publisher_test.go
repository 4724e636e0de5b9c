package mesh

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectedMock() *MockClient {
	c := NewMockClient()
	c.SetConnected(true)
	return c
}

func TestNewPublisher(t *testing.T) {
	publisher := NewPublisher(nil, "")
	require.NotNil(t, publisher)

	assert.Equal(t, DefaultPublishPrefix, publisher.publishPrefix)
	assert.Equal(t, byte(1), publisher.qos)
	assert.True(t, publisher.retain)
}

func TestPublisher_Topics(t *testing.T) {
	p := NewPublisher(nil, "lab")
	assert.Equal(t, "lab/scanners/scanner_3", p.ScannerTopic("scanner 3"))
	assert.Equal(t, "lab/scanners/a_b_c_d", p.ScannerTopic("a/b+c#d"))
	assert.Equal(t, "lab/summary", p.SummaryTopic())
}

func TestPublisher_PublishReport(t *testing.T) {
	client := connectedMock()
	p := NewPublisher(client, "lab")
	r := BuildReport(assembleExample(t), false)

	require.NoError(t, p.PublishReport(r))

	scanners := client.MessagesUnder("lab/scanners/")
	require.Len(t, scanners, 5)

	var msg ScannerMessage
	require.NoError(t, scanners[2].Decode(&msg))
	assert.Equal(t, r.RunID, msg.RunID)
	assert.Equal(t, "scanner 2", msg.Name)
	assert.Equal(t, Point{X: 1105, Y: -1205, Z: 1229}, msg.Position)
	assert.Equal(t, "lab/scanners/scanner_2", scanners[2].Topic)

	summaries := client.MessagesUnder("lab/summary")
	require.Len(t, summaries, 1)
	var summary SummaryMessage
	require.NoError(t, summaries[0].Decode(&summary))
	assert.Equal(t, 5, summary.ScannerCount)
	assert.Equal(t, 79, summary.BeaconCount)
	assert.Equal(t, 3621, summary.MaxScannerDistance)
	assert.Equal(t, r.GeneratedAt, summary.Timestamp)

	for _, m := range client.GetPublishedMessages() {
		assert.Equal(t, byte(1), m.QoS, m.Topic)
		assert.True(t, m.Retain, m.Topic)
	}

	// The summary is published last so subscribers see complete runs.
	all := client.GetPublishedMessages()
	assert.Equal(t, "lab/summary", all[len(all)-1].Topic)
}

func TestPublisher_SettersApply(t *testing.T) {
	client := connectedMock()
	p := NewPublisher(client, "lab")
	p.SetQoS(2)
	p.SetQoS(7) // ignored
	p.SetRetain(false)

	r := &Report{RunID: "run", Scanners: []ScannerPosition{{Name: "scanner 0", Parent: -1}}}
	require.NoError(t, p.PublishReport(r))

	for _, m := range client.GetPublishedMessages() {
		assert.Equal(t, byte(2), m.QoS)
		assert.False(t, m.Retain)
	}
}

func TestPublisher_NotConnected(t *testing.T) {
	r := &Report{RunID: "run"}

	err := NewPublisher(nil, "lab").PublishReport(r)
	assert.Error(t, err)

	err = NewPublisher(NewMockClient(), "lab").PublishReport(r)
	assert.ErrorContains(t, err, "not connected")
}

func TestPublisher_PublishError(t *testing.T) {
	client := connectedMock()
	boom := errors.New("broker rejected")
	client.SetPublishError(boom)

	err := NewPublisher(client, "lab").PublishReport(&Report{RunID: "run"})
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "lab/summary")
}

func TestPublisher_Timeout(t *testing.T) {
	client := connectedMock()
	client.SetPublishHangs(true)

	p := NewPublisher(client, "lab")
	p.timeout = 10 * time.Millisecond

	err := p.PublishReport(&Report{RunID: "run"})
	assert.ErrorContains(t, err, "timed out")
}
