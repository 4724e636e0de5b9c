package mesh

import (
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func TestMockClient_Connect(t *testing.T) {
	mock := NewMockClient()

	token := mock.Connect()
	if !token.WaitTimeout(1 * time.Second) {
		t.Error("Connect should complete immediately")
	}
	if token.Error() != nil {
		t.Errorf("Connect error = %v, want nil", token.Error())
	}
	if !mock.IsConnected() {
		t.Error("Client should be connected after Connect()")
	}
}

func TestMockClient_ConnectWithError(t *testing.T) {
	mock := NewMockClient()
	expectedErr := errors.New("connection failed")
	mock.SetConnectError(expectedErr)

	token := mock.Connect()
	if token.Error() != expectedErr {
		t.Errorf("Connect error = %v, want %v", token.Error(), expectedErr)
	}
	if mock.IsConnected() {
		t.Error("Client should not be connected after failed Connect()")
	}
}

func TestMockClient_PublishRequiresConnection(t *testing.T) {
	mock := NewMockClient()

	token := mock.Publish("a/b", 1, false, []byte("x"))
	if token.Error() != mqtt.ErrNotConnected {
		t.Errorf("Publish error = %v, want ErrNotConnected", token.Error())
	}
	if len(mock.GetPublishedMessages()) != 0 {
		t.Error("nothing should be recorded while disconnected")
	}
}

func TestMockClient_RecordsPublishes(t *testing.T) {
	mock := NewMockClient()
	mock.SetConnected(true)

	mock.Publish("lab/summary", 1, true, []byte(`{"beaconCount":79}`))
	mock.Publish("lab/scanners/scanner_0", 0, false, "plain")
	mock.Publish("other/topic", 0, false, []byte("ignored"))

	msgs := mock.GetPublishedMessages()
	if len(msgs) != 3 {
		t.Fatalf("recorded %d messages, want 3", len(msgs))
	}
	if string(msgs[1].Payload) != "plain" {
		t.Errorf("string payload recorded as %q", msgs[1].Payload)
	}
	if got := len(mock.MessagesUnder("lab/")); got != 2 {
		t.Errorf("MessagesUnder(lab/) = %d, want 2", got)
	}

	var summary SummaryMessage
	if err := msgs[0].Decode(&summary); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if summary.BeaconCount != 79 {
		t.Errorf("BeaconCount = %d, want 79", summary.BeaconCount)
	}
}

func TestMockClient_PendingToken(t *testing.T) {
	mock := NewMockClient()
	mock.SetConnected(true)
	mock.SetPublishHangs(true)

	token := mock.Publish("a", 0, false, []byte("x"))
	if token.WaitTimeout(time.Millisecond) {
		t.Error("hanging publish should not complete")
	}
	select {
	case <-token.Done():
		t.Error("Done channel should stay open")
	default:
	}
}

func TestMockClient_Disconnect(t *testing.T) {
	mock := NewMockClient()
	mock.Connect()
	mock.Disconnect(250)
	if mock.IsConnected() || mock.IsConnectionOpen() {
		t.Error("Client should be disconnected")
	}
}
