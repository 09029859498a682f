package transport

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/TimonPost/net-sync/compression/lz4"
	"github.com/TimonPost/net-sync/packer"
	"github.com/TimonPost/net-sync/postal"
	"github.com/TimonPost/net-sync/serialization/jsoncodec"
)

func testPacker() *packer.Packer {
	return packer.New(jsoncodec.Codec{}, &lz4.Strategy{})
}

// TestAcceptLoopRegistersClientAndEmitsConnected round-trips a real TCP
// dial against AcceptLoop over loopback.
func TestAcceptLoopRegistersClientAndEmitsConnected(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	registry := NewRegistry(listener)
	office := postal.NewPostOffice[string, string, string]()
	events := postal.NewEventQueue()
	log := zerolog.Nop()

	clientConn, err := Dial(listener.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer clientConn.Close()

	time.Sleep(20 * time.Millisecond)
	AcceptLoop(registry, office, events, log)

	if office.ClientCount() != 1 {
		t.Fatalf("expected 1 registered client, got %d", office.ClientCount())
	}

	drained := events.Drain()
	if len(drained) != 1 || drained[0].Kind != postal.Connected {
		t.Fatalf("expected one Connected event, got %v", drained)
	}
}

// TestServerSendThenClientRecvRoundTrips exercises the full server→wire→
// client path: ServerSend serializes and writes, ClientRecv reads and
// deserializes back into the client's postbox.
func TestServerSendThenClientRecvRoundTrips(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	registry := NewRegistry(listener)
	office := postal.NewPostOffice[string, string, string]()
	events := postal.NewEventQueue()
	log := zerolog.Nop()
	pack := testPacker()

	clientConn, err := Dial(listener.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer clientConn.Close()

	time.Sleep(20 * time.Millisecond)
	AcceptLoop(registry, office, events, log)

	var serverClient *postal.Session[string, string, string]
	for _, c := range office.Clients() {
		serverClient = c
	}
	if serverClient == nil {
		t.Fatal("expected a registered session")
	}
	serverClient.Postbox().Send(postal.NewServerMessage[string]("hello"))

	ServerSend(registry, office, pack, events, log)

	clientPostbox := postal.New[postal.ServerToClientMessage[string], postal.ClientToServerMessage[string, string]]()
	time.Sleep(20 * time.Millisecond)
	ClientRecv(clientConn, clientPostbox, pack, events, log)

	inbox := clientPostbox.DrainInbox(func(*postal.ServerToClientMessage[string]) bool { return true })
	if len(inbox) != 1 {
		t.Fatalf("expected 1 message in client inbox, got %d", len(inbox))
	}
	if inbox[0].Kind != postal.ServerMessage || inbox[0].Message != "hello" {
		t.Fatalf("unexpected message: %+v", inbox[0])
	}
}

// TestClientSendThenServerRecvRoundTrips exercises client→wire→server.
func TestClientSendThenServerRecvRoundTrips(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	registry := NewRegistry(listener)
	office := postal.NewPostOffice[string, string, string]()
	events := postal.NewEventQueue()
	log := zerolog.Nop()
	pack := testPacker()

	clientConn, err := Dial(listener.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer clientConn.Close()

	time.Sleep(20 * time.Millisecond)
	AcceptLoop(registry, office, events, log)

	clientPostbox := postal.New[postal.ServerToClientMessage[string], postal.ClientToServerMessage[string, string]]()
	clientPostbox.Send(postal.ClientToServerMessage[string, string]{Kind: postal.ClientMessage, Message: "ping"})

	ClientSend(clientConn, clientPostbox, pack, events, log)
	time.Sleep(20 * time.Millisecond)
	ServerRecv(registry, office, pack, 0, events, log, nil)

	var serverClient *postal.Session[string, string, string]
	for _, c := range office.Clients() {
		serverClient = c
	}
	if serverClient == nil {
		t.Fatal("expected a registered session")
	}
	inbox := serverClient.Postbox().DrainInbox(func(*string) bool { return true })
	if len(inbox) != 1 || inbox[0] != "ping" {
		t.Fatalf("expected [ping], got %v", inbox)
	}
}
