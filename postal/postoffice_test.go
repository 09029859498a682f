package postal

import (
	"net"
	"testing"

	"github.com/TimonPost/net-sync/worldstate"
)

type fakeAddr string

func (a fakeAddr) Network() string { return "tcp" }
func (a fakeAddr) String() string  { return string(a) }

var _ net.Addr = fakeAddr("")

func TestAddClientAssignsSequentialIDs(t *testing.T) {
	office := NewPostOffice[int, int, int]()

	id1, ok1 := office.AddClient(fakeAddr("127.0.0.1:10"))
	id2, ok2 := office.AddClient(fakeAddr("127.0.0.1:11"))

	if !ok1 || !ok2 || id1 != 0 || id2 != 1 {
		t.Fatalf("expected ids 0,1, got %d(%v),%d(%v)", id1, ok1, id2, ok2)
	}
}

func TestAddClientTwiceSameAddrReturnsFalse(t *testing.T) {
	office := NewPostOffice[int, int, int]()

	_, ok1 := office.AddClient(fakeAddr("127.0.0.1:19"))
	_, ok2 := office.AddClient(fakeAddr("127.0.0.1:19"))

	if !ok1 || ok2 {
		t.Fatal("expected second add with same address to fail")
	}
}

func TestRemoveClientIsIdempotent(t *testing.T) {
	office := NewPostOffice[int, int, int]()
	id, _ := office.AddClient(fakeAddr("127.0.0.1:10"))

	office.RemoveClient(id)
	office.RemoveClient(id) // must not panic

	if office.ClientCount() != 0 {
		t.Fatal("expected client to be removed")
	}
}

func TestClientByAddr(t *testing.T) {
	office := NewPostOffice[int, int, int]()
	office.AddClient(fakeAddr("127.0.0.1:10"))

	if _, ok := office.ClientByAddr(fakeAddr("127.0.0.1:10")); !ok {
		t.Fatal("expected to find client by address")
	}
}

func TestClientsWithInbox(t *testing.T) {
	office := NewPostOffice[int, int, int]()
	id1, _ := office.AddClient(fakeAddr("127.0.0.1:10"))
	office.AddClient(fakeAddr("127.0.0.1:11"))

	client, _ := office.ClientByID(id1)
	client.Postbox().AddToInbox(1)

	withInbox := office.ClientsWithInbox()
	if len(withInbox) != 1 {
		t.Fatalf("expected 1 client with inbox, got %d", len(withInbox))
	}
}

func TestBroadcastDeliversToEveryClient(t *testing.T) {
	office := NewPostOffice[int, int, int]()
	id1, _ := office.AddClient(fakeAddr("127.0.0.1:10"))
	id2, _ := office.AddClient(fakeAddr("127.0.0.1:22"))

	office.Broadcast(NewServerMessage[int](1))

	c1, _ := office.ClientByID(id1)
	c2, _ := office.ClientByID(id2)

	if len(c1.Postbox().DrainOutgoing(func(*ServerToClientMessage[int]) bool { return true })) != 1 {
		t.Fatal("expected client 1 to receive the broadcast")
	}
	if len(c2.Postbox().DrainOutgoing(func(*ServerToClientMessage[int]) bool { return true })) != 1 {
		t.Fatal("expected client 2 to receive the broadcast")
	}
}

// TestBroadcastStampsPerClientOffset mirrors spec.md §8 scenario S5.
func TestBroadcastStampsPerClientOffset(t *testing.T) {
	office := NewPostOffice[int, int, int]()
	id1, _ := office.AddClient(fakeAddr("127.0.0.1:10"))
	id2, _ := office.AddClient(fakeAddr("127.0.0.1:20"))

	c1, _ := office.ClientByID(id1)
	c2, _ := office.ClientByID(id2)
	c1.CommandPostbox().Push(0, 4, 0) // offset becomes 4
	c2.CommandPostbox().Push(0, 6, 0) // offset becomes 6

	office.Broadcast(NewStateUpdate[int](worldstate.New(1)))

	out1 := c1.Postbox().DrainOutgoing(func(*ServerToClientMessage[int]) bool { return true })
	out2 := c2.Postbox().DrainOutgoing(func(*ServerToClientMessage[int]) bool { return true })

	if out1[0].StateUpdate.CommandFrameOffset != 4 {
		t.Fatalf("expected client 1 offset 4, got %d", out1[0].StateUpdate.CommandFrameOffset)
	}
	if out2[0].StateUpdate.CommandFrameOffset != 6 {
		t.Fatalf("expected client 2 offset 6, got %d", out2[0].StateUpdate.CommandFrameOffset)
	}
}
