package whatsapp

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impulsohub/painel/models"
)

// fakeGateway scripts the upstream answers a machine sees. Detailed statuses
// are consumed in order; the last one repeats.
type fakeGateway struct {
	mu          sync.Mutex
	status      models.WhatsappStatus
	initiate    models.WhatsappConnection
	connect     models.WhatsappConnection
	detailed    []models.WhatsappDetailedStatus
	detailedIdx int
	disconnects int
}

func (f *fakeGateway) Status(ctx context.Context, token string) models.WhatsappStatus {
	return f.status
}

func (f *fakeGateway) Initiate(ctx context.Context, token string) models.WhatsappConnection {
	return f.initiate
}

func (f *fakeGateway) Connect(ctx context.Context, token string) models.WhatsappConnection {
	return f.connect
}

func (f *fakeGateway) DetailedStatus(ctx context.Context, token string) models.WhatsappDetailedStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.detailed) == 0 {
		return models.WhatsappDetailedStatus{Result: models.Ok(""), Status: "disconnected"}
	}
	d := f.detailed[f.detailedIdx]
	if f.detailedIdx < len(f.detailed)-1 {
		f.detailedIdx++
	}
	return d
}

func (f *fakeGateway) DisconnectInstance(ctx context.Context, token, instanceToken string) models.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects++
	return models.Ok("Instância WhatsApp desconectada com sucesso")
}

func newTestMachine(gw Gateway) *Machine {
	return NewMachine(gw, "bearer", 5*time.Millisecond, zerolog.Nop())
}

func waitForState(t *testing.T, m *Machine, want State) Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		snap := m.Snapshot()
		if snap.State == want {
			return snap
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for state %q, stuck at %q", want, snap.State)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestStartWithoutCredentialSettlesDisconnected(t *testing.T) {
	gw := &fakeGateway{status: models.WhatsappStatus{Result: models.Ok(""), HasToken: false}}
	m := newTestMachine(gw)

	m.Start(context.Background())

	snap := m.Snapshot()
	assert.Equal(t, StateDisconnected, snap.State)
	assert.False(t, snap.HasToken)
}

func TestStartWithCredentialChecksDetailedStatus(t *testing.T) {
	t.Run("connected instance", func(t *testing.T) {
		gw := &fakeGateway{
			status:   models.WhatsappStatus{Result: models.Ok(""), HasToken: true, Token: "inst-1"},
			detailed: []models.WhatsappDetailedStatus{{Result: models.Ok(""), Status: "connected"}},
		}
		m := newTestMachine(gw)

		m.Start(context.Background())

		assert.Equal(t, StateConnected, m.Snapshot().State)
	})

	t.Run("stale instance", func(t *testing.T) {
		gw := &fakeGateway{
			status:   models.WhatsappStatus{Result: models.Ok(""), HasToken: true, Token: "inst-1"},
			detailed: []models.WhatsappDetailedStatus{{Result: models.Ok(""), Status: "disconnected"}},
		}
		m := newTestMachine(gw)

		m.Start(context.Background())

		snap := m.Snapshot()
		assert.Equal(t, StateDisconnected, snap.State)
		assert.True(t, snap.HasToken)
	})
}

func TestConnectMovesToConnectingNeverStraightToConnected(t *testing.T) {
	gw := &fakeGateway{
		status:   models.WhatsappStatus{Result: models.Ok(""), HasToken: false},
		initiate: models.WhatsappConnection{Result: models.Ok(""), HasToken: true, Token: "inst-1", QRCode: "qr-1"},
		detailed: []models.WhatsappDetailedStatus{{Result: models.Ok(""), Status: "connecting"}},
	}
	m := newTestMachine(gw)
	m.Start(context.Background())

	snap := m.Connect(context.Background())

	assert.Equal(t, StateConnecting, snap.State)
	assert.Equal(t, "qr-1", snap.QRCode)
	m.Stop()
}

func TestConnectFailureStaysDisconnected(t *testing.T) {
	gw := &fakeGateway{
		status:   models.WhatsappStatus{Result: models.Ok(""), HasToken: false},
		initiate: models.WhatsappConnection{Result: models.Fail("Falha ao iniciar conexão")},
	}
	m := newTestMachine(gw)
	m.Start(context.Background())

	snap := m.Connect(context.Background())

	assert.Equal(t, StateDisconnected, snap.State)
	assert.Equal(t, "Falha ao iniciar conexão", snap.Message)
}

func TestPollTickConnectedStopsPolling(t *testing.T) {
	gw := &fakeGateway{
		status:   models.WhatsappStatus{Result: models.Ok(""), HasToken: false},
		initiate: models.WhatsappConnection{Result: models.Ok(""), HasToken: true, Token: "inst-1", QRCode: "qr-1"},
		detailed: []models.WhatsappDetailedStatus{
			{Result: models.Ok(""), Status: "connecting", QRCode: "qr-2"},
			{Result: models.Ok(""), Status: "connected"},
		},
	}
	m := newTestMachine(gw)
	m.Start(context.Background())
	m.Connect(context.Background())

	snap := waitForState(t, m, StateConnected)
	assert.Empty(t, snap.QRCode)
	m.Stop()
}

func TestPollTickRefreshesQRWhileConnecting(t *testing.T) {
	gw := &fakeGateway{
		status:   models.WhatsappStatus{Result: models.Ok(""), HasToken: false},
		initiate: models.WhatsappConnection{Result: models.Ok(""), HasToken: true, Token: "inst-1", QRCode: "qr-1"},
		detailed: []models.WhatsappDetailedStatus{
			{Result: models.Ok(""), Status: "connecting", QRCode: "qr-2"},
		},
	}
	m := newTestMachine(gw)
	m.Start(context.Background())
	m.Connect(context.Background())

	deadline := time.After(2 * time.Second)
	for m.Snapshot().QRCode != "qr-2" {
		select {
		case <-deadline:
			t.Fatal("QR code was never refreshed")
		case <-time.After(time.Millisecond):
		}
	}
	assert.Equal(t, StateConnecting, m.Snapshot().State)
	m.Stop()
}

func TestPollTickUnexpectedStatusDisconnects(t *testing.T) {
	gw := &fakeGateway{
		status:   models.WhatsappStatus{Result: models.Ok(""), HasToken: false},
		initiate: models.WhatsappConnection{Result: models.Ok(""), HasToken: true, Token: "inst-1", QRCode: "qr-1"},
		detailed: []models.WhatsappDetailedStatus{
			{Result: models.Ok(""), Status: "banned"},
		},
	}
	m := newTestMachine(gw)
	m.Start(context.Background())
	m.Connect(context.Background())

	snap := waitForState(t, m, StateDisconnected)
	assert.Contains(t, snap.Message, "banned")
}

func TestPollTickTransportErrorIsSwallowed(t *testing.T) {
	gw := &fakeGateway{
		status:   models.WhatsappStatus{Result: models.Ok(""), HasToken: false},
		initiate: models.WhatsappConnection{Result: models.Ok(""), HasToken: true, Token: "inst-1", QRCode: "qr-1"},
		detailed: []models.WhatsappDetailedStatus{
			{Result: models.ConnectionError()},
			{Result: models.ConnectionError()},
			{Result: models.Ok(""), Status: "connected"},
		},
	}
	m := newTestMachine(gw)
	m.Start(context.Background())
	m.Connect(context.Background())

	// Transient failures must not flap the UI into disconnected.
	waitForState(t, m, StateConnected)
	m.Stop()
}

func TestCancelStopsPollingAndDiscardsLateTicks(t *testing.T) {
	gw := &fakeGateway{
		status:   models.WhatsappStatus{Result: models.Ok(""), HasToken: false},
		initiate: models.WhatsappConnection{Result: models.Ok(""), HasToken: true, Token: "inst-1", QRCode: "qr-1"},
		detailed: []models.WhatsappDetailedStatus{
			{Result: models.Ok(""), Status: "connecting"},
		},
	}
	m := newTestMachine(gw)
	m.Start(context.Background())
	m.Connect(context.Background())

	snap := m.Cancel()

	assert.Equal(t, StateDisconnected, snap.State)
	assert.Empty(t, snap.QRCode)

	// Any in-flight tick resolves against a rotated generation and is
	// dropped: the state must not move.
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, StateDisconnected, m.Snapshot().State)
}

func TestDisconnectIsAlwaysSuccessful(t *testing.T) {
	gw := &fakeGateway{
		status: models.WhatsappStatus{Result: models.Ok(""), HasToken: true, Token: "inst-1"},
		detailed: []models.WhatsappDetailedStatus{
			{Result: models.Ok(""), Status: "connected"},
		},
	}
	m := newTestMachine(gw)
	m.Start(context.Background())
	require.Equal(t, StateConnected, m.Snapshot().State)

	snap := m.Disconnect(context.Background())

	assert.Equal(t, StateDisconnected, snap.State)
	assert.False(t, snap.HasToken)
	assert.Equal(t, 1, gw.disconnects)
}

func TestSubscribeStreamsTransitions(t *testing.T) {
	gw := &fakeGateway{
		status:   models.WhatsappStatus{Result: models.Ok(""), HasToken: false},
		initiate: models.WhatsappConnection{Result: models.Ok(""), HasToken: true, Token: "inst-1", QRCode: "qr-1"},
		detailed: []models.WhatsappDetailedStatus{
			{Result: models.Ok(""), Status: "connected"},
		},
	}
	m := newTestMachine(gw)
	m.Start(context.Background())

	ch := m.Subscribe()
	first := <-ch
	assert.Equal(t, StateDisconnected, first.State)

	m.Connect(context.Background())

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-ch:
			require.True(t, ok)
			if snap.State == StateConnected {
				m.Stop()
				return
			}
		case <-deadline:
			t.Fatal("never observed connected snapshot on the stream")
		}
	}
}
