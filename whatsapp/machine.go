// whatsapp/machine.go
package whatsapp

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/impulsohub/painel/models"
)

// State of a panel's messaging connection.
type State string

const (
	StateLoading      State = "loading"
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// Gateway is the slice of the messaging gateway the machine drives.
type Gateway interface {
	Status(ctx context.Context, token string) models.WhatsappStatus
	Initiate(ctx context.Context, token string) models.WhatsappConnection
	Connect(ctx context.Context, token string) models.WhatsappConnection
	DetailedStatus(ctx context.Context, token string) models.WhatsappDetailedStatus
	DisconnectInstance(ctx context.Context, token, instanceToken string) models.Result
}

// Snapshot is one observable moment of the machine, pushed to the panel.
type Snapshot struct {
	State    State  `json:"state"`
	QRCode   string `json:"qrCode,omitempty"`
	HasToken bool   `json:"hasToken"`
	Message  string `json:"message,omitempty"`
}

// Machine is the connection state machine behind one WhatsApp panel. It owns
// the only recurring scheduled work in the system: a fixed-interval poll of
// the provider's detailed status while a QR pairing is underway. At most one
// ticker runs per machine; starting a new poll loop always stops the previous
// one, and Stop cancels everything.
//
// Every asynchronous completion carries the generation captured when it was
// launched; a completion whose generation no longer matches is discarded, so
// a cancelled or superseded call can never overwrite newer state.
type Machine struct {
	mu         sync.Mutex
	state      State
	token      string // session bearer, forwarded upstream
	instance   string // instance credential held by the backend
	qr         string
	message    string
	generation string
	cancelPoll context.CancelFunc
	interval   time.Duration
	gw         Gateway
	log        zerolog.Logger
	subs       map[chan Snapshot]struct{}
	lastSeen   time.Time
}

// NewMachine builds a machine for one panel session.
func NewMachine(gw Gateway, token string, interval time.Duration, log zerolog.Logger) *Machine {
	return &Machine{
		state:    StateLoading,
		token:    token,
		interval: interval,
		gw:       gw,
		log:      log.With().Str("component", "whatsapp-machine").Logger(),
		subs:     make(map[chan Snapshot]struct{}),
		lastSeen: time.Now(),
	}
}

// Snapshot returns the current observable state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	return Snapshot{
		State:    m.state,
		QRCode:   m.qr,
		HasToken: m.instance != "",
		Message:  m.message,
	}
}

// Touch records panel activity; the janitor reaps machines idle too long.
func (m *Machine) Touch() {
	m.mu.Lock()
	m.lastSeen = time.Now()
	m.mu.Unlock()
}

// IdleSince reports the last panel activity.
func (m *Machine) IdleSince() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSeen
}

// Subscribe registers a snapshot stream for the panel. The channel receives
// the current snapshot immediately and every transition afterwards; slow
// consumers miss intermediate snapshots rather than blocking the machine.
func (m *Machine) Subscribe() chan Snapshot {
	ch := make(chan Snapshot, 8)
	m.mu.Lock()
	m.subs[ch] = struct{}{}
	snap := m.snapshotLocked()
	m.mu.Unlock()
	ch <- snap
	return ch
}

// Unsubscribe removes a stream registered with Subscribe.
func (m *Machine) Unsubscribe(ch chan Snapshot) {
	m.mu.Lock()
	delete(m.subs, ch)
	m.mu.Unlock()
}

func (m *Machine) broadcastLocked() {
	snap := m.snapshotLocked()
	for ch := range m.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// newGenerationLocked supersedes all outstanding async work.
func (m *Machine) newGenerationLocked() string {
	m.generation = uuid.NewString()
	return m.generation
}

// apply runs fn under the lock only if gen is still current, then broadcasts.
// Returns false when the completion was stale and dropped.
func (m *Machine) apply(gen string, fn func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		m.log.Debug().Str("generation", gen).Msg("dropping stale completion")
		return false
	}
	fn()
	m.broadcastLocked()
	return true
}

// Start performs the mount check: a cheap credential lookup, then a detailed
// status check when a credential exists. It blocks until the machine settles
// on connected or disconnected.
func (m *Machine) Start(ctx context.Context) {
	m.mu.Lock()
	m.state = StateLoading
	m.message = ""
	m.qr = ""
	gen := m.newGenerationLocked()
	m.broadcastLocked()
	m.mu.Unlock()

	status := m.gw.Status(ctx, m.token)
	if !status.Success {
		m.apply(gen, func() {
			m.state = StateDisconnected
			m.message = status.Message
		})
		return
	}
	if !status.HasToken || status.Token == "" {
		m.apply(gen, func() {
			m.state = StateDisconnected
			m.instance = ""
		})
		return
	}

	detailed := m.gw.DetailedStatus(ctx, m.token)
	m.apply(gen, func() {
		m.instance = status.Token
		if detailed.Success && detailed.Status == "connected" {
			m.state = StateConnected
			return
		}
		m.state = StateDisconnected
		if !detailed.Success {
			m.message = detailed.Message
		}
	})
}

// Connect initiates or resumes a pairing. From disconnected it moves to
// connecting only when the backend hands back a credential and a QR payload;
// on failure it stays disconnected with the error. It never jumps straight
// to connected, only a poll tick does that.
func (m *Machine) Connect(ctx context.Context) Snapshot {
	m.mu.Lock()
	if m.state == StateConnecting || m.state == StateConnected {
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap
	}
	m.stopPollingLocked()
	m.message = ""
	m.qr = ""
	hasInstance := m.instance != ""
	gen := m.newGenerationLocked()
	m.mu.Unlock()

	var conn models.WhatsappConnection
	if hasInstance {
		conn = m.gw.Connect(ctx, m.token)
	} else {
		conn = m.gw.Initiate(ctx, m.token)
	}

	m.apply(gen, func() {
		if !conn.Success {
			m.state = StateDisconnected
			m.message = conn.Message
			return
		}
		if conn.Token != "" {
			m.instance = conn.Token
		}
		if m.instance == "" || conn.QRCode == "" {
			m.state = StateDisconnected
			m.message = "Falha ao obter QR code para conexão"
			return
		}
		m.state = StateConnecting
		m.qr = conn.QRCode
		m.startPollingLocked()
	})
	return m.Snapshot()
}

// startPollingLocked launches the poll loop for the current generation.
// Caller holds the lock and has already rotated the generation.
func (m *Machine) startPollingLocked() {
	m.stopPollingLocked()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelPoll = cancel
	go m.pollLoop(ctx, m.generation)
}

func (m *Machine) stopPollingLocked() {
	if m.cancelPoll != nil {
		m.cancelPoll()
		m.cancelPoll = nil
	}
}

// pollLoop re-queries the detailed status at a fixed interval while the
// machine is connecting. Transport errors are logged and swallowed so a
// transient failure does not flap the UI; only a definitive status ends the
// loop.
func (m *Machine) pollLoop(ctx context.Context, gen string) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		detailed := m.gw.DetailedStatus(ctx, m.token)
		if !detailed.Success {
			if detailed.Message == models.MsgConnectionError {
				m.log.Warn().Str("reason", detailed.Message).Msg("poll tick failed, retrying")
				continue
			}
			// Definitive API failure: give up on this pairing.
			m.apply(gen, func() {
				m.state = StateDisconnected
				m.message = detailed.Message
				m.stopPollingLocked()
			})
			return
		}

		switch detailed.Status {
		case "connected":
			m.apply(gen, func() {
				m.state = StateConnected
				m.qr = ""
				m.stopPollingLocked()
			})
			return
		case "connecting":
			m.apply(gen, func() {
				if detailed.QRCode != "" {
					m.qr = detailed.QRCode
				}
			})
		default:
			m.apply(gen, func() {
				m.state = StateDisconnected
				m.message = "Status inesperado da conexão: " + detailed.Status
				m.stopPollingLocked()
			})
			return
		}
	}
}

// Cancel aborts a pairing in progress: polling stops and the machine resets
// to disconnected. Requests already in flight are not retracted; their late
// completions die on the generation check.
func (m *Machine) Cancel() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateConnecting {
		m.stopPollingLocked()
		m.newGenerationLocked()
		m.state = StateDisconnected
		m.qr = ""
		m.message = ""
		m.broadcastLocked()
	}
	return m.snapshotLocked()
}

// Disconnect tears the connection down from connected or connecting. The
// provider call is best-effort: whatever it answers, the machine lands on
// disconnected and the panel sees success.
func (m *Machine) Disconnect(ctx context.Context) Snapshot {
	m.mu.Lock()
	m.stopPollingLocked()
	m.newGenerationLocked()
	instance := m.instance
	m.mu.Unlock()

	res := m.gw.DisconnectInstance(ctx, m.token, instance)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateDisconnected
	m.qr = ""
	m.instance = ""
	m.message = res.Message
	m.broadcastLocked()
	return m.snapshotLocked()
}

// Stop releases the machine on panel teardown: polling cancelled, pending
// completions invalidated, subscribers closed.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopPollingLocked()
	m.newGenerationLocked()
	for ch := range m.subs {
		close(ch)
		delete(m.subs, ch)
	}
}
