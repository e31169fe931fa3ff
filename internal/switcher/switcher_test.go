package switcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/avista-project/avista/internal/command"
	"github.com/avista-project/avista/internal/events"
	"github.com/avista-project/avista/internal/network"
	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
)

type fakeTransport struct {
	mu      sync.Mutex
	sent    []command.Command
	version protocol.Version
	err     error
}

func (f *fakeTransport) Send(cmd command.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, cmd)
	return nil
}

func (f *fakeTransport) Version() protocol.Version { return f.version }

func (f *fakeTransport) last(t *testing.T) command.Command {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("nothing sent")
	}
	return f.sent[len(f.sent)-1]
}

type keyRecorder struct {
	mu   sync.Mutex
	keys []string
	ids  []string
}

func (r *keyRecorder) handle(_ context.Context, e events.Event) error {
	p := e.Payload.(events.StateChangedPayload)
	r.mu.Lock()
	r.keys = append(r.keys, p.Key)
	r.ids = append(r.ids, p.ConnectionID)
	r.mu.Unlock()
	return nil
}

func newTestSwitcher(t *testing.T, tr *fakeTransport) (*Switcher, *keyRecorder) {
	t.Helper()
	bus := events.NewEventBus()
	t.Cleanup(bus.Stop)

	rec := &keyRecorder{}
	bus.Subscribe(events.EventStateChanged, "recorder", rec.handle)

	sw := New(Options{Name: "studio", Address: "10.0.0.50:9910"}, tr, bus)
	sw.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return sw, rec
}

func TestSwitcher_FlushPublishesChangedKeys(t *testing.T) {
	sw, rec := newTestSwitcher(t, &fakeTransport{})

	sw.HandleCommands([]command.Command{
		&command.ProgramInput{Index: 0, Source: protocol.VideoSource(1)},
		&command.PreviewInput{Index: 0, Source: protocol.VideoSource(2)},
		&command.AuxSource{Index: 0, Source: protocol.VideoSource(3)},
	})

	if n := sw.Flush(context.Background()); n != 3 {
		t.Fatalf("flushed %d keys", n)
	}
	want := []string{string(state.KeyMEs), string(state.KeyTally), string(state.KeyAuxes)}
	if len(rec.keys) != len(want) {
		t.Fatalf("keys = %v", rec.keys)
	}
	for i := range want {
		if rec.keys[i] != want[i] {
			t.Errorf("keys[%d] = %s, want %s", i, rec.keys[i], want[i])
		}
	}

	if n := sw.Flush(context.Background()); n != 0 {
		t.Errorf("second flush published %d keys", n)
	}

	st := sw.Status()
	if st.Applied != 3 || st.LastChange.IsZero() {
		t.Errorf("status = %+v", st)
	}
}

func TestSwitcher_ReconnectResetsState(t *testing.T) {
	sw, rec := newTestSwitcher(t, &fakeTransport{})

	sw.HandleStateChange(network.StateAwaitingHello)
	firstID := sw.Status().ConnectionID
	sw.HandleStateChange(network.StateConnected)
	sw.HandleCommands([]command.Command{&command.AuxSource{Index: 0, Source: protocol.VideoSource(3)}})
	sw.Flush(context.Background())

	before := sw.State()
	if len(before.Auxes) != 1 {
		t.Fatalf("auxes = %v", before.Auxes)
	}

	sw.HandleStateChange(network.StateDisconnected)
	sw.HandleStateChange(network.StateAwaitingHello)

	if len(sw.State().Auxes) != 0 {
		t.Error("snapshot not reset on new handshake")
	}
	if len(before.Auxes) != 1 {
		t.Error("previous snapshot modified")
	}
	if sw.Status().ConnectionID == firstID {
		t.Error("connection id not renewed")
	}
	if rec.ids[0] != firstID {
		t.Errorf("flush used connection %s, want %s", rec.ids[0], firstID)
	}
}

func TestSwitcher_ControlSendsCommands(t *testing.T) {
	tr := &fakeTransport{}
	sw, _ := newTestSwitcher(t, tr)

	if err := sw.SetProgramInput(1, protocol.VideoSource(4)); err != nil {
		t.Fatal(err)
	}
	got, ok := tr.last(t).(*command.SetProgramInput)
	if !ok || got.Index != 1 || got.Source != 4 {
		t.Errorf("sent %#v", tr.last(t))
	}

	if err := sw.SetTransitionPosition(0, 5000); err != nil {
		t.Fatal(err)
	}
	if pos := tr.last(t).(*command.SetTransitionPosition); pos.Position != 5000 {
		t.Errorf("position = %d", pos.Position)
	}

	if err := sw.RunMacro(7); err != nil {
		t.Fatal(err)
	}
	if m := tr.last(t).(*command.MacroControl); m.Index != 7 || m.Action != protocol.MacroRun {
		t.Errorf("macro = %+v", m)
	}

	src := protocol.AudioInput(1)
	if err := sw.ResetInputAudioPeaks(src); err != nil {
		t.Fatal(err)
	}
	if r := tr.last(t).(*command.ResetAudioPeaks); r.Input == nil || *r.Input != src || r.Master {
		t.Errorf("reset = %+v", r)
	}
}

func TestSwitcher_ControlValidatesIndices(t *testing.T) {
	tr := &fakeTransport{}
	sw, _ := newTestSwitcher(t, tr)

	tests := []struct {
		name string
		call func() error
	}{
		{"negative me", func() error { return sw.Cut(-1) }},
		{"me too large", func() error { return sw.Auto(256) }},
		{"position", func() error { return sw.SetTransitionPosition(0, 10001) }},
		{"keyer", func() error { return sw.SetKeyerOnAir(0, 300, true) }},
		{"macro", func() error { return sw.RunMacro(70000) }},
		{"empty properties", func() error { return sw.SetTransitionProperties(0, nil, nil) }},
		{"empty super source", func() error { return sw.SetSuperSourceProperties(0, SuperSourceChange{}) }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("err = %v", err)
			}
		})
	}
	if len(tr.sent) != 0 {
		t.Errorf("sent %d commands for invalid calls", len(tr.sent))
	}
}

func TestSwitcher_SuperSourceByVersion(t *testing.T) {
	fill := protocol.VideoSource(2)
	tr := &fakeTransport{version: protocol.Version{Major: 2, Minor: 27}}
	sw, _ := newTestSwitcher(t, tr)

	if err := sw.SetSuperSourceProperties(0, SuperSourceChange{FillSource: &fill}); err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.last(t).(*command.SetSuperSource); !ok {
		t.Errorf("2.27 sent %T", tr.last(t))
	}
	if err := sw.SetSuperSourceProperties(1, SuperSourceChange{FillSource: &fill}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("second super source on 2.27: %v", err)
	}

	width := uint16(40)
	if err := sw.SetSuperSourceBorder(0, BorderChange{OuterWidth: &width}); err != nil {
		t.Fatal(err)
	}
	if c, ok := tr.last(t).(*command.SetSuperSource); !ok || *c.OuterWidth != 40 {
		t.Errorf("2.27 border sent %#v", tr.last(t))
	}

	tr.version = protocol.Version811
	if err := sw.SetSuperSourceProperties(1, SuperSourceChange{FillSource: &fill}); err != nil {
		t.Fatal(err)
	}
	if c, ok := tr.last(t).(*command.SetSuperSourceV8); !ok || c.ID != 1 {
		t.Errorf("2.30 sent %#v", tr.last(t))
	}
	if err := sw.SetSuperSourceBorder(1, BorderChange{OuterWidth: &width}); err != nil {
		t.Fatal(err)
	}
	if c, ok := tr.last(t).(*command.SetSuperSourceBorder); !ok || c.ID != 1 {
		t.Errorf("2.30 border sent %#v", tr.last(t))
	}
}

func TestSwitcher_SendErrorsReported(t *testing.T) {
	tr := &fakeTransport{err: network.ErrNotConnected}
	sw, _ := newTestSwitcher(t, tr)

	done := make(chan events.CommandSentPayload, 1)
	sw.bus.Subscribe(events.EventCommandSent, "test.sent", func(_ context.Context, e events.Event) error {
		done <- e.Payload.(events.CommandSentPayload)
		return nil
	})

	if err := sw.Cut(0); !errors.Is(err, network.ErrNotConnected) {
		t.Fatalf("err = %v", err)
	}
	select {
	case p := <-done:
		if p.Tag != "DCut" || p.Error == "" {
			t.Errorf("payload = %+v", p)
		}
	case <-time.After(time.Second):
		t.Fatal("no command event")
	}

	sw.SetTransport(nil)
	if err := sw.Cut(0); !errors.Is(err, ErrNoTransport) {
		t.Errorf("err = %v", err)
	}
}
