package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/avista-project/avista/internal/command"
	"github.com/avista-project/avista/internal/events"
	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/switcher"
)

type stubTransport struct {
	sent []command.Command
}

func (t *stubTransport) Send(cmd command.Command) error {
	t.sent = append(t.sent, cmd)
	return nil
}

func (t *stubTransport) Version() protocol.Version { return protocol.Version811 }

func newTestCLI(t *testing.T, input string) (*CLI, *stubTransport, *bytes.Buffer) {
	t.Helper()
	bus := events.NewEventBus()
	t.Cleanup(bus.Stop)

	tr := &stubTransport{}
	device := switcher.New(switcher.Options{Name: "studio"}, tr, bus)
	device.HandleCommands([]command.Command{
		&command.InputProperties{ID: protocol.VideoInput1, Name: "Camera 1", ShortName: "CAM1"},
		&command.InputProperties{ID: protocol.VideoInput2, Name: "Camera 2", ShortName: "CAM2"},
		&command.ProgramInput{Index: 0, Source: protocol.VideoInput1},
		&command.PreviewInput{Index: 0, Source: protocol.VideoInput2},
	})

	out := &bytes.Buffer{}
	c := NewCLI(nil, bus, device)
	c.in = strings.NewReader(input)
	c.out = out
	return c, tr, out
}

func TestCLI_Tables(t *testing.T) {
	c, _, out := newTestCLI(t, "mes\ntally 0\nsources\n")
	c.Start(context.Background())

	got := out.String()
	for _, want := range []string{"CAM1", "CAM2", "Camera 1", "PROGRAM", "PREVIEW"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestCLI_Control(t *testing.T) {
	c, tr, out := newTestCLI(t, "program 0 2\naux 1 3\nmacro 4\ncut x\nquit\ncut 0\n")
	c.Start(context.Background())

	if len(tr.sent) != 3 {
		t.Fatalf("sent %d commands, want 3", len(tr.sent))
	}
	if pgm, ok := tr.sent[0].(*command.SetProgramInput); !ok || pgm.Source != protocol.VideoInput2 {
		t.Errorf("first command = %#v", tr.sent[0])
	}
	if _, ok := tr.sent[1].(*command.SetAuxSource); !ok {
		t.Errorf("second command = %#v", tr.sent[1])
	}
	if !strings.Contains(out.String(), "invalid ME: x") {
		t.Errorf("missing parse error:\n%s", out.String())
	}
}

func TestCLI_UnknownCommand(t *testing.T) {
	c, _, out := newTestCLI(t, "bogus\n")
	c.Start(context.Background())
	if !strings.Contains(out.String(), "Unknown command: 'bogus'") {
		t.Errorf("output = %s", out.String())
	}
}
