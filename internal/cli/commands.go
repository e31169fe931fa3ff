// Package cli implements the interactive console for Avista. It shows the
// switcher snapshot as tables and forwards simple control commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"

	"github.com/avista-project/avista/internal/config"
	"github.com/avista-project/avista/internal/events"
	"github.com/avista-project/avista/internal/protocol"
	"github.com/avista-project/avista/internal/state"
	"github.com/avista-project/avista/internal/switcher"
)

// CLI provides an interactive command-line interface.
type CLI struct {
	cfg      *config.Config
	eventBus *events.EventBus
	device   *switcher.Switcher
	in       io.Reader
	out      io.Writer
}

// NewCLI creates a console reading stdin and writing stdout.
func NewCLI(cfg *config.Config, eventBus *events.EventBus, device *switcher.Switcher) *CLI {
	return &CLI{
		cfg:      cfg,
		eventBus: eventBus,
		device:   device,
		in:       os.Stdin,
		out:      os.Stdout,
	}
}

// Start runs the read loop until ctx is done, input ends or the operator quits.
func (c *CLI) Start(ctx context.Context) {
	fmt.Fprintln(c.out, "\nAvista CLI ready. Type 'help' for available commands.")
	fmt.Fprintln(c.out, "─────────────────────────────────────────────────────")

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			log.Warn().Err(err).Msg("CLI: input closed")
		}
	}()

	for {
		fmt.Fprint(c.out, "avista> ")
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			parts := strings.Fields(line)
			if len(parts) == 0 {
				continue
			}
			quit, err := c.execute(ctx, strings.ToLower(parts[0]), parts[1:])
			if err != nil {
				fmt.Fprintf(c.out, "Error: %v\n", err)
			}
			if quit {
				return
			}
		}
	}
}

// execute runs one command and reports whether the console should exit.
func (c *CLI) execute(ctx context.Context, cmd string, args []string) (bool, error) {
	switch cmd {
	case "help", "h", "?":
		c.printHelp()
	case "status", "s":
		c.printStatus()
	case "mes":
		c.printMEs()
	case "tally":
		return false, c.printTally(args)
	case "sources":
		c.printSources()
	case "auxes":
		c.printAuxes()
	case "cut":
		return false, c.withME(args, c.device.Cut)
	case "auto":
		return false, c.withME(args, c.device.Auto)
	case "ftb":
		return false, c.withME(args, c.device.ToggleFadeToBlack)
	case "preview", "pvw":
		return false, c.withMESource(args, c.device.SetPreviewInput)
	case "program", "pgm":
		return false, c.withMESource(args, c.device.SetProgramInput)
	case "aux":
		return false, c.withMESource(args, c.device.SetAuxSource)
	case "macro":
		return false, c.cmdMacro(args)
	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Shutting down Avista...")
		c.eventBus.Emit(ctx, events.Event{
			Type:   events.EventShutdown,
			Source: "cli",
		})
		return true, nil
	default:
		fmt.Fprintf(c.out, "Unknown command: '%s'. Type 'help' for available commands.\n", cmd)
	}
	return false, nil
}

func (c *CLI) printHelp() {
	fmt.Fprintln(c.out, "\n╔══════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(c.out, "║                      Avista CLI Commands                     ║")
	fmt.Fprintln(c.out, "╠══════════════════════════════════════════════════════════════╣")
	fmt.Fprintln(c.out, "║  status              Show the connection summary            ║")
	fmt.Fprintln(c.out, "║  mes                 Show program and preview of every ME   ║")
	fmt.Fprintln(c.out, "║  tally [me]          Show tally, optionally for one ME      ║")
	fmt.Fprintln(c.out, "║  sources             List video sources                     ║")
	fmt.Fprintln(c.out, "║  auxes               Show aux outputs                       ║")
	fmt.Fprintln(c.out, "║  preview <me> <src>  Set the preview input                  ║")
	fmt.Fprintln(c.out, "║  program <me> <src>  Set the program input                  ║")
	fmt.Fprintln(c.out, "║  cut <me>            Cut                                    ║")
	fmt.Fprintln(c.out, "║  auto <me>           Auto transition                        ║")
	fmt.Fprintln(c.out, "║  ftb <me>            Toggle fade to black                   ║")
	fmt.Fprintln(c.out, "║  aux <n> <src>       Route a source to an aux output        ║")
	fmt.Fprintln(c.out, "║  macro <n>|stop      Run or stop a macro                    ║")
	fmt.Fprintln(c.out, "║  quit                Shutdown Avista                        ║")
	fmt.Fprintln(c.out, "╚══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(c.out)
}

func (c *CLI) newTable(header ...string) *tablewriter.Table {
	tw := tablewriter.NewWriter(c.out)
	tw.SetHeader(header)
	tw.SetBorder(true)
	tw.SetAutoWrapText(false)
	return tw
}

func (c *CLI) printStatus() {
	st := c.device.Status()
	fmt.Fprintf(c.out, "\n  Switcher:      %s\n", st.Name)
	fmt.Fprintf(c.out, "  Address:       %s\n", st.Address)
	fmt.Fprintf(c.out, "  State:         %s\n", st.State)
	fmt.Fprintf(c.out, "  Version:       %s\n", st.Version)
	fmt.Fprintf(c.out, "  Connection ID: %s\n", st.ConnectionID)
	fmt.Fprintf(c.out, "  Applied:       %d\n", st.Applied)
	if !st.LastChange.IsZero() {
		fmt.Fprintf(c.out, "  Last Change:   %s\n", st.LastChange.Format(time.RFC3339))
	}
	fmt.Fprintln(c.out)
}

// sourceLabel names a source by its short name when the switcher has sent one.
func sourceLabel(st *state.State, src protocol.VideoSource) string {
	if info, ok := st.Sources[src]; ok && info.ShortName != "" {
		return info.ShortName
	}
	return src.String()
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func (c *CLI) printMEs() {
	st := c.device.State()
	tw := c.newTable("ME", "Program", "Preview", "Transition", "Position", "FTB")
	for _, idx := range sortedKeys(st.MEs) {
		me := st.MEs[idx]
		style, position := "-", "-"
		if me.Transition != nil {
			style = me.Transition.Style.String()
			position = fmt.Sprintf("%d", me.Transition.Position.Position)
		}
		ftb := "-"
		if me.FadeToBlack != nil && me.FadeToBlack.State != nil {
			ftb = strconv.FormatBool(me.FadeToBlack.State.FullyBlack)
		}
		tw.Append([]string{
			strconv.Itoa(idx),
			sourceLabel(st, me.Program),
			sourceLabel(st, me.Preview),
			style,
			position,
			ftb,
		})
	}
	tw.Render()
}

func (c *CLI) printTally(args []string) error {
	st := c.device.State()
	if st.Tally == nil {
		fmt.Fprintln(c.out, "No tally yet")
		return nil
	}

	mes := sortedKeys(st.Tally.ByME)
	if len(args) > 0 {
		me, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ME: %s", args[0])
		}
		if st.Tally.ByME[me] == nil {
			return fmt.Errorf("no tally for ME %d", me)
		}
		mes = []int{me}
	}

	tw := c.newTable("ME", "Source", "Program", "Preview")
	for _, me := range mes {
		flags := st.Tally.ByME[me]
		sources := make([]protocol.VideoSource, 0, len(flags))
		for src := range flags {
			sources = append(sources, src)
		}
		sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
		for _, src := range sources {
			f := flags[src]
			tw.Append([]string{
				strconv.Itoa(me),
				sourceLabel(st, src),
				strconv.FormatBool(f.Program),
				strconv.FormatBool(f.Preview),
			})
		}
	}
	tw.Render()
	return nil
}

func (c *CLI) printSources() {
	st := c.device.State()
	ids := make([]protocol.VideoSource, 0, len(st.Sources))
	for id := range st.Sources {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tw := c.newTable("ID", "Short", "Name", "Port")
	for _, id := range ids {
		src := st.Sources[id]
		tw.Append([]string{
			strconv.Itoa(int(id)),
			src.ShortName,
			src.Name,
			src.InternalPortType.String(),
		})
	}
	tw.Render()
}

func (c *CLI) printAuxes() {
	st := c.device.State()
	tw := c.newTable("Aux", "Source")
	for _, idx := range sortedKeys(st.Auxes) {
		tw.Append([]string{strconv.Itoa(idx), sourceLabel(st, st.Auxes[idx].Source)})
	}
	tw.Render()
}

func (c *CLI) withME(args []string, op func(int) error) error {
	if len(args) < 1 {
		return fmt.Errorf("ME index required")
	}
	me, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid ME: %s", args[0])
	}
	if err := op(me); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Sent")
	return nil
}

func (c *CLI) withMESource(args []string, op func(int, protocol.VideoSource) error) error {
	if len(args) < 2 {
		return fmt.Errorf("index and source required")
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index: %s", args[0])
	}
	src, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		return fmt.Errorf("invalid source: %s", args[1])
	}
	if err := op(idx, protocol.VideoSource(src)); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Sent")
	return nil
}

func (c *CLI) cmdMacro(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: macro <index>|stop")
	}
	if args[0] == "stop" {
		return c.device.StopMacro()
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid macro: %s", args[0])
	}
	if err := c.device.RunMacro(index); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Macro %d started\n", index)
	return nil
}
