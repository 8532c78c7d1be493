package nes

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/golang/glog"
)

// DebugConsole a NES console for debugging, you can execute some commands through stdio.
// commands:
//
//	s [n|ns|nd]:
//	  execute step(s), n instructions, n seconds or n instructions printing each.
//	p [c|p|ca|ct|wr|vr|st]:
//	  print.
//	t:
//	  print the trace line of the next instruction.
//	br 0xNNNN:
//	  set a break point.
//	w:
//	  walk, one instruction per key press, any other key than space stops.
//	viz file:
//	  write a graphviz dot of the console memory.
//	q:
//	  quit.
//	r:
//	  reset.
type DebugConsole struct {
	*Console
	cycles      uint64
	breakpoints []uint16
	in          *bufio.Reader
	out         io.Writer
}

// errQuit is returned by StepFrame after the q command.
var errQuit = errors.New("debugger: quit")

// NewDebugConsole creates a console driven by commands read from stdin.
func NewDebugConsole(rom []byte, opts ...Option) (*DebugConsole, error) {
	console, err := NewConsole(rom, opts...)
	if err != nil {
		return nil, err
	}
	return &DebugConsole{
		Console: console,
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// IsQuit reports whether err comes from the quit command.
func IsQuit(err error) bool {
	return errors.Is(err, errQuit)
}

func (c *DebugConsole) Reset() {
	c.cycles = 0
	c.Console.Reset()
}

func (c *DebugConsole) step() (int, error) {
	cycles, err := c.Console.Step()
	c.cycles += uint64(cycles)
	return cycles, err
}

func (c *DebugConsole) printstack() {
	for i := 0; i < 256; i++ {
		idx := uint16(0x100 | i)
		fmt.Fprintf(c.out, "0x%04x: 0x%02x, ", idx, c.bus.peek(idx))
		if i%16 == 15 {
			fmt.Fprintln(c.out)
		}
	}
}

func (c *DebugConsole) basePrint() {
	fmt.Fprintln(c.out, "--------------------------------------------------")
	fmt.Fprintf(c.out, "Executed cycles: %d\n", c.cycles)
	fmt.Fprintf(c.out, "Rendered frame: %d\n", c.currentFrame)
	fmt.Fprintln(c.out, "Last: "+c.cpu.lastExecution)
	fmt.Fprintln(c.out, c.Snapshot())
}

func (c *DebugConsole) printCommand(args []string) {
	if len(args) < 2 {
		c.basePrint()
		return
	}
	switch args[1] {
	case "c", "cpu":
		fmt.Fprintln(c.out, c.cpu.snapshot())
	case "p", "ppu":
		fmt.Fprintln(c.out, c.ppu.snapshot())
	case "ca", "cartridge":
		ca := c.cartridge
		fmt.Fprintf(c.out, "mapper=%d, PRG=%dKB, CHR=%dKB, CHR RAM=%t, mirroring=%v, battery=%t\n",
			ca.Mapper(), len(ca.prgROM)/1024, len(ca.chr)/1024, ca.HasCHRRAM(), ca.Mirroring(), ca.Battery())
	case "ct", "controller":
		for i, ct := range c.controllers {
			fmt.Fprintf(c.out, "%dP: %08b\n", i+1, ct.Bits())
		}
	case "wr", "wram":
		fmt.Fprintf(c.out, "%x\n", c.bus.wram.data)
	case "vr", "vram":
		fmt.Fprintf(c.out, "%x\n", c.ppu.bus.vram.data)
	case "st", "stack":
		c.printstack()
	}
}

func (c *DebugConsole) checkBreak() bool {
	for _, br := range c.breakpoints {
		if br == c.cpu.pc {
			fmt.Fprintf(c.out, "Break at: 0x%04x\n", br)
			return true
		}
	}
	return false
}

func (c *DebugConsole) stepCommand(args []string) (int, error) {
	if len(args) < 2 {
		return c.step()
	}
	re := regexp.MustCompile("^([0-9]+)")
	if !re.MatchString(args[1]) {
		return 0, fmt.Errorf("invalid step count: %s", args[1])
	}
	num, _ := strconv.Atoi(re.FindString(args[1]))
	unit := args[1][len(args[1])-1]
	cycles := 0
	switch unit {
	case 's':
		// s means seconds but this doesn't execute 1 sec, this executes CPUFrequency * num
		// This will be 60 * num frames execution.
		steps := CPUFrequency * num
		for cycles < steps {
			v, err := c.step()
			if err != nil {
				return cycles, err
			}
			cycles += v
			if c.checkBreak() {
				return cycles, nil
			}
		}
	case 'd':
		// debug -> steps with debug messages.
		for i := 0; i < num; i++ {
			v, err := c.step()
			c.basePrint()
			if err != nil {
				return cycles, err
			}
			cycles += v
			if c.checkBreak() {
				return cycles, nil
			}
		}
	default: // no unit -> step
		for i := 0; i < num; i++ {
			v, err := c.step()
			if err != nil {
				return cycles, err
			}
			cycles += v
			if c.checkBreak() {
				return cycles, nil
			}
		}
	}
	return cycles, nil
}

func (c *DebugConsole) breakPointCommand(args []string) error {
	if len(args) < 2 {
		return errors.New("br needs an address, e.g. br 0xc000")
	}
	i, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(args[1]), "0x"), 16, 16)
	if err != nil {
		return fmt.Errorf("invalid break point %q: %w", args[1], err)
	}
	c.breakpoints = append(c.breakpoints, uint16(i))
	return nil
}

// vizCommand writes the console object graph as a graphviz dot file.
func (c *DebugConsole) vizCommand(args []string) error {
	if len(args) < 2 {
		return errors.New("viz needs an output file")
	}
	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer f.Close()
	memviz.Map(f, c.Console)
	glog.Infof("Wrote memory graph to %s", args[1])
	return nil
}

// walkCommand reads stdin one key at a time while walking.
func (c *DebugConsole) walkCommand() error {
	restore, err := cbreakMode(os.Stdin)
	if err != nil {
		fmt.Fprintln(c.out, err)
		return nil
	}
	defer restore()
	return c.walk()
}

// walk steps once per space key, any other key stops.
func (c *DebugConsole) walk() error {
	fmt.Fprintln(c.out, "Walking, space to step, any other key to stop.")
	for {
		fmt.Fprintln(c.out, c.Trace())
		key, err := c.in.ReadByte()
		if err != nil {
			return err
		}
		if key != ' ' {
			return nil
		}
		if _, err := c.step(); err != nil {
			return err
		}
		if c.checkBreak() {
			return nil
		}
	}
}

// StepFrame reads and executes one command, it does not necessarily complete a frame.
func (c *DebugConsole) StepFrame() error {
	fmt.Fprintf(c.out, "Debugger mode, 'q' to quit \n>> ")
	line, err := c.in.ReadString('\n')
	if err != nil {
		return err
	}
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "p", "print":
		c.printCommand(args)
	case "t", "trace":
		fmt.Fprintln(c.out, c.Trace())
	case "s", "step":
		cycles, err := c.stepCommand(args)
		c.basePrint() // Print data before it die.
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Executed %d CPU cycles, %d PPU cycles.\n", cycles, 3*cycles)
	case "br", "breakpoint":
		if err := c.breakPointCommand(args); err != nil {
			fmt.Fprintln(c.out, err)
		}
	case "w", "walk":
		if err := c.walkCommand(); err != nil {
			return err
		}
	case "viz":
		if err := c.vizCommand(args); err != nil {
			fmt.Fprintln(c.out, err)
		}
	case "r", "reset":
		c.Reset()
	case "q", "quit":
		fmt.Fprintln(c.out, "Quitting.")
		return errQuit
	default:
		fmt.Fprintf(c.out, "Unknown command %s\n", args[0])
	}
	return nil
}
