// sixtyfiveoh is the interactive driver: it loads a hex-encoded program,
// then accepts single-letter commands to step, run to the next BRK, raise
// interrupts, and inspect registers and memory. It is the text-console
// analogue of the original graphical control panel.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/tsmith-dev/sixtyfiveoh/cpu"
	"github.com/tsmith-dev/sixtyfiveoh/disassemble"
	"github.com/tsmith-dev/sixtyfiveoh/hexcode"
)

var (
	program = flag.String("program", "", "Hex-encoded program bytes to load at the default load address (0x8000).")
	strict  = flag.Bool("strict", false, "Run in strict cycle-accurate mode: unknown/unofficial opcodes are fatal instead of treated as NOP.")
)

func main() {
	flag.Parse()

	var opts []cpu.Option
	if *strict {
		opts = append(opts, cpu.Strict())
	}
	c := cpu.New(0x8000, opts...)

	if *program != "" {
		buf, err := hexcode.DecodeBytes(*program)
		if err != nil {
			log.Fatalf("-program: %v", err)
		}
		if err := c.Load(buf); err != nil {
			log.Fatalf("load: %v", err)
		}
		c.Reset()
	}

	fmt.Println("sixtyfiveoh interactive driver. Type 'h' for help.")
	printRegisters(c)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		if err := dispatch(c, strings.TrimSpace(scanner.Text())); err != nil {
			fmt.Println(err)
		}
	}
}

func dispatch(c *cpu.Chip, line string) error {
	if line == "" {
		return nil
	}
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "h", "help":
		printHelp()
	case "s", "step":
		return doStep(c)
	case "r", "run":
		return doRun(c)
	case "reg", "registers":
		printRegisters(c)
	case "m", "mem":
		return doMem(c, fields[1:])
	case "load":
		return doLoad(c, fields[1:])
	case "irq":
		c.IRQ()
		printRegisters(c)
	case "nmi":
		c.NMI()
		printRegisters(c)
	case "reset":
		c.Reset()
		printRegisters(c)
	case "q", "quit":
		os.Exit(0)
	default:
		fmt.Printf("unknown command %q, type 'h' for help\n", fields[0])
	}
	return nil
}

func doStep(c *cpu.Chip) error {
	line := disassemble.StepFromChip(c)
	n, err := c.Step()
	if err != nil {
		return err
	}
	fmt.Printf("%s  (%d cycles)\n", line, n)
	printRegisters(c)
	return nil
}

func doRun(c *cpu.Chip) error {
	if err := c.RunUntilBRK(); err != nil {
		return err
	}
	fmt.Println("stopped at BRK")
	printRegisters(c)
	return nil
}

func doLoad(c *cpu.Chip, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: load <hex bytes>")
	}
	buf, err := hexcode.DecodeBytes(args[0])
	if err != nil {
		return err
	}
	if err := c.Load(buf); err != nil {
		return err
	}
	c.Reset()
	printRegisters(c)
	return nil
}

func doMem(c *cpu.Chip, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: mem <start addr> <end addr>")
	}
	start := hexcode.DecodeAddr(args[0])
	end := hexcode.DecodeAddr(args[1])
	buf := c.Slice(start, end)
	fmt.Printf("%.4X: %s\n", start, hexcode.EncodeBytes(buf))
	return nil
}

func printRegisters(c *cpu.Chip) {
	fmt.Printf("PC:$%.4X A:$%.2X X:$%.2X Y:$%.2X S:$%.2X P:%s cycles:%d\n",
		c.PC, c.A, c.X, c.Y, c.S, flagString(c.P), c.Cycles())
}

func flagString(p uint8) string {
	bits := []struct {
		mask uint8
		ch   byte
	}{
		{cpu.FlagN, 'N'}, {cpu.FlagV, 'V'}, {cpu.FlagU, '_'}, {cpu.FlagB, 'B'},
		{cpu.FlagD, 'D'}, {cpu.FlagI, 'I'}, {cpu.FlagZ, 'Z'}, {cpu.FlagC, 'C'},
	}
	var b strings.Builder
	for _, f := range bits {
		if p&f.mask != 0 {
			b.WriteByte(f.ch)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func printHelp() {
	fmt.Println(`commands:
  s, step            execute one instruction
  r, run             run until BRK (stops before executing it)
  reg, registers      print register state
  m, mem <a> <b>     print memory from address a to b (4 hex digits each)
  load <hex>         load a new hex-encoded program and reset
  irq                raise a maskable interrupt
  nmi                raise a non-maskable interrupt
  reset              run the RESET sequence
  q, quit            exit`)
}
