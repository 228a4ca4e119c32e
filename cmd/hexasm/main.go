// hexasm reads a hand-assembled listing file and writes the assembled bytes
// to a binary file. Each listing line has the form:
//
//	XXXX OP A1 A2 ...
//
// where XXXX is a 4-hex-digit address (informational only - bytes are
// emitted sequentially, not seeked to) and OP/A1/A2/... are 2-hex-digit
// byte tokens, optionally followed by a tab-separated comment or a
// "(*)...": trailing annotation, which is ignored.
//
// This is the direct descendant of the teacher's hand_asm tool, rewritten
// to scan the listing itself instead of shelling out to egrep and sed.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/tsmith-dev/sixtyfiveoh/hexcode"
)

var offset = flag.Int("offset", 0x0000, "Offset to start writing assembled data. Everything prior is zero filled.")

func main() {
	flag.Parse()
	if len(flag.Args()) != 2 {
		log.Fatalf("Invalid command: %s <input> <output>", os.Args[0])
	}
	in, out := flag.Args()[0], flag.Args()[1]

	f, err := os.Open(in)
	if err != nil {
		log.Fatalf("can't open %q for input - %v", in, err)
	}
	defer f.Close()

	output := make([]uint8, *offset)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		t := scanner.Text()
		if !isListingLine(t) {
			continue
		}
		toks := strings.Fields(stripAnnotation(t))
		if len(toks) < 1 {
			continue
		}
		// toks[0] is the address field; the remainder are opcode/operand bytes.
		for _, tok := range toks[1:] {
			b, err := hexcode.DecodeBytes(tok)
			if err != nil || len(b) != 1 {
				log.Fatalf("can't process input line %d %q: %v", line, t, err)
			}
			output = append(output, b[0])
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("error scanning %q - %v", in, err)
	}

	of, err := os.Create(out)
	if err != nil {
		log.Fatalf("can't open output %q - %v", out, err)
	}
	defer of.Close()
	n, err := of.Write(output)
	if err != nil {
		log.Fatalf("error writing to %q - %v", out, err)
	}
	if got, want := n, len(output); got != want {
		log.Fatalf("short write to %q: got %d want %d", out, got, want)
	}
}

// isListingLine reports whether t begins with a 4-hex-digit address field,
// the marker the original tool located via "egrep ^[0-9A-F]{4}".
func isListingLine(t string) bool {
	if len(t) < 4 {
		return false
	}
	for _, r := range t[:4] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// stripAnnotation removes a trailing tab-delimited comment or a "(*)..."
// disassembly annotation, mirroring the original tool's two sed passes.
func stripAnnotation(t string) string {
	if i := strings.IndexByte(t, '\t'); i >= 0 {
		t = t[:i]
	}
	if i := strings.Index(t, "(*)"); i >= 0 {
		t = t[:i]
	}
	return t
}
