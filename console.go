package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/c-bata/go-prompt"
)

var errQuit = errors.New("quit")

// Console is a line oriented control surface. Lines look like
//
//	cutoff = 0.4
//	cutoff 0.4
//	note(60, 100)
//	release
type Console struct {
	panel *Panel
	keys  *KeyStack
	synth *Eris
	out   io.Writer

	arp     *Arp
	stopArp context.CancelFunc
}

func NewConsole(panel *Panel, keys *KeyStack, synth *Eris, out io.Writer) *Console {
	return &Console{
		panel: panel,
		keys:  keys,
		synth: synth,
		out:   out,
		arp:   NewArp(keys, arpNoteSize),
	}
}

// the console arp steps in eighths
const (
	arpNoteSize = 8
	arpMinDiv   = 8
)

var consoleCommands = []prompt.Suggest{
	{Text: "note", Description: "note(n, velocity) press a key"},
	{Text: "off", Description: "off(n) lift a key"},
	{Text: "release", Description: "let go of every key"},
	{Text: "arp", Description: "arp bpm n1 n2 ... cycle notes, arp alone stops"},
	{Text: "show", Description: "print the panel"},
	{Text: "exit", Description: "leave the console"},
}

func (c *Console) completer(d prompt.Document) []prompt.Suggest {
	s := append([]prompt.Suggest(nil), consoleCommands...)
	for _, n := range controlNames() {
		s = append(s, prompt.Suggest{Text: n})
	}
	return prompt.FilterHasPrefix(s, d.GetWordBeforeCursor(), true)
}

// Run reads lines until exit. It blocks on the terminal and returns errQuit
// when the user leaves.
func (c *Console) Run() error {
	for {
		t := prompt.Input("> ", c.completer)
		if err := c.ProcessCmd(t); err != nil {
			if errors.Is(err, errQuit) {
				return err
			}
			fmt.Fprintln(c.out, "ERROR: ", err)
		}
	}
}

func (c *Console) ProcessCmd(cmdl string) error {
	tokens, err := tokenize(cmdl)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	name := tokens[0]
	var args []string
	switch {
	case len(tokens) > 1 && tokens[1] == "=":
		args = tokens[2:]
	case len(tokens) > 1 && tokens[1] == "(":
		args, err = scanArgs(tokens[1:])
		if err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}
	default:
		args = tokens[1:]
	}

	nums := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("argument %d of %s: %w", i, name, err)
		}
		nums[i] = v
	}

	switch name {
	case "exit", "quit":
		c.arpOff()
		return errQuit
	case "arp":
		return c.arpCmd(nums)
	case "show":
		c.show()
		return nil
	case "release":
		c.arpOff()
		c.keys.Reset()
		return nil
	case "note":
		if len(nums) == 0 {
			return fmt.Errorf("note needs a key number")
		}
		vel := 100.0
		if len(nums) > 1 {
			vel = nums[1]
		}
		c.keys.Press(int(nums[0]), int(vel))
		return nil
	case "off":
		if len(nums) == 0 {
			return fmt.Errorf("off needs a key number")
		}
		c.keys.Lift(int(nums[0]))
		return nil
	}

	if len(nums) != 1 {
		return fmt.Errorf("%s takes one value, got %d", name, len(nums))
	}
	return c.panel.Set(name, nums[0])
}

func (c *Console) arpCmd(args []float64) error {
	c.arpOff()
	if len(args) == 0 {
		return nil
	}
	if len(args) < 2 {
		return fmt.Errorf("arp needs a tempo and at least one note")
	}

	notes := make([]int, len(args)-1)
	for i, v := range args[1:] {
		notes[i] = int(v)
	}
	arp := NewArp(c.keys, arpNoteSize)
	arp.SetNotes(notes)
	c.arp = arp

	clock := NewClock(int(args[0]), arpMinDiv)
	ctx, cancel := context.WithCancel(context.Background())
	c.stopArp = cancel
	go func() {
		if err := clock.Run(ctx, arp); err != nil {
			fmt.Fprintln(c.out, "ERROR: ", err)
		}
		arp.Stop()
	}()
	return nil
}

func (c *Console) arpOff() {
	if c.stopArp != nil {
		c.stopArp()
		c.stopArp = nil
	}
}

func (c *Console) show() {
	for k := Knob(0); k < numKnobs; k++ {
		fmt.Fprintf(c.out, "%-8s %.3f\n", k, c.panel.Knob(k))
	}
	for sw := Switch(0); sw < numSwitches; sw++ {
		fmt.Fprintf(c.out, "%-8s %v\n", sw, c.panel.Switch(sw))
	}
	car, mod := c.synth.Activity()
	fmt.Fprintf(c.out, "env      %s\n", c.synth.EnvState())
	fmt.Fprintf(c.out, "note     %.2fHz\n", c.synth.ActiveNote())
	fmt.Fprintf(c.out, "leds     %d %d\n", ledLevel(car), ledLevel(mod))
	if held := c.keys.Held(); len(held) > 0 {
		names := make([]string, len(held))
		for i, n := range held {
			names[i] = noteToString(n)
		}
		fmt.Fprintf(c.out, "held     %s\n", strings.Join(names, " "))
	}
	if c.stopArp != nil {
		fmt.Fprintf(c.out, "arp      %v\n", c.arp.Notes())
	}
}

// scanArgs splits "( a, b, c )" into its arguments.
func scanArgs(tokens []string) ([]string, error) {
	if len(tokens) == 0 || tokens[0] != "(" {
		return nil, fmt.Errorf("expected %q at beginning of sequence", "(")
	}

	var out []string
	expectArg := true
	for _, t := range tokens[1:] {
		switch t {
		case ")":
			if !expectArg || len(out) == 0 {
				return out, nil
			}
			return nil, fmt.Errorf("empty argument at index %d", len(out))
		case ",":
			if expectArg {
				return nil, fmt.Errorf("empty argument at index %d", len(out))
			}
			expectArg = true
		default:
			if !expectArg {
				return nil, fmt.Errorf("missing comma before %q", t)
			}
			out = append(out, t)
			expectArg = false
		}
	}
	return nil, fmt.Errorf("missing close sigil")
}

func tokenize(s string) ([]string, error) {
	var out []string
	var wordstart int
	inword := false
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch {
		case unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]),
			runes[i] == '.', runes[i] == '-', runes[i] == '+':
			if !inword {
				inword = true
				wordstart = i
			}
		case unicode.IsSpace(runes[i]):
			if inword {
				out = append(out, string(runes[wordstart:i]))
				inword = false
			}
		case runes[i] == '=',
			runes[i] == ',',
			runes[i] == '(',
			runes[i] == ')':
			if inword {
				out = append(out, string(runes[wordstart:i]))
				inword = false
			}
			out = append(out, string(runes[i]))
		default:
			return nil, fmt.Errorf("invalid character at index %d: %q", i, runes[i])
		}
	}
	if inword {
		out = append(out, string(runes[wordstart:]))
	}

	return out, nil
}
