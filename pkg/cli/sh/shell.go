// Package sh provides an interactive shell driving a decoder.
package sh

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/ht12d/pkg/ht12e"
	"github.com/robotalks/ht12d/pkg/receiver"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoOpen    bool

	Shell   *ishell.Shell
	Config  *receiver.Config
	Decoder *ht12e.Decoder
	// Calibration is the last calibration outcome.
	Calibration ht12e.Calibration
}

const (
	shellKey       = "$shell"
	closedPrompt   = "[none] > "
	defaultOrigin  = "line"
	promptTemplate = "%s@%v > "
)

// ErrNotOpen indicates no pulse source is open.
var ErrNotOpen = errors.New("no source open")

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *receiver.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requiring an open source.
func MustBeOpen(fn func(c *ishell.Context, s *Shell)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		if s.Decoder == nil {
			c.Err(ErrNotOpen)
			return
		}
		fn(c, s)
	}
}

// WithAutoOpen sets AutoOpen.
func (s *Shell) WithAutoOpen(en bool) *Shell {
	s.AutoOpen = en
	return s
}

// Open opens the configured source and creates the decoder. The clock is
// calibrated unless a frequency is configured.
func (s *Shell) Open() error {
	if err := s.Config.Validate(); err != nil {
		return err
	}
	src, err := s.Config.OpenSource()
	if err != nil {
		return err
	}
	return s.Attach(src)
}

// Attach creates the decoder on an opened source.
func (s *Shell) Attach(src ht12e.Source) error {
	d, cal, err := s.Config.Decoder.NewDecoder(src)
	if err != nil {
		return err
	}
	s.Decoder, s.Calibration = d, cal
	s.updatePrompt()
	return nil
}

// Close drops the decoder.
func (s *Shell) Close() {
	s.Decoder = nil
	s.Calibration = ht12e.Calibration{}
	s.updatePrompt()
}

func (s *Shell) updatePrompt() {
	if s.Shell == nil {
		return
	}
	if s.Decoder == nil {
		s.Shell.SetPrompt(closedPrompt)
		return
	}
	name := s.Config.Source.Pin
	if name == "" {
		name = defaultOrigin
	}
	s.Shell.SetPrompt(fmt.Sprintf(promptTemplate, name, s.Decoder.ClockPeriod()))
}

// Output prints v as JSON if OutputJSON, or text otherwise.
func (s *Shell) Output(c *ishell.Context, v interface{}, text string) {
	out, err := s.Format(v, text)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(out)
}

// Format renders v as JSON if OutputJSON, or returns text.
func (s *Shell) Format(v interface{}, text string) (string, error) {
	if !s.OutputJSON {
		return text, nil
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoOpen && (s.Config.Source.Pin != "" || s.Config.Source.Script != "") {
		if err := s.Open(); err != nil {
			log.Fatalf("open failed: %v", err)
		}
		if s.Interactive {
			s.Shell.Printf("Clock period %v\n", s.Decoder.ClockPeriod())
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// OpenCmd opens a pulse source.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[pin NAME | script FILE]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) >= 2 {
				switch c.Args[0] {
				case "pin":
					s.Config.Source.Pin, s.Config.Source.Script = c.Args[1], ""
				case "script":
					s.Config.Source.Pin, s.Config.Source.Script = "", c.Args[1]
				default:
					c.Err(fmt.Errorf("unknown source %q", c.Args[0]))
					return
				}
			}
			if err := s.Open(); err != nil {
				c.Err(err)
				return
			}
			c.Printf("Clock period %v\n", s.Decoder.ClockPeriod())
		},
	}

	// CloseCmd closes the source.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf, err := receiver.Current()
	if err != nil {
		log.Fatalln(err)
	}
	New(conf).WithAutoOpen(true).Run(flag.Args()...)
}
