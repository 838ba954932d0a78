package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/keshon/slashbot/pkg/cmd"
)

// CannedFile is the YAML layout of a canned command file:
//
//	commands:
//	  - name: greet
//	    aliases: [hi]
//	    args: ["who", "mood:fine", "rest..."]
//	    description: Say hello
//	    text: "Hello {{.Args.who}}, feeling {{.Args.mood}}?"
//	    in_channel: true
type CannedFile struct {
	Commands []CannedDef `yaml:"commands"`
}

// CannedDef declares one command answering with a fixed template.
type CannedDef struct {
	Name        string   `yaml:"name"`
	Aliases     []string `yaml:"aliases"`
	Args        []string `yaml:"args"`
	Description string   `yaml:"description"`
	Text        string   `yaml:"text"`
	Attachment  string   `yaml:"attachment"`
	InChannel   bool     `yaml:"in_channel"`
}

// cannedData is what canned templates render against.
type cannedData struct {
	Args    map[string]string
	User    string
	Channel string
}

// CannedCommand renders its templates with the bound arguments. Arguments
// not bound render as empty strings; a splat renders space-joined.
type CannedCommand struct {
	def        CannedDef
	spec       cmd.Spec
	text       *template.Template
	attachment *template.Template
}

// NewCannedCommand validates def and compiles its spec and templates.
func NewCannedCommand(def CannedDef) (*CannedCommand, error) {
	if def.Name == "" {
		return nil, errors.New("canned command without a name")
	}
	if def.Name == cmd.HelpName {
		return nil, fmt.Errorf("canned command %q: %w", def.Name, cmd.ErrReservedName)
	}
	spec, err := cmd.ParseSpec(def.Args...)
	if err != nil {
		return nil, fmt.Errorf("canned command %q: %w", def.Name, err)
	}
	text, err := parseTemplate(def.Name, def.Text)
	if err != nil {
		return nil, err
	}
	c := &CannedCommand{def: def, spec: spec, text: text}
	if def.Attachment != "" {
		if c.attachment, err = parseTemplate(def.Name+"/attachment", def.Attachment); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func parseTemplate(name, text string) (*template.Template, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("canned command %q: parse template: %w", name, err)
	}
	return t, nil
}

func (c *CannedCommand) Name() string        { return c.def.Name }
func (c *CannedCommand) Description() string { return c.def.Description }
func (c *CannedCommand) Spec() cmd.Spec      { return c.spec }

func (c *CannedCommand) Run(_ context.Context, inv *cmd.Invocation) {
	data := cannedData{
		Args:    make(map[string]string, c.spec.Len()),
		User:    inv.Event.MetaString(cmd.MetaUserName),
		Channel: inv.Event.MetaString(cmd.MetaChannelName),
	}
	args := inv.Args()
	for _, a := range c.spec.Args() {
		if a.Kind == cmd.KindSplat {
			data.Args[a.Name] = strings.Join(args.Strings(a.Name), " ")
			continue
		}
		data.Args[a.Name], _ = args.String(a.Name)
	}

	text, err := render(c.text, data)
	if err != nil {
		inv.Done(err, nil)
		return
	}
	var attachments []string
	if c.attachment != nil {
		a, err := render(c.attachment, data)
		if err != nil {
			inv.Done(err, nil)
			return
		}
		attachments = append(attachments, a)
	}

	if c.def.InChannel {
		inv.Done(nil, inv.Reply.InChannel(text, attachments...))
		return
	}
	inv.Done(nil, inv.Reply.Ephemeral(text, attachments...))
}

func render(t *template.Template, data cannedData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// ParseCanned decodes canned command definitions from YAML.
func ParseCanned(data []byte) ([]CannedDef, error) {
	var f CannedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse canned commands: %w", err)
	}
	return f.Commands, nil
}

// LoadCanned reads canned command definitions from a YAML file.
func LoadCanned(path string) ([]CannedDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read canned commands: %w", err)
	}
	return ParseCanned(data)
}

// RegisterCanned compiles every definition and registers it with its
// aliases. Nothing is registered if any definition is invalid.
func RegisterCanned(reg *cmd.Registry, defs []CannedDef, mws ...cmd.Middleware) error {
	cmds := make([]*CannedCommand, 0, len(defs))
	for _, def := range defs {
		c, err := NewCannedCommand(def)
		if err != nil {
			return err
		}
		cmds = append(cmds, c)
	}
	for _, c := range cmds {
		if err := reg.Register(c, mws...); err != nil {
			return fmt.Errorf("register %s: %w", c.Name(), err)
		}
		if len(c.def.Aliases) > 0 {
			if err := reg.Alias(c.Name(), c.def.Aliases...); err != nil {
				return err
			}
		}
	}
	return nil
}
