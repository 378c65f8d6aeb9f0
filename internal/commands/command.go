package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/go-simplemud/internal/game"
)

// Session is what a command may do to the connection that issued it.
type Session interface {
	Close() error
	// GoToTrain moves the session into the stat editor.
	GoToTrain()
}

// Context carries the player issuing a command and their session.
type Context struct {
	Actor   *game.Player
	Session Session
}

// CommandFunc runs a verb. args is everything after the verb, trimmed.
type CommandFunc func(ctx context.Context, c *Context, args string) error

// Command is one entry of the verb table.
type Command struct {
	Name    string
	Aliases []string
	MinRank game.Rank
	// Help lines are listed under the command's rank in the help menu.
	// Commands documented by another entry leave it empty.
	Help []HelpLine
	Func CommandFunc
}

type HelpLine struct {
	Usage string
	Text  string
}

func (c *Command) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("command name is required")
	}
	if c.Func == nil {
		return fmt.Errorf("command %q: func is required", c.Name)
	}
	for _, l := range c.Help {
		if l.Usage == "" {
			return fmt.Errorf("command %q: help line without usage", c.Name)
		}
	}
	return nil
}

// verbs returns the name and every alias, lower-cased.
func (c *Command) verbs() []string {
	verbs := []string{strings.ToLower(c.Name)}
	for _, a := range c.Aliases {
		verbs = append(verbs, strings.ToLower(a))
	}
	return verbs
}

// Compile indexes cmds by name and alias. A verb claimed twice is an error.
func Compile(cmds []*Command) (map[string]*Command, error) {
	index := make(map[string]*Command)
	for _, cmd := range cmds {
		if err := cmd.Validate(); err != nil {
			return nil, err
		}
		for _, v := range cmd.verbs() {
			if other, ok := index[v]; ok {
				return nil, fmt.Errorf("verb %q claimed by both %q and %q", v, other.Name, cmd.Name)
			}
			index[v] = cmd
		}
	}
	return index, nil
}
