// Package commands mantém a tabela estática de slash commands: definição
// usada no registro junto à plataforma e a função que responde à interação.
package commands

import (
	"context"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// ExecuteFunc produz a resposta de um comando. Erro ou resposta nil são
// tratados pelo dispatcher como falha do handler.
type ExecuteFunc func(ctx context.Context, i *discordgo.Interaction) (*discordgo.InteractionResponse, error)

type Command struct {
	Definition *discordgo.ApplicationCommand
	Execute    ExecuteFunc
}

func (c Command) Name() string {
	if c.Definition == nil {
		return ""
	}
	return c.Definition.Name
}

// Registry é montado uma vez na inicialização e só lido depois disso.
type Registry struct {
	byName map[string]Command
}

// NewRegistry indexa os comandos pelo nome. Nomes repetidos: o último vence.
// Comandos sem definição, sem nome ou sem Execute são ignorados.
func NewRegistry(cmds ...Command) *Registry {
	r := &Registry{byName: make(map[string]Command, len(cmds))}
	for _, c := range cmds {
		if c.Name() == "" || c.Execute == nil {
			continue
		}
		r.byName[c.Name()] = c
	}
	return r
}

func (r *Registry) Lookup(name string) (Command, bool) {
	if r == nil {
		return Command{}, false
	}
	c, ok := r.byName[name]
	return c, ok
}

// Names devolve os nomes em ordem alfabética.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions devolve o payload de registro, na mesma ordem de Names.
func (r *Registry) Definitions() []*discordgo.ApplicationCommand {
	names := r.Names()
	defs := make([]*discordgo.ApplicationCommand, 0, len(names))
	for _, name := range names {
		defs = append(defs, r.byName[name].Definition)
	}
	return defs
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byName)
}
