package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/hailam/absorbchess/internal/engine"
)

// commonFlags are shared by every command.
type commonFlags struct {
	fen        string
	grid       string
	config     string
	db         string
	cpuprofile string
	set        paramFlags
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.fen, "fen", "", "position in extended FEN, default the start position")
	fs.StringVar(&c.grid, "grid", "", "JSON file with a board grid, used in place of -fen")
	fs.StringVar(&c.config, "config", "", "JSON file with engine options")
	fs.StringVar(&c.db, "db", "", "database directory, default the platform data directory")
	fs.StringVar(&c.cpuprofile, "cpuprofile", "", "write cpu profile to file")
	fs.Var(&c.set, "set", "evaluation weight as Name=Value, repeatable")
	return c
}

// newEngine builds an engine from -config and -set and loads -grid or -fen.
func (c *commonFlags) newEngine(logger *log.Logger) (*engine.Engine, error) {
	opts := engine.DefaultOptions()
	if c.config != "" {
		data, err := os.ReadFile(c.config)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &opts); err != nil {
			return nil, fmt.Errorf("config %s: %w", c.config, err)
		}
	}
	for _, p := range c.set {
		if err := opts.Eval.Set(p.name, p.value); err != nil {
			return nil, err
		}
	}
	opts.Logger = logger

	eng := engine.New(opts)
	switch {
	case c.grid != "":
		g, err := readGridFile(c.grid)
		if err != nil {
			return nil, err
		}
		if err := eng.SetBoardState(g.Grid, g.WhiteToMove, g.WhiteCastled, g.BlackCastled, g.EnPassantFile, g.EnPassantRank); err != nil {
			return nil, fmt.Errorf("grid %s: %w", c.grid, err)
		}
	case c.fen != "":
		if err := eng.SetFEN(c.fen); err != nil {
			return nil, err
		}
	}
	return eng, nil
}

// gridFile is the JSON form of a board state.
type gridFile struct {
	Grid          [][]uint16 `json:"grid"`
	WhiteToMove   bool       `json:"white_to_move"`
	WhiteCastled  bool       `json:"white_castled"`
	BlackCastled  bool       `json:"black_castled"`
	EnPassantFile int        `json:"ep_file"`
	EnPassantRank int        `json:"ep_rank"`
}

func readGridFile(path string) (gridFile, error) {
	g := gridFile{EnPassantFile: -1, EnPassantRank: -1}
	data, err := os.ReadFile(path)
	if err != nil {
		return g, err
	}
	if err := json.Unmarshal(data, &g); err != nil {
		return g, fmt.Errorf("grid %s: %w", path, err)
	}
	return g, nil
}

type param struct {
	name  string
	value int
}

// paramFlags collects repeated -set Name=Value flags.
type paramFlags []param

func (p *paramFlags) String() string {
	parts := make([]string, len(*p))
	for i, v := range *p {
		parts[i] = fmt.Sprintf("%s=%d", v.name, v.value)
	}
	return strings.Join(parts, ",")
}

func (p *paramFlags) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("want Name=Value, got %q", s)
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*p = append(*p, param{name: name, value: v})
	return nil
}
