package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/hailam/absorbchess/internal/board"
	"github.com/hailam/absorbchess/internal/engine"
	"github.com/hailam/absorbchess/internal/storage"
	"github.com/hailam/absorbchess/internal/uci"
)

const usage = `usage: absorbchess <command> [flags]

commands:
  uci       run the line protocol on stdin/stdout
  perft     count move-tree leaves, per root move
  bestmove  search one position and print the best move
  eval      print the static evaluation of one position

run "absorbchess <command> -h" for the flags of a command.
`

func main() {
	log.SetFlags(0)
	log.SetPrefix("absorbchess: ")

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "uci":
		err = runUCI(args)
	case "perft":
		err = runPerft(args)
	case "bestmove":
		err = runBestMove(args)
	case "eval":
		err = runEval(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// startProfile starts CPU profiling if path (or $CPUPROFILE) is set and
// returns the function that stops it.
func startProfile(path string) func() {
	if path == "" {
		path = os.Getenv("CPUPROFILE")
	}
	if path == "" {
		return func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatal("could not create CPU profile: ", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		log.Fatal("could not start CPU profile: ", err)
	}
	log.Printf("CPU profiling enabled, writing to %s", path)
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}
}

func openStore(dir string, enabled bool) (*storage.Store, error) {
	if !enabled {
		return nil, nil
	}
	return storage.Open(dir)
}

func runUCI(args []string) error {
	fs := flag.NewFlagSet("uci", flag.ExitOnError)
	common := addCommonFlags(fs)
	useDB := fs.Bool("store", false, "cache best moves in the database")
	fs.Parse(args)
	defer startProfile(common.cpuprofile)()

	eng, err := common.newEngine(log.New(os.Stderr, "", log.LstdFlags))
	if err != nil {
		return err
	}
	store, err := openStore(common.db, *useDB || common.db != "")
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	return uci.New(eng, store).Run(os.Stdin, os.Stdout)
}

func runPerft(args []string) error {
	fs := flag.NewFlagSet("perft", flag.ExitOnError)
	common := addCommonFlags(fs)
	depth := fs.Int("depth", 4, "perft depth")
	workers := fs.Int("workers", 0, "root moves counted at once, 0 for no limit")
	record := fs.Bool("record", false, "store the count as a baseline")
	verify := fs.Bool("verify", false, "compare the count with the stored baseline")
	fs.Parse(args)
	defer startProfile(common.cpuprofile)()

	eng, err := common.newEngine(nil)
	if err != nil {
		return err
	}
	store, err := openStore(common.db, *record || *verify)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	start := time.Now()
	entries, err := eng.Divide(context.Background(), *depth, *workers)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	var total uint64
	for _, entry := range entries {
		fmt.Printf("%s: %d\n", entry.Move, entry.Nodes)
		total += entry.Nodes
	}
	fmt.Printf("\nNodes searched: %d\n", total)
	log.Printf("perft depth=%d nodes=%d time_ms=%d", *depth, total, elapsed.Milliseconds())

	pos := eng.Position()
	if *verify {
		rec, found, err := store.LoadPerft(pos.Hash(), *depth)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no baseline for %s at depth %d", pos.FEN(), *depth)
		}
		if rec.Nodes != total {
			return fmt.Errorf("perft mismatch at depth %d: got %d, baseline %d", *depth, total, rec.Nodes)
		}
		log.Printf("matches baseline recorded %s", rec.Recorded.Format(time.RFC3339))
	}
	if *record {
		return store.SavePerft(storage.PerftRecord{
			Hash:    pos.Hash(),
			FEN:     pos.FEN(),
			Depth:   *depth,
			Nodes:   total,
			Elapsed: elapsed,
		})
	}
	return nil
}

func runBestMove(args []string) error {
	fs := flag.NewFlagSet("bestmove", flag.ExitOnError)
	common := addCommonFlags(fs)
	depth := fs.Int("depth", uci.DefaultDepth, "search depth in plies")
	movetime := fs.Int("movetime", 0, "time limit in milliseconds, 0 for none")
	fs.Parse(args)
	defer startProfile(common.cpuprofile)()

	eng, err := common.newEngine(log.New(os.Stderr, "", 0))
	if err != nil {
		return err
	}
	store, err := openStore(common.db, common.db != "")
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	pos := eng.Position()
	params := eng.EvalParams()
	if store != nil {
		rec, found, err := store.LoadAnalysis(pos.Hash(), params.Fingerprint())
		if err != nil {
			return err
		}
		if found && rec.Depth >= *depth && rec.FEN == pos.FEN() {
			fmt.Printf("bestmove %s score %s (cached, depth %d)\n", rec.Move, engine.ScoreToString(rec.Score), rec.Depth)
			return nil
		}
	}

	move := eng.FindBestMove(*depth, *movetime)
	stats := eng.LastSearch()
	if move == board.NoMove {
		reason := "stalemate"
		if eng.IsCheckmate() {
			reason = "checkmate"
		}
		fmt.Printf("bestmove 0000 (%s)\n", reason)
		return nil
	}
	fmt.Printf("bestmove %s score %s\n", move, engine.ScoreToString(stats.Score))

	if store != nil {
		return store.SaveAnalysis(storage.AnalysisRecord{
			Hash:   pos.Hash(),
			Params: params.Fingerprint(),
			FEN:    pos.FEN(),
			Depth:  stats.Depth,
			Move:   move.String(),
			Score:  stats.Score,
			Nodes:  stats.Nodes + stats.QNodes,
		})
	}
	return nil
}

func runEval(args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	common := addCommonFlags(fs)
	fs.Parse(args)

	eng, err := common.newEngine(nil)
	if err != nil {
		return err
	}

	score := eng.EvaluatePosition()
	fmt.Print(eng.Position())
	fmt.Printf("FEN: %s\n", eng.FEN())
	fmt.Printf("Eval: %d (%s) for %s\n", score, engine.ScoreToString(score), eng.Position().SideToMove)
	fmt.Printf("Check: %v  Checkmate: %v  Stalemate: %v\n", eng.IsInCheck(eng.GetBoardState().WhiteToMove), eng.IsCheckmate(), eng.IsStalemate())
	return nil
}
