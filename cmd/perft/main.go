// Command perft counts move-tree leaves for a position, optionally per root
// move and checked against an independent generator.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"chessrules/internal/position"
)

func main() {
	fen := flag.String("fen", position.StartingFEN, "FEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	verify := flag.Bool("verify", false, "Compare per-move counts against dragontoothmg")
	flag.Parse()

	if err := run(os.Stdout, *fen, *depth, *divide, *verify); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(out io.Writer, fen string, depth int, divide, verify bool) error {
	if depth <= 0 {
		return fmt.Errorf("-depth must be > 0")
	}
	pos, err := position.ParseFEN(fen)
	if err != nil {
		return err
	}

	if verify {
		mismatches := compare(pos, fen, depth)
		for _, m := range mismatches {
			fmt.Fprintf(out, "%s: ours %d, reference %d\n", m.move, m.ours, m.reference)
		}
		if len(mismatches) > 0 {
			return fmt.Errorf("%d root moves disagree at depth %d", len(mismatches), depth)
		}
		fmt.Fprintf(out, "depth %d verified\n", depth)
		return nil
	}

	if divide {
		div := position.Divide(pos, depth)
		moves := make([]string, 0, len(div))
		var sum uint64
		for m, n := range div {
			moves = append(moves, m)
			sum += n
		}
		sort.Strings(moves)
		for _, m := range moves {
			fmt.Fprintf(out, "%s: %d\n", m, div[m])
		}
		fmt.Fprintf(out, "Total: %d\n", sum)
		return nil
	}

	start := time.Now()
	nodes := position.Perft(pos, depth)
	elapsed := time.Since(start)
	fmt.Fprintf(out, "depth %d \tnodes %d \ttime %s \tnps %.0f\n",
		depth, nodes, elapsed, float64(nodes)/elapsed.Seconds())
	return nil
}
