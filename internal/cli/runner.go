package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmmcquay/nogo/internal/board"
	"github.com/dmmcquay/nogo/internal/game"
	"github.com/dmmcquay/nogo/internal/logging"
	"github.com/dmmcquay/nogo/internal/metrics"
	"github.com/dmmcquay/nogo/internal/player"
)

// Options configures a Runner. Zero values fall back to discarding output,
// a no-op logger and no metrics.
type Options struct {
	In           io.Reader
	Out          io.Writer
	ErrOut       io.Writer
	Logger       logging.ContextLogger
	Metrics      metrics.Recorder
	FallbackScan bool
}

// Runner owns one game and drives the turn loop.
type Runner struct {
	state   *game.State
	seats   [2]player.Strategy
	out     io.Writer
	errOut  io.Writer
	logger  logging.ContextLogger
	metrics metrics.Recorder
	gameID  string
}

// NewRunner sets up a new or loaded game. Both human seats share one input
// stream.
func NewRunner(a Args, opts Options) (*Runner, error) {
	if opts.In == nil {
		opts.In = eofReader{}
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.ErrOut == nil {
		opts.ErrOut = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}

	var (
		snap game.Snapshot
		err  error
	)
	if a.LoadPath != "" {
		snap, err = game.LoadFile(a.LoadPath)
		if err != nil {
			return nil, err
		}
	} else {
		snap.State, err = game.New(a.Height, a.Width)
		if err != nil {
			return nil, err
		}
	}

	b := snap.State.Board()
	in := bufio.NewReader(opts.In)
	r := &Runner{
		state:   snap.State,
		out:     opts.Out,
		errOut:  opts.ErrOut,
		metrics: opts.Metrics,
		gameID:  logging.GenerateGameID(),
	}
	for seat, kind := range a.Players {
		switch kind {
		case player.Human:
			r.seats[seat] = player.NewHumanPlayer(in)
		case player.Computer:
			cp := player.NewComputerPlayer(seat, b.Height(), b.Width())
			cp.SetFallbackScan(opts.FallbackScan)
			if a.LoadPath != "" {
				cp.Restore(snap.Seats[seat])
			}
			r.seats[seat] = cp
		default:
			return nil, fmt.Errorf("%w: %q", ErrPlayerType, kind)
		}
	}

	r.logger = opts.Logger.WithContext(logging.ContextWithGameID(context.Background(), r.gameID))
	r.logger.Info("Game created",
		"height", b.Height(),
		"width", b.Width(),
		"black", string(a.Players[0]),
		"white", string(a.Players[1]),
		"loaded", a.LoadPath != "",
	)
	return r, nil
}

// State exposes the game for inspection after Run returns.
func (r *Runner) State() *game.State { return r.state }

// GameID tags every log entry of this game.
func (r *Runner) GameID() string { return r.gameID }

// Run plays until someone wins, the side to move is stuck (Draw), a player
// quits or ctx is cancelled. A quit returns the still InProgress status.
func (r *Runner) Run(ctx context.Context) (status game.Status, err error) {
	r.metrics.GameStarted()
	defer func() {
		outcome := r.state.Status().String()
		if !r.state.Over() {
			outcome = "abandoned"
		}
		r.metrics.RecordGameFinished(outcome)
		r.logger.Info("Game finished", "outcome", outcome, "moves", len(r.state.History()))
	}()

	for {
		if err := ctx.Err(); err != nil {
			return r.state.Status(), err
		}

		fmt.Fprint(r.out, r.state.Board().String())

		if !r.state.HasLegalMove() {
			return r.draw()
		}

		color := r.state.Turn()
		move, err := r.nextMove(ctx, color)
		switch {
		case errors.Is(err, game.ErrNoLegalMove):
			return r.draw()
		case err != nil:
			return r.state.Status(), err
		}

		switch move.Action {
		case player.Quit:
			r.logger.Info("Player quit", "color", color.String())
			return r.state.Status(), nil
		case player.Save:
			r.save(move.Filename)
			continue
		}

		if done := r.place(color, move.Coord); done {
			fmt.Fprint(r.out, r.state.Board().String())
			fmt.Fprintf(r.out, "Player %c wins!\n", r.state.Winner().Symbol())
			return r.state.Status(), nil
		}
	}
}

// nextMove prompts until the seat produces something that parses. Computer
// moves are echoed after the prompt the way a human would type them.
func (r *Runner) nextMove(ctx context.Context, color board.Color) (player.Move, error) {
	strategy := r.seats[seatOf(color)]
	for {
		fmt.Fprintf(r.out, "Player %c> ", color.Symbol())

		start := time.Now()
		move, err := strategy.ProposeMove(ctx, r.state.Board(), color)
		r.metrics.RecordDecision(string(strategy.Kind()), time.Since(start).Seconds())

		if errors.Is(err, player.ErrParse) {
			r.metrics.RecordIllegalMove("parse")
			fmt.Fprintf(r.errOut, "Error: %v\n", err)
			continue
		}
		if err != nil {
			return player.Move{}, err
		}

		if strategy.Kind() == player.Computer {
			fmt.Fprintln(r.out, move.String())
		}
		return move, nil
	}
}

// place applies a placement and reports whether it ended the game. Illegal
// placements are reported on the error stream and leave the turn unchanged.
func (r *Runner) place(color board.Color, c board.Coord) bool {
	res, err := r.state.ApplyMove(c)
	if err != nil {
		r.metrics.RecordIllegalMove(illegalReason(err))
		r.logger.Debug("Move rejected", "color", color.String(), "row", c.Row, "col", c.Col, "error", err)
		fmt.Fprintln(r.errOut, err)
		return false
	}

	captured := res.CapturedStones()
	r.metrics.RecordMove(color.String(), captured)
	r.logger.Debug("Move accepted", "color", color.String(), "row", c.Row, "col", c.Col, "captured", captured)
	return r.state.Over()
}

func (r *Runner) save(filename string) {
	fmt.Fprintf(r.out, "Saving to %s\n", filename)
	err := game.SaveFile(filename, r.snapshot())
	r.metrics.RecordSave(err == nil)
	if err != nil {
		r.logger.Warn("Save failed", "file", filename, "error", err)
		fmt.Fprintln(r.errOut, "Failed to save file")
		return
	}
	r.logger.Info("Game saved", "file", filename)
}

func (r *Runner) draw() (game.Status, error) {
	stuck := r.state.Turn()
	if err := r.state.DeclareDraw(); err != nil {
		return r.state.Status(), err
	}
	fmt.Fprintf(r.out, "Player %c has no legal move. Draw.\n", stuck.Symbol())
	return r.state.Status(), nil
}

func (r *Runner) snapshot() game.Snapshot {
	snap := game.Snapshot{State: r.state}
	for seat, s := range r.seats {
		if cp, ok := s.(*player.ComputerPlayer); ok {
			snap.Seats[seat] = cp.State()
		}
	}
	return snap
}

func seatOf(c board.Color) int {
	if c == board.White {
		return 1
	}
	return 0
}

func illegalReason(err error) string {
	switch {
	case errors.Is(err, board.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, board.ErrOccupied):
		return "occupied"
	case errors.Is(err, game.ErrGameOver):
		return "game_over"
	}
	return "suicide"
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
