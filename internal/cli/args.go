package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/dmmcquay/nogo/internal/board"
	"github.com/dmmcquay/nogo/internal/game"
	"github.com/dmmcquay/nogo/internal/player"
)

// Usage is printed when the positional arguments do not fit.
const Usage = "Usage: nogo p1type p2type [height width | filename]"

var (
	ErrUsage      = errors.New("wrong number of arguments")
	ErrPlayerType = errors.New("invalid player type")
	ErrConfig     = errors.New("invalid configuration")
)

// Exit codes.
const (
	ExitOK             = 0
	ExitUsage          = 1
	ExitPlayerType     = 2
	ExitDimensions     = 3
	ExitUnreadableFile = 4
	ExitCorruptFile    = 5
	ExitConfig         = 6
)

// Args are the positional arguments of a game.
type Args struct {
	Players [2]player.Kind
	Height  int
	Width   int
	// LoadPath is set when the game resumes from a save file; Height and
	// Width then come from the file.
	LoadPath string
}

// ParseArgs reads "p1 p2 height width" or "p1 p2 filename". maxDimension
// bounds both sides of a new board; zero or less means unbounded.
func ParseArgs(args []string, maxDimension int) (Args, error) {
	if len(args) != 3 && len(args) != 4 {
		return Args{}, fmt.Errorf("%w: got %d", ErrUsage, len(args))
	}

	var a Args
	for i := 0; i < 2; i++ {
		kind, ok := player.ParseKind(args[i])
		if !ok {
			return Args{}, fmt.Errorf("%w: %q", ErrPlayerType, args[i])
		}
		a.Players[i] = kind
	}

	if len(args) == 3 {
		a.LoadPath = args[2]
		return a, nil
	}

	var err error
	if a.Height, err = parseDimension(args[2], maxDimension); err != nil {
		return Args{}, err
	}
	if a.Width, err = parseDimension(args[3], maxDimension); err != nil {
		return Args{}, err
	}
	return a, nil
}

func parseDimension(s string, maxDimension int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", board.ErrInvalidDimensions, s)
	}
	if n <= 0 || (maxDimension > 0 && n > maxDimension) {
		return 0, fmt.Errorf("%w: %d", board.ErrInvalidDimensions, n)
	}
	return n, nil
}

// Describe maps a startup error to the message shown to the user and the
// process exit code.
func Describe(err error) (string, int) {
	switch {
	case err == nil:
		return "", ExitOK
	case errors.Is(err, ErrUsage):
		return Usage, ExitUsage
	case errors.Is(err, ErrPlayerType):
		return "Invalid type", ExitPlayerType
	case errors.Is(err, board.ErrInvalidDimensions):
		return "Invalid board dimension", ExitDimensions
	case errors.Is(err, game.ErrLoadCorrupt):
		return "Incorrect file contents", ExitCorruptFile
	case errors.Is(err, ErrConfig):
		return err.Error(), ExitConfig
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return "Unable to open file", ExitUnreadableFile
	}
	return err.Error(), ExitUsage
}
