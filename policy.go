package selftest

import (
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// Command-line flags recognized by the run policy. Matching is exact
// and case-sensitive; position on the line does not matter.
const (
	FlagQuitAfterTests = "--quitAfterTests"
	FlagDisableTests   = "--disableTests"
	FlagEnableTests    = "--enableTests"
	FlagAssertOnFail   = "--assertOnFail"
	FlagContinueOnFail = "--continueOnFail"
	FlagLogPasses      = "--logPasses"
	FlagRandomSeed     = "--randomTestSeed"
)

// Mode selects which flag defaults apply. The zero value is
// ModeRelease, the conservative policy: nothing runs unless asked to.
type Mode int

const (
	// ModeRelease runs tests only when --enableTests is given and stops
	// fatally on failure only when --assertOnFail is given.
	ModeRelease Mode = iota

	// ModeDebug runs tests unless --disableTests is given and stops
	// fatally on failure unless --continueOnFail is given.
	ModeDebug
)

func (m Mode) String() string {
	switch m {
	case ModeDebug:
		return "debug"
	default:
		return "release"
	}
}

// Policy is the run configuration derived from one command line.
type Policy struct {
	// ContinueRunning tells the caller whether to proceed with start-up
	// once the entry point returns.
	ContinueRunning bool

	// RunTests enables executing the registered suites.
	RunTests bool

	// AssertOnFail stops the run fatally at the first failing check.
	AssertOnFail bool

	// LogPasses includes passing checks in the output, not only
	// failures.
	LogPasses bool

	// Seed feeds the suites' random sources. Zero means "pick one".
	Seed int64
}

// ParsePolicy derives the run policy from a raw command-line string.
// Tokens come from shell-style splitting, so quoted sections stay
// together; flags match exactly, anywhere on the line. A malformed or
// absent seed value silently yields zero.
func ParsePolicy(commandLine string, mode Mode) Policy {
	args := splitCommandLine(commandLine)

	p := Policy{
		ContinueRunning: !hasFlag(args, FlagQuitAfterTests),
		LogPasses:       hasFlag(args, FlagLogPasses),
		Seed:            seedValue(args),
	}

	switch mode {
	case ModeDebug:
		p.RunTests = !hasFlag(args, FlagDisableTests)
		p.AssertOnFail = !hasFlag(args, FlagContinueOnFail)
	default:
		p.RunTests = hasFlag(args, FlagEnableTests)
		p.AssertOnFail = hasFlag(args, FlagAssertOnFail)
	}
	return p
}

// splitCommandLine tokenizes like a shell. Input that shlex rejects
// (an unterminated quote) degrades to plain whitespace splitting so
// policy flags still get through.
func splitCommandLine(commandLine string) []string {
	args, err := shlex.Split(commandLine)
	if err != nil {
		return strings.Fields(commandLine)
	}
	return args
}

func hasFlag(args []string, flag string) bool {
	return indexOf(args, flag) >= 0
}

func indexOf(args []string, flag string) int {
	for i, arg := range args {
		if arg == flag {
			return i
		}
	}
	return -1
}

// seedValue parses the token immediately following --randomTestSeed.
func seedValue(args []string) int64 {
	i := indexOf(args, FlagRandomSeed)
	if i < 0 || i+1 >= len(args) {
		return 0
	}
	seed, err := strconv.ParseInt(args[i+1], 10, 64)
	if err != nil {
		return 0
	}
	return seed
}
