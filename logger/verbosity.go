package logger

import "go.uber.org/zap/zapcore"

// Named tiers for the repeatable -v flag:
//
//	rootCmd.PersistentFlags().CountP("verbose", "v", "...")
//	logger.Initialize(jsonOut, verbosity)
const (
	VerbosityUser  = 0 // default: results and errors only
	VerbosityInfo  = 1 // -v: + progress, analysis summaries
	VerbosityDebug = 2 // -vv: + scan details, timing, config
	VerbosityTrace = 3 // -vvv: + per-file scanner decisions, SQL
)

// VerbosityToLevel translates a -v flag count into a zap level. Quiet runs
// sit at Warn so gate failures stay visible; anything past -v opens Debug,
// since zap has nothing finer.
func VerbosityToLevel(verbosity int) zapcore.Level {
	switch verbosity {
	case VerbosityUser:
		return zapcore.WarnLevel
	case VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// ShouldLogTrace reports whether -vvv trace output is wanted. Trace detail
// is gated by callers rather than a zap level.
func ShouldLogTrace(verbosity int) bool {
	return verbosity >= VerbosityTrace
}
