package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Logger allows you to control logging with message levels and subsystem controls.
// Use the "Include" flags in the Format field to specify which fields should be included in each
//   log message.
// Subsystem log entries can be enabled per subsystem.
// For example the parent package can specify if they want to see logs from a subsystem and how
//   they want to see them.
//
// Sample Setup:
// // Create a log config and set it up.
// logConfig := logger.NewDevelopmentConfig()
// // Log to main.log instead of stderr (AddFile replaces the output).
// logConfig.Main.AddFile("./tmp/main.log")
// logConfig.EnableSubSystem(spynode.SubSystem)
//
// // Attach the log config to the context.
// ctx := logger.ContextWithLogConfig(context.Background(), logConfig)
//

type Level int

const (
	LevelDebug   Level = -2
	LevelVerbose Level = -1
	LevelInfo    Level = 0
	LevelWarn    Level = 1
	LevelError   Level = 2
	LevelFatal   Level = 3 // Calls exit
	LevelPanic   Level = 4 // Calls panic
)

// Log entry formatting (which prefix fields to include)
const (
	IncludeDate      = 0x01 // date in the local time zone: 2018/01/01
	IncludeTime      = 0x02 // time in the local time zone: 06:54:32
	IncludeMicro     = 0x04 // microseconds .123123
	IncludeFile      = 0x08 // file name and line number
	IncludeSystem    = 0x10 // system name
	IncludeLevel     = 0x20 // level of log entry
	IncludeCaller    = 0x40 // calling file name and line number
	IncludeTimeStamp = 0x80 // unix timestamp, used instead of date/time for JSON entries
)

// ContextWithLogger is a convenience wrapper that builds a Config from the isDevelopment/isText/
// filePath knobs and attaches it, matching the shape every cmd/ entry point sets up its root
// context with.
func ContextWithLogger(ctx context.Context, isDevelopment, isText bool, filePath string) context.Context {
	return ContextWithLogConfig(ctx, NewConfig(isDevelopment, isText, filePath))
}

// Returns a context with the logging config attached.
func ContextWithLogConfig(ctx context.Context, config *Config) context.Context {
	return context.WithValue(ctx, configKey, config)
}

func ContextWithNoLogger(ctx context.Context) context.Context {
	return context.WithValue(ctx, configKey, &emptyConfig)
}

// Returns a context with the logging subsystem attached.
func ContextWithLogSubSystem(ctx context.Context, subsystem string) context.Context {
	return context.WithValue(ctx, subSystemKey, subsystem)
}

// Returns a context with the logging subsystem cleared. Used when a context is passed back from a
//   subsystem.
func ContextWithOutLogSubSystem(ctx context.Context) context.Context {
	return context.WithValue(ctx, subSystemKey, nil)
}

// Returns a context with a trace string attached. Every entry logged on it carries the trace as a
//   "trace" field.
func ContextWithLogTrace(ctx context.Context, trace string) context.Context {
	return context.WithValue(ctx, traceKey, trace)
}

// ContextWithLogFields attaches fields that every subsequent log entry on this context (and
// contexts derived from it) will carry automatically, without the caller having to thread them
// through every call site. Fields already attached on an ancestor context take priority over ones
// added later with the same name.
func ContextWithLogFields(ctx context.Context, fields ...Field) context.Context {
	merged := mergeFields(fieldsFromContext(ctx), fields)
	return context.WithValue(ctx, fieldsKey, merged)
}

func fieldsFromContext(ctx context.Context) []Field {
	value := ctx.Value(fieldsKey)
	if value == nil {
		return nil
	}

	fields, ok := value.([]Field)
	if !ok {
		return nil
	}

	return fields
}

// mergeFields combines two field lists, keeping the first occurrence of any name so that fields
// attached earlier (e.g. via ContextWithLogFields on a parent context) win over a later duplicate
// supplied at the call site.
func mergeFields(a, b []Field) []Field {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}

	seen := make(map[string]bool, len(a)+len(b))
	result := make([]Field, 0, len(a)+len(b))
	for _, field := range a {
		if !seen[field.Name()] {
			seen[field.Name()] = true
			result = append(result, field)
		}
	}
	for _, field := range b {
		if !seen[field.Name()] {
			seen[field.Name()] = true
			result = append(result, field)
		}
	}

	return result
}

// GetCaller resolves the "file:line" of the call site skip frames above the current one, trimmed
// to the last two path segments. It is used instead of a stack-depth integer when the eventual log
// call happens from a different goroutine than the one that should be blamed for it (see
// wait_warning.go, which resolves the caller before spawning its monitoring goroutine).
func GetCaller(skip int) string {
	_, filePath, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return "???:0"
	}

	parts := strings.Split(filePath, string(os.PathSeparator))
	if l := len(parts); l >= 2 {
		filePath = parts[l-2] + string(os.PathSeparator) + parts[l-1]
	} else if len(parts) != 0 {
		filePath = parts[0]
	}

	return fmt.Sprintf("%s:%d", filePath, line)
}

// Log an entry to the main Outputs if:
//   There is no subsystem specified or if the current subsystem is included in the attached
//     Config.IncludedSubSystems.
//   And the level is equal to or above the specified minimum logging level.
// Logs to the Config.SubSystems if the level is above minimum.
func Log(ctx context.Context, level Level, format string, values ...interface{}) error {
	return LogDepth(ctx, level, 1, format, values...)
}

// Debug adds a debug level entry to the log.
func Debug(ctx context.Context, format string, values ...interface{}) error {
	return LogDepth(ctx, LevelDebug, 1, format, values...)
}

// Verbose adds a verbose level entry to the log.
func Verbose(ctx context.Context, format string, values ...interface{}) error {
	return LogDepth(ctx, LevelVerbose, 1, format, values...)
}

// Info adds a info level entry to the log.
func Info(ctx context.Context, format string, values ...interface{}) error {
	return LogDepth(ctx, LevelInfo, 1, format, values...)
}

// Warn adds a warn level entry to the log.
func Warn(ctx context.Context, format string, values ...interface{}) error {
	return LogDepth(ctx, LevelWarn, 1, format, values...)
}

// Error adds a error level entry to the log.
func Error(ctx context.Context, format string, values ...interface{}) error {
	return LogDepth(ctx, LevelError, 1, format, values...)
}

// Fatal adds a fatal level entry to the log and then calls os.Exit(1).
func Fatal(ctx context.Context, format string, values ...interface{}) error {
	err := LogDepth(ctx, LevelFatal, 1, format, values...)
	os.Exit(1)
	return err
}

// Panic adds a panic level entry to the log and then calls panic().
func Panic(ctx context.Context, format string, values ...interface{}) error {
	err := LogDepth(ctx, LevelPanic, 1, format, values...)
	panic(fmt.Sprintf(format, values...))
}

// DebugWithFields adds a debug level entry to the log with extra fields attached to this entry
// only (in addition to any fields already attached to ctx).
func DebugWithFields(ctx context.Context, fields []Field, format string, values ...interface{}) error {
	return LogDepthWithFields(ctx, LevelDebug, GetCaller(1), fields, format, values...)
}

// InfoWithFields adds an info level entry to the log with extra fields attached to this entry
// only (in addition to any fields already attached to ctx).
func InfoWithFields(ctx context.Context, fields []Field, format string, values ...interface{}) error {
	return LogDepthWithFields(ctx, LevelInfo, GetCaller(1), fields, format, values...)
}

// WarnWithFields adds a warn level entry to the log with extra fields attached to this entry only
// (in addition to any fields already attached to ctx).
func WarnWithFields(ctx context.Context, fields []Field, format string, values ...interface{}) error {
	return LogDepthWithFields(ctx, LevelWarn, GetCaller(1), fields, format, values...)
}

// ErrorWithFields adds an error level entry to the log with extra fields attached to this entry
// only (in addition to any fields already attached to ctx).
func ErrorWithFields(ctx context.Context, fields []Field, format string, values ...interface{}) error {
	return LogDepthWithFields(ctx, LevelError, GetCaller(1), fields, format, values...)
}

func getTrace(ctx context.Context) string {
	traceValue := ctx.Value(traceKey)
	if traceValue == nil {
		return ""
	}

	trace, ok := traceValue.(string)
	if !ok {
		return ""
	}

	return trace
}

// Same as Log, but the number of levels above the current call in the stack from which to get the
//   file name/line of code can be specified as depth.
func LogDepth(ctx context.Context, level Level, depth int, format string, values ...interface{}) error {
	return LogDepthWithFields(ctx, level, GetCaller(depth+1), nil, format, values...)
}

// LogDepthWithFields is the common core every Log/Debug/.../*WithFields helper funnels through: it
// resolves subsystem routing and merges ctx-attached fields with the call's own, then writes the
// entry to the main config and, if enabled, the matching subsystem config. caller is already
// resolved (see GetCaller) rather than a depth, so callers that cross a goroutine boundary (e.g.
// wait_warning.go) can still report the right frame.
func LogDepthWithFields(ctx context.Context, level Level, caller string, fields []Field, format string,
	values ...interface{}) error {

	configValue := ctx.Value(configKey)
	if configValue == nil {
		// Config not specified. Use default config.
		configValue = &DefaultConfig
	}

	config, ok := configValue.(*Config)
	if !ok {
		return errors.New("Invalid Config Type")
	}

	if config == &emptyConfig {
		return nil
	}

	allFields := mergeFields(fieldsFromContext(ctx), fields)
	if trace := getTrace(ctx); trace != "" {
		allFields = mergeFields([]Field{String("trace", trace)}, allFields)
	}

	config.mutex.Lock()
	defer config.mutex.Unlock()

	subsystem := "Main"
	subsystemValue := ctx.Value(subSystemKey)
	if subsystemValue != nil {
		var ok bool
		subsystem, ok = subsystemValue.(string)
		if !ok {
			return errors.New("Invalid SubSystem Type")
		}

		// Log to subsystem specific config
		if subConfig, subExists := config.SubSystems[subsystem]; subExists {
			if err := subConfig.writeEntry(level, caller, allFields, format, values...); err != nil {
				return err
			}
		}

		include, includeExists := config.IncludedSubSystems[subsystem]
		if !includeExists || !include {
			return nil // Don't log to main config
		}
	}

	// Log to main config
	if config.Main == nil {
		return nil
	}

	return config.Main.writeEntry(level, caller, allFields, format, values...)
}

// Keys for context key/pairs
type loggerkey int

const (
	configKey    loggerkey = 1
	subSystemKey loggerkey = 2
	traceKey     loggerkey = 3
	fieldsKey    loggerkey = 4
)
