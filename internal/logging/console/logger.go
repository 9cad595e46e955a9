// Package console writes log lines for humans reading a terminal:
//
//	15:09:26.535 INF [gitcontent.fetcher] collection.loaded collection=posts items=4
//
// Logger-scoped fields print sorted, call arguments print in call order.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-gitcontent/internal/logging"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// Level orders log severities.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelTags = [...]string{"TRC", "DBG", "INF", "WRN", "ERR", "FTL"}

// String returns the three letter tag printed on each line.
func (l Level) String() string {
	if int(l) < len(levelTags) {
		return levelTags[l]
	}
	return levelTags[LevelInfo]
}

var levelNames = map[string]Level{
	"trace":   LevelTrace,
	"debug":   LevelDebug,
	"":        LevelInfo,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
	"fatal":   LevelFatal,
}

// ParseLevel maps a config level name onto a Level. Unknown names report
// false and LevelInfo.
func ParseLevel(name string) (Level, bool) {
	level, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return LevelInfo, false
	}
	return level, true
}

// Options configures the provider. Zero values write to stderr at info.
type Options struct {
	Writer   io.Writer
	TimeFunc func() time.Time
	MinLevel *Level
}

type sink struct {
	mu    sync.Mutex
	out   io.Writer
	now   func() time.Time
	level Level
}

// NewProvider returns a LoggerProvider whose loggers share one writer.
func NewProvider(opts Options) interfaces.LoggerProvider {
	s := &sink{out: opts.Writer, now: opts.TimeFunc, level: LevelInfo}
	if s.out == nil {
		s.out = os.Stderr
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.MinLevel != nil {
		s.level = *opts.MinLevel
	}
	return s
}

func (s *sink) GetLogger(name string) interfaces.Logger {
	return &logger{sink: s, name: name}
}

type field struct {
	key   string
	value any
}

type logger struct {
	sink   *sink
	name   string
	fields map[string]any
	ctx    context.Context
}

var (
	_ interfaces.Logger       = (*logger)(nil)
	_ interfaces.FieldsLogger = (*logger)(nil)
)

func (l *logger) Trace(msg string, args ...any) { l.write(LevelTrace, msg, args) }
func (l *logger) Debug(msg string, args ...any) { l.write(LevelDebug, msg, args) }
func (l *logger) Info(msg string, args ...any)  { l.write(LevelInfo, msg, args) }
func (l *logger) Warn(msg string, args ...any)  { l.write(LevelWarn, msg, args) }
func (l *logger) Error(msg string, args ...any) { l.write(LevelError, msg, args) }
func (l *logger) Fatal(msg string, args ...any) { l.write(LevelFatal, msg, args) }

func (l *logger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	next := *l
	next.fields = make(map[string]any, len(l.fields)+len(fields))
	for key, value := range l.fields {
		next.fields[key] = value
	}
	for key, value := range fields {
		next.fields[key] = value
	}
	return &next
}

func (l *logger) WithContext(ctx context.Context) interfaces.Logger {
	next := *l
	next.ctx = ctx
	return &next
}

func (l *logger) write(level Level, msg string, args []any) {
	if level < l.sink.level {
		return
	}

	var line strings.Builder
	line.WriteString(l.sink.now().Format("15:04:05.000"))
	line.WriteByte(' ')
	line.WriteString(level.String())
	if l.name != "" {
		line.WriteString(" [")
		line.WriteString(l.name)
		line.WriteByte(']')
	}
	line.WriteByte(' ')
	line.WriteString(msg)

	for _, f := range l.collect(args) {
		line.WriteByte(' ')
		line.WriteString(f.key)
		line.WriteByte('=')
		line.WriteString(render(f.value))
	}
	line.WriteByte('\n')

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = io.WriteString(l.sink.out, line.String())
}

// collect merges scoped, context and call fields. A later source overrides
// an earlier key; the module field is dropped when it repeats the name.
func (l *logger) collect(args []any) []field {
	scoped := map[string]any{}
	for key, value := range l.fields {
		scoped[key] = value
	}
	for key, value := range logging.ContextFields(l.ctx) {
		scoped[key] = value
	}

	call := pairs(args)
	for _, f := range call {
		delete(scoped, f.key)
	}
	if module, ok := scoped["module"].(string); ok && module == l.name {
		delete(scoped, "module")
	}

	keys := make([]string, 0, len(scoped))
	for key := range scoped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]field, 0, len(keys)+len(call))
	for _, key := range keys {
		out = append(out, field{key: key, value: scoped[key]})
	}
	return append(out, call...)
}

func pairs(args []any) []field {
	out := make([]field, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 == len(args) {
			out = append(out, field{key: "arg" + strconv.Itoa(i/2), value: args[i]})
			break
		}
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = "arg" + strconv.Itoa(i/2)
		}
		out = append(out, field{key: key, value: args[i+1]})
	}
	return out
}

func render(value any) string {
	switch v := value.(type) {
	case nil:
		return "-"
	case string:
		return quote(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return v.String()
	case error:
		var rich *goerrors.Error
		if errors.As(v, &rich) && rich.TextCode != "" {
			return quote(rich.TextCode + ": " + v.Error())
		}
		return quote(v.Error())
	case fmt.Stringer:
		return quote(v.String())
	default:
		return quote(fmt.Sprint(v))
	}
}

func quote(value string) string {
	if value == "" {
		return `""`
	}
	if strings.ContainsFunc(value, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(value)
	}
	return value
}
