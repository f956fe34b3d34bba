package appcontext

import "context"

type ContextKey string

var (
	RunIDKey  = ContextKey("X-Run-Id")
	TreeIDKey = ContextKey("X-Tree-Id")
	SourceKey = ContextKey("X-Source")
)

// SetRunID stashes the identifier of the current import run.
func SetRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

func GetRunID(ctx context.Context) string {
	value, ok := ctx.Value(RunIDKey).(string)
	if !ok {
		return ""
	}
	return value
}

// SetTreeID stashes the family tree the current operation is scoped to.
func SetTreeID(ctx context.Context, treeID string) context.Context {
	return context.WithValue(ctx, TreeIDKey, treeID)
}

func GetTreeID(ctx context.Context) string {
	value, ok := ctx.Value(TreeIDKey).(string)
	if !ok {
		return ""
	}
	return value
}

// SetSource stashes the source file or feed the current data came from.
func SetSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, SourceKey, source)
}

func GetSource(ctx context.Context) string {
	value, ok := ctx.Value(SourceKey).(string)
	if !ok {
		return ""
	}
	return value
}

