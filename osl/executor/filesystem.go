package executor

import (
	"context"
	"os"
	"path/filepath"

	"github.com/karrick/godirwalk"

	"github.com/airsstack/airssys/osl"
	"github.com/airsstack/airssys/osl/operation"
)

// FilesystemExecutor performs read/write/delete/list effects. Directory
// listing uses karrick/godirwalk (the teacher's direct dependency) instead
// of filepath.Walk, grounded on its use for fast directory traversal.
type FilesystemExecutor struct{}

func NewFilesystemExecutor() *FilesystemExecutor { return &FilesystemExecutor{} }

func (*FilesystemExecutor) Name() string { return "filesystem" }

func (*FilesystemExecutor) SupportedOperationTypes() []operation.Type {
	return []operation.Type{operation.TypeFilesystem}
}

func (*FilesystemExecutor) ValidateOperation(_ context.Context, op operation.Operation, _ *operation.ExecutionContext) error {
	if op.Kind() != operation.TypeFilesystem {
		return osl.NewExecutionFailed("filesystem executor received non-filesystem operation")
	}
	if op.Filesystem.Path == "" {
		return osl.NewFilesystemError("validate", "", "empty path")
	}
	return nil
}

func (e *FilesystemExecutor) Execute(ctx context.Context, op operation.Operation, _ *operation.ExecutionContext) (operation.ExecutionResult, error) {
	started := nowUTC()
	f := op.Filesystem
	switch f.Action {
	case operation.FsRead:
		data, err := os.ReadFile(f.Path)
		if err != nil {
			return operation.ExecutionResult{}, osl.NewFilesystemError("read", f.Path, err.Error())
		}
		res := operation.NewExecutionResult(started, nowUTC())
		res.Stdout = data
		return res, nil

	case operation.FsWrite:
		mode := os.FileMode(0o644)
		if f.Mode != 0 {
			mode = os.FileMode(f.Mode)
		}
		if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
			return operation.ExecutionResult{}, osl.NewFilesystemError("write", f.Path, err.Error())
		}
		if err := os.WriteFile(f.Path, f.Data, mode); err != nil {
			return operation.ExecutionResult{}, osl.NewFilesystemError("write", f.Path, err.Error())
		}
		return operation.NewExecutionResult(started, nowUTC()), nil

	case operation.FsDelete:
		if err := os.Remove(f.Path); err != nil {
			return operation.ExecutionResult{}, osl.NewFilesystemError("delete", f.Path, err.Error())
		}
		return operation.NewExecutionResult(started, nowUTC()), nil

	case operation.FsList:
		var names []string
		err := godirwalk.Walk(f.Path, &godirwalk.Options{
			Callback: func(path string, de *godirwalk.Dirent) error {
				if path != f.Path {
					names = append(names, path)
				}
				return nil
			},
			Unsorted: true,
		})
		if err != nil {
			return operation.ExecutionResult{}, osl.NewFilesystemError("list", f.Path, err.Error())
		}
		res := operation.NewExecutionResult(started, nowUTC())
		for i, n := range names {
			res.Metadata[itoa(i)] = n
		}
		return res, nil

	default:
		return operation.ExecutionResult{}, osl.NewFilesystemError("execute", f.Path, "unknown action")
	}
}
