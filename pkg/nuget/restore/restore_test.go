package restore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type call struct {
	name string
	args []string
}

func fakeExec(calls *[]call, results ...Status) execFunc {
	return func(_ context.Context, name string, args ...string) (Status, error) {
		*calls = append(*calls, call{name: name, args: args})
		if len(results) == 0 {
			return Status{}, nil
		}
		s := results[0]
		results = results[1:]
		return s, nil
	}
}

func TestStatusSuccess(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{"clean", Status{Stdout: "Restored"}, true},
		{"exit code", Status{ExitCode: 1}, false},
		{"stderr", Status{Stderr: "error NU1101: Unable to find package"}, false},
		{"whitespace stderr", Status{Stderr: " \n"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Success(); got != tt.want {
				t.Errorf("Success() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateGraph(t *testing.T) {
	var calls []call
	r := &Runner{Dotnet: "/usr/bin/dotnet", exec: fakeExec(&calls)}
	tmp := t.TempDir()

	dgspec, err := r.GenerateGraph(context.Background(), "App.sln", filepath.Join(tmp, "graph"))
	if err != nil {
		t.Fatalf("GenerateGraph: %v", err)
	}
	if dgspec != filepath.Join(tmp, "graph", "App.dgspec.json") {
		t.Errorf("dgspec = %s", dgspec)
	}
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}

	msbuild := calls[0]
	if msbuild.name != "/usr/bin/dotnet" || msbuild.args[0] != "msbuild" {
		t.Errorf("first call = %+v", msbuild)
	}
	joined := strings.Join(msbuild.args, " ")
	for _, want := range []string{"-t:GenerateRestoreGraphFile", "-p:RestoreGraphOutputPath=" + dgspec} {
		if !strings.Contains(joined, want) {
			t.Errorf("msbuild args %q missing %q", joined, want)
		}
	}
	if !filepath.IsAbs(msbuild.args[1]) {
		t.Errorf("target not absolute: %s", msbuild.args[1])
	}
	if calls[1].args[0] != "restore" {
		t.Errorf("second call = %+v", calls[1])
	}
}

func TestGenerateGraphCreatesTempDir(t *testing.T) {
	var calls []call
	r := &Runner{exec: fakeExec(&calls)}
	dgspec, err := r.GenerateGraph(context.Background(), "Web.csproj", "")
	if err != nil {
		t.Fatalf("GenerateGraph: %v", err)
	}
	dir := filepath.Dir(dgspec)
	defer os.RemoveAll(dir)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("temp dir not created: %v", err)
	}
	if calls[0].name != "dotnet" {
		t.Errorf("default executable = %s", calls[0].name)
	}
}

func TestGenerateGraphFailure(t *testing.T) {
	var calls []call
	r := &Runner{exec: fakeExec(&calls,
		Status{},
		Status{ExitCode: 1, Stdout: "Determining projects...\nerror NU1101: Unable to find package Nope"},
	)}

	_, err := r.GenerateGraph(context.Background(), "App.sln", t.TempDir())
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("err = %v, want ErrFailed", err)
	}
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Step != "restore" {
		t.Fatalf("err = %#v", err)
	}
	if !strings.Contains(err.Error(), "NU1101") {
		t.Errorf("error should carry the last output line: %v", err)
	}
}

func TestGenerateGraphStderrFailure(t *testing.T) {
	var calls []call
	r := &Runner{exec: fakeExec(&calls, Status{Stderr: "MSB1009: Project file does not exist."})}
	_, err := r.GenerateGraph(context.Background(), "Missing.sln", t.TempDir())
	if !errors.Is(err, ErrFailed) || !strings.Contains(err.Error(), "MSB1009") {
		t.Errorf("err = %v", err)
	}
	if len(calls) != 1 {
		t.Errorf("restore ran after msbuild failed")
	}
}

func TestRunTimeout(t *testing.T) {
	r := &Runner{
		Timeout: 10 * time.Millisecond,
		exec: func(ctx context.Context, _ string, _ ...string) (Status, error) {
			<-ctx.Done()
			return Status{ExitCode: -1}, nil
		},
	}
	_, err := r.GenerateGraph(context.Background(), "App.sln", t.TempDir())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestGenerateGraphFailureRemovesTempDir(t *testing.T) {
	var calls []call
	r := &Runner{exec: fakeExec(&calls, Status{}, Status{ExitCode: 1})}
	if _, err := r.GenerateGraph(context.Background(), "App.sln", ""); err == nil {
		t.Fatal("expected restore failure")
	}

	var dgspec string
	for _, arg := range calls[0].args {
		if v, ok := strings.CutPrefix(arg, "-p:RestoreGraphOutputPath="); ok {
			dgspec = v
		}
	}
	if dgspec == "" {
		t.Fatalf("msbuild args = %v", calls[0].args)
	}
	if _, err := os.Stat(filepath.Dir(dgspec)); !os.IsNotExist(err) {
		t.Errorf("temp dir %s left behind: %v", filepath.Dir(dgspec), err)
	}
}

func TestGenerateGraphFailureKeepsGivenDir(t *testing.T) {
	var calls []call
	r := &Runner{exec: fakeExec(&calls, Status{ExitCode: 1})}
	dir := filepath.Join(t.TempDir(), "graph")
	if _, err := r.GenerateGraph(context.Background(), "App.sln", dir); err == nil {
		t.Fatal("expected msbuild failure")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("caller's dir removed: %v", err)
	}
}
