package nodes

import (
	"os"
	"path/filepath"
	"testing"

	polyglot "github.com/nextabc-lab/polyglot-neato"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testAddress = "ctrl"

type fixture struct {
	dir         string
	serverFile  string
	profileFile string
	host        *polyglot.MemoryHost
	level       zap.AtomicLevel
	log         *zap.SugaredLogger
	logs        *observer.ObservedLogs
}

// newFixture 写入server.json和profile/version.txt，内容为空时不创建文件。
func newFixture(t *testing.T, server, profile string) *fixture {
	dir := t.TempDir()
	f := &fixture{
		dir:         dir,
		serverFile:  filepath.Join(dir, "server.json"),
		profileFile: filepath.Join(dir, "profile", "version.txt"),
		host:        polyglot.NewMemoryHost(),
		level:       zap.NewAtomicLevelAt(zapcore.InfoLevel),
	}
	core, logs := observer.New(zapcore.DebugLevel)
	f.log = zap.New(core).Sugar()
	f.logs = logs
	if "" != server {
		require.NoError(t, os.WriteFile(f.serverFile, []byte(server), 0644))
	}
	if "" != profile {
		f.writeProfile(t, profile)
	}
	return f
}

func (f *fixture) writeProfile(t *testing.T, profile string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(f.profileFile), 0755))
	require.NoError(t, os.WriteFile(f.profileFile, []byte(profile), 0644))
}

func (f *fixture) controller() *BaseController {
	return NewBaseController(f.host, ControllerOptions{
		Address:            testAddress,
		Name:               "Test Controller",
		ServerFile:         f.serverFile,
		ProfileVersionFile: f.profileFile,
		Log:                f.log,
		LogLevel:           f.level,
	})
}

// started 创建控制器并通过Host注册，注册时Host会调用Start。
func (f *fixture) started(t *testing.T) *BaseController {
	c := f.controller()
	require.NoError(t, f.host.AddNode(c))
	return c
}

func (f *fixture) driver(name string) interface{} {
	v, _ := f.host.DriverValue(testAddress, name)
	return v
}

func (f *fixture) errorLogs(snippet string) int {
	n := 0
	for _, e := range f.logs.FilterMessageSnippet(snippet).All() {
		if e.Level == zapcore.ErrorLevel {
			n++
		}
	}
	return n
}
