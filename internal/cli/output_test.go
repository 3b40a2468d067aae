package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vaspipr/internal/config"
	"github.com/roach88/vaspipr/internal/ipr"
	"github.com/roach88/vaspipr/internal/report"
	"github.com/roach88/vaspipr/internal/store"
	"github.com/roach88/vaspipr/internal/vasp"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeParse, "PROCAR:3: malformed band line", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E010", resp.Error.Code)
	assert.Equal(t, "PROCAR:3: malformed band line", resp.Error.Message)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E001", "compute failed", map[string]string{"file": "PROCAR"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.Contains(t, buf.String(), "compute failed")
	assert.NotContains(t, buf.String(), "Details:")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("E001", "compute failed", map[string]string{"file": "PROCAR"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "text",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Reading %s", "PROCAR")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Contains(t, errOut.String(), "Reading PROCAR")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	cause := &vasp.ParseError{File: "PROCAR", Line: 7, Msg: "bad projection value"}
	err := formatter.Fail("compute failed", cause)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitCommandError, exitErr.Code)
	assert.True(t, exitErr.Reported)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, buf.String(), "Error [E010]: compute failed: PROCAR:7: bad projection value")
}

func TestOutputFormatter_Usage(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Usage("--jobs must be at least 1")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [E040]")
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"parse", fmt.Errorf("wrapped: %w", &vasp.ParseError{Msg: "x"}), ErrCodeParse, ExitCommandError},
		{"missing file", fmt.Errorf("open procar: %w", fs.ErrNotExist), ErrCodeNotFound, ExitCommandError},
		{"shape", fmt.Errorf("energies: %w", ipr.ErrShapeMismatch), ErrCodeInconsistent, ExitFailure},
		{"spin", fmt.Errorf("procar spin down: %w", ipr.ErrNoSpin), ErrCodeInconsistent, ExitFailure},
		{"write", fmt.Errorf("job x: %w", &report.WriteError{Path: "out.csv", Err: fs.ErrNotExist}), ErrCodeWriteFailed, ExitCommandError},
		{"index", fmt.Errorf("lookup: %w", vasp.ErrIndexOutOfRange), ErrCodeUsage, ExitCommandError},
		{"run", fmt.Errorf("get run x: %w", store.ErrRunNotFound), ErrCodeRunNotFound, ExitCommandError},
		{"manifest", fmt.Errorf("m.yaml: %w", config.ErrInvalidManifest), ErrCodeManifest, ExitCommandError},
		{"other", errors.New("disk on fire"), ErrCodeGeneric, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, exit := classifyError(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantExit, exit)
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "inner", errors.New("cause")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Equal(t, "outer: inner: cause", wrapped.Error())
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"states": 4},
	}
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","data":{"states":4}}`, string(data))
}
