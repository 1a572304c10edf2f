package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qre/internal/compiler"
)

const hotHardwareSpec = `
package specs

program: bell: subroutines: main: qasm: "qreg q[2]; h q[0]; cx q[0],q[1];"
hardware: hot: {physical_qubit_error_rate: 2e-2, cycle_time: 1e-6}
budget: lopsided: {total: 1e-3, weights: {synthesis: 1}}
`

func TestValidateValidSpecs(t *testing.T) {
	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), specsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All specs valid")
}

func TestValidateValidSpecsJSON(t *testing.T) {
	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), specsDir)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	_, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
}

func TestValidateHardwareAboveThreshold(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"hot.cue": hotHardwareSpec})

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "hardware.hot.physical_qubit_error_rate")
	assert.Contains(t, out, compiler.ErrAboveThreshold)
}

func TestValidateMultipleErrorsJSON(t *testing.T) {
	dir := writeSpecs(t, map[string]string{
		"hot.cue": hotHardwareSpec,
		"bad.cue": `
package specs

program: broken: subroutines: main: qasm: "qreg q[1]; h q[3];"
`,
	})

	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)

	codes := make([]string, len(resp.Data.Errors))
	for i, e := range resp.Data.Errors {
		codes[i] = e.Code
	}
	assert.Contains(t, codes, compiler.ErrInvalidCircuit)
	assert.Contains(t, codes, compiler.ErrAboveThreshold)
	assert.Contains(t, codes, compiler.ErrBudgetNoCorrection)
}

func TestValidateNoPrograms(t *testing.T) {
	dir := writeSpecs(t, map[string]string{"hw.cue": `
package specs

hardware: basic_sc: {physical_qubit_error_rate: 1e-3, cycle_time: 1e-7}
`})

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, out, ErrCodeNoPrograms)
}

func TestValidateVerboseOutput(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text", Verbose: true})
	errBuf := &bytes.Buffer{}
	cmd.SetErr(errBuf)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{specsDir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, errBuf.String(), "Validating program: h_rz_cnot")
	assert.Contains(t, errBuf.String(), "Validating hardware: basic_sc")
}

func TestValidateSpecsDir(t *testing.T) {
	errs, err := ValidateSpecsDir(specsDir)
	require.NoError(t, err)
	assert.Empty(t, errs)

	dir := writeSpecs(t, map[string]string{"hot.cue": hotHardwareSpec})
	errs, err = ValidateSpecsDir(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, errs)

	_, err = ValidateSpecsDir("/nonexistent/directory/path")
	require.Error(t, err)
}
